package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"
)

// ChannelDoc holds the public channel fields kept in the index.
type ChannelDoc struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	FullName      string `json:"fullName"`
	AvatarURL     string `json:"avatarUrl"`
	CoverImageURL string `json:"coverImageUrl"`
}

type ChannelIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewChannelIndex(es *elasticsearch.Client, index string) *ChannelIndex {
	return &ChannelIndex{ES: es, Index: index}
}

func (c *ChannelIndex) IndexChannel(ctx context.Context, doc ChannelDoc) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("index channel: %w", err)
	}

	res, err := c.ES.Index(
		c.Index,
		&buf,
		c.ES.Index.WithContext(ctx),
		c.ES.Index.WithDocumentID(doc.ID),
	)
	if err != nil {
		return fmt.Errorf("index channel: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index channel: %s: %s", res.Status(), body)
	}
	return nil
}

func (c *ChannelIndex) SearchChannels(ctx context.Context, query string, from, size int) (int64, []ChannelDoc, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"username^2", "fullName"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search error: %w", err)
	}

	res, err := c.ES.Search(
		c.ES.Search.WithContext(ctx),
		c.ES.Search.WithIndex(c.Index),
		c.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search error: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search error: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source ChannelDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search error: %w", err)
	}

	channels := make([]ChannelDoc, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		channels[i] = hit.Source
	}
	return r.Hits.Total.Value, channels, nil
}
