package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var ErrNoFile = errors.New("no file to upload")

type UploadResult struct {
	URL              string    `json:"url"`
	Key              string    `json:"key"`
	Bytes            int64     `json:"bytes"`
	ContentType      string    `json:"contentType"`
	OriginalFilename string    `json:"originalFilename"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Store uploads a local file to durable storage. Implementations remove
// the local file once the attempt is over, whatever its outcome.
type Store interface {
	Upload(ctx context.Context, localPath string) (*UploadResult, error)
}

type payload struct {
	data        []byte
	key         string
	contentType string
	original    string
}

// readPayload loads the file and removes it from disk.
func readPayload(localPath string) (*payload, error) {
	if localPath == "" {
		return nil, ErrNoFile
	}
	defer os.Remove(localPath)

	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	mt := mimetype.Detect(data)
	ext := mt.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(localPath))
	}

	return &payload{
		data:        data,
		key:         NewStorageKey(ext),
		contentType: mt.String(),
		original:    filepath.Base(localPath),
	}, nil
}

func NewStorageKey(ext string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("users/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

func (p *payload) result(url string) *UploadResult {
	return &UploadResult{
		URL:              url,
		Key:              p.key,
		Bytes:            int64(len(p.data)),
		ContentType:      p.contentType,
		OriginalFilename: p.original,
		CreatedAt:        time.Now().UTC(),
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
