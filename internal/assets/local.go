package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore keeps assets under Dir, which the HTTP server exposes at BaseURL.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &LocalStore{Dir: dir, BaseURL: baseURL}, nil
}

func (s *LocalStore) Upload(ctx context.Context, localPath string) (*UploadResult, error) {
	p, err := readPayload(localPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dst := filepath.Join(s.Dir, filepath.FromSlash(p.key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	if err := os.WriteFile(dst, p.data, 0o644); err != nil {
		return nil, fmt.Errorf("write asset: %w", err)
	}

	return p.result(joinURL(s.BaseURL, p.key)), nil
}
