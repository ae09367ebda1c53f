// Package localfs archives raw upload files verbatim. Buckets are derived
// data; the archived exports are what an auditor re-scans.
package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type Archive struct {
	basePath string
}

func New(basePath string) (*Archive, error) {
	if basePath == "" {
		basePath = "./data/uploads"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create upload archive dir: %w", err)
	}
	return &Archive{basePath: basePath}, nil
}

func (a *Archive) Save(_ context.Context, key string, data io.Reader) error {
	path := filepath.Join(a.basePath, key)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return fmt.Errorf("write archive file: %w", err)
	}
	return nil
}

func (a *Archive) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path := filepath.Join(a.basePath, key)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive file: %w", err)
	}
	return f, nil
}
