package loader

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/cdm/resolved"
)

// SnapshotStore persists the resolved schema between runs
type SnapshotStore struct {
	fs  afs.Service
	URL string
}

// NewSnapshotStore creates a store for URL
func NewSnapshotStore(fs afs.Service, URL string) *SnapshotStore {
	if fs == nil {
		fs = afs.New()
	}
	return &SnapshotStore{fs: fs, URL: URL}
}

// Load returns the stored snapshot, nil if none was saved yet
func (s *SnapshotStore) Load(ctx context.Context) (*resolved.Schema, error) {
	exists, err := s.fs.Exists(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check snapshot %v: %w", s.URL, err)
	}
	if !exists {
		return nil, nil
	}
	data, err := s.fs.DownloadWithURL(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download snapshot %v: %w", s.URL, err)
	}
	return resolved.Decode(bytes.NewReader(data))
}

// Save replaces the stored snapshot
func (s *SnapshotStore) Save(ctx context.Context, view *resolved.Schema) error {
	buffer := &bytes.Buffer{}
	if err := resolved.Encode(buffer, view); err != nil {
		return err
	}
	if err := s.fs.Upload(ctx, s.URL, 0644, buffer); err != nil {
		return fmt.Errorf("failed to upload snapshot %v: %w", s.URL, err)
	}
	return nil
}
