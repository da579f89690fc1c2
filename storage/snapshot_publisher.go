package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strconv"
)

const snapshotContentType = "application/json"

// SnapshotPublisher mirrors snapshot documents to object storage under
// <prefix>/<year>.json.
type SnapshotPublisher struct {
	uploader FileUploader
	prefix   string
}

func NewSnapshotPublisher(uploader FileUploader, prefix string) *SnapshotPublisher {
	if prefix == "" {
		prefix = "snapshots"
	}
	return &SnapshotPublisher{uploader: uploader, prefix: prefix}
}

func (p *SnapshotPublisher) Key(year int) string {
	return path.Join(p.prefix, strconv.Itoa(year)+".json")
}

// PublishSnapshot uploads an encoded snapshot and returns its public URL,
// which is empty when the bucket has no public URL.
func (p *SnapshotPublisher) PublishSnapshot(ctx context.Context, year int, body []byte) (string, error) {
	key := p.Key(year)
	result, err := p.uploader.Upload(ctx, key, snapshotContentType, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to publish snapshot %d: %w", year, err)
	}
	return result.Location, nil
}
