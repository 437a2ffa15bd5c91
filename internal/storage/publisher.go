package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"bankmetrics/internal/port"
	"bankmetrics/internal/workspace"
)

// ResultPublisher mirrors consolidated results to object storage under
// <prefix>/<quarter>/consolidated_results.json.
type ResultPublisher struct {
	store         port.ObjectStorage
	bucket        string
	prefix        string
	presignExpiry int64
}

// NewResultPublisher creates a ResultPublisher. With presignExpiry > 0, Publish returns a
// presigned download URL instead of the s3:// URI.
func NewResultPublisher(store port.ObjectStorage, bucket, prefix string, presignExpiry int64) *ResultPublisher {
	return &ResultPublisher{
		store:         store,
		bucket:        bucket,
		prefix:        strings.Trim(prefix, "/"),
		presignExpiry: presignExpiry,
	}
}

// Key returns the object key for a quarter's consolidated result.
func (p *ResultPublisher) Key(quarter string) string {
	return path.Join(p.prefix, quarter, workspace.ConsolidatedFileName)
}

// Publish uploads body and returns where it can be fetched.
func (p *ResultPublisher) Publish(ctx context.Context, quarter string, body []byte) (string, error) {
	key := p.Key(quarter)
	if _, err := p.store.Upload(ctx, port.UploadInput{
		Bucket:      p.bucket,
		Key:         key,
		Body:        bytes.NewReader(body),
		ContentType: "application/json",
		Size:        int64(len(body)),
	}); err != nil {
		return "", fmt.Errorf("publishing %s: %w", key, err)
	}

	if p.presignExpiry > 0 {
		url, err := p.store.GetPresignedURL(ctx, p.bucket, key, p.presignExpiry)
		if err != nil {
			return "", fmt.Errorf("presigning %s: %w", key, err)
		}
		return url, nil
	}
	return fmt.Sprintf("s3://%s/%s", p.bucket, key), nil
}
