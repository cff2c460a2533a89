package cache

import (
	"context"
	"time"
)

// ExportCache keeps rendered CSV export payloads so a report session can be
// re-exported without re-running its query. Keys embed the generation ID, so
// stale entries after a re-generation simply age out via TTL.
type ExportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

type NoopExportCache struct{}

func (NoopExportCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopExportCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}
