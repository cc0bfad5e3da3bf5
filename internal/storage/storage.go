package storage

import "context"

// Downloader fetches an external object, e.g. a question bank dropped in a
// bucket by the import tooling.
type Downloader interface {
	Download(ctx context.Context, objectName string) ([]byte, error)
}
