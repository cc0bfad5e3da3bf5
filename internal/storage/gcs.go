package storage

import (
	"context"
	"io"

	gcs "cloud.google.com/go/storage"
)

type GCSDownloader struct {
	client *gcs.Client
	bucket string
}

func NewGCSDownloader(ctx context.Context, bucket string) (*GCSDownloader, error) {
	c, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSDownloader{client: c, bucket: bucket}, nil
}

func (d *GCSDownloader) Close() error { return d.client.Close() }

func (d *GCSDownloader) Download(ctx context.Context, objectName string) ([]byte, error) {
	r, err := d.client.Bucket(d.bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	const maxBytes = 32 << 20
	return io.ReadAll(io.LimitReader(r, maxBytes))
}
