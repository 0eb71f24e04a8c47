// Package storage stores directory snapshots in an S3 compatible bucket.
//
// NewClient binds a MinIO client to the configured bucket, so callers deal in
// object keys only. The Client interface is mocked in core/storage/mocks.
//
//	client, err := storage.NewClient(cfg.Storage)
//	created, err := client.EnsureBucket(ctx)
//	err = client.Put(ctx, "snapshots/a.json.gz", data, storage.PutOptions{ContentEncoding: "gzip"})
package storage
