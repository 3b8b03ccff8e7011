// Package s3 uploads rendered artifacts to an S3 bucket.
package s3

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lucsky/cuid"

	"github.com/couchcryptid/accident-data-etl/internal/observability"
)

// putter is the part of the S3 client the uploader uses.
type putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader copies files to <prefix>/<run-id>/<file name> in one bucket. Every
// Uploader gets its own run id so repeated jobs never overwrite each other.
type Uploader struct {
	client  putter
	bucket  string
	prefix  string
	runID   string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewUploader loads the default AWS configuration for region and creates an
// uploader for bucket.
func NewUploader(ctx context.Context, region, bucket, prefix string, metrics *observability.Metrics, logger *slog.Logger) (*Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newUploader(s3.NewFromConfig(cfg), bucket, prefix, metrics, logger), nil
}

func newUploader(client putter, bucket, prefix string, metrics *observability.Metrics, logger *slog.Logger) *Uploader {
	return &Uploader{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		runID:   cuid.New(),
		metrics: metrics,
		logger:  logger,
	}
}

// RunID returns the id shared by every key this uploader writes.
func (u *Uploader) RunID() string { return u.runID }

// Key returns the object key for a local file.
func (u *Uploader) Key(file string) string {
	return path.Join(u.prefix, u.runID, filepath.Base(file))
}

// Upload sends every file and returns their object keys in order. It stops at
// the first failure.
func (u *Uploader) Upload(ctx context.Context, files ...string) ([]string, error) {
	keys := make([]string, 0, len(files))
	for _, file := range files {
		key, err := u.upload(ctx, file)
		if err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (u *Uploader) upload(ctx context.Context, file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	key := u.Key(file)
	input := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(filepath.Ext(file)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s to s3://%s/%s: %w", file, u.bucket, key, err)
	}
	u.metrics.ArtifactsUploaded.Inc()
	u.logger.Info("artifact uploaded", "file", file, "bucket", u.bucket, "key", key)
	return key, nil
}
