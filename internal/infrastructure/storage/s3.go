// Package storage provides the S3-compatible blob store for invoice
// attachments. Works against AWS S3 proper as well as path-style compatible
// endpoints (MinIO, Supabase storage).
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/invoicehub/invoicing-system/internal/core/domain"
)

// Config holds the settings for the attachment bucket.
type Config struct {
	Endpoint        string // empty = AWS default resolution
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool
}

type S3Store struct {
	client *s3.S3
	bucket string
}

// NewS3Store builds the S3 client for the attachment bucket.
func NewS3Store(cfg Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 store: bucket is not configured")
	}

	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("s3 store: %w", err)
	}

	return &S3Store{client: s3.New(sess), bucket: cfg.Bucket}, nil
}

// Upload streams the attachment under a fresh unique key and returns that key
// as the attachment reference. No retry; a failed upload is terminal for the
// create operation that requested it.
func (s *S3Store) Upload(ctx context.Context, r io.Reader, name, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read attachment: %w", err)
	}

	key := uuid.NewString() + filepath.Ext(name)
	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("upload attachment: %w", err)
	}

	return key, nil
}

// UploadFile verifies the local file exists before attempting the upload.
func (s *S3Store) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.ErrAttachmentNotFound
		}
		return "", fmt.Errorf("open attachment: %w", err)
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return s.Upload(ctx, f, filepath.Base(path), contentType)
}
