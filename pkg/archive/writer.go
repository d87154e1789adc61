// Copyright 2025 ACLDrain Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// WriterConfig holds configuration for the S3 archive destination.
type WriterConfig struct {
	Bucket string
	Region string

	// Endpoint overrides the S3 endpoint (for LocalStack/testing).
	Endpoint  string
	PathStyle bool
}

// Writer writes archive batches to a single S3 bucket. It is safe to
// construct once per process and reuse across invocations.
type Writer struct {
	client *s3.Client
	bucket string
}

// NewWriter creates a Writer using the default AWS credential chain.
func NewWriter(ctx context.Context, cfg WriterConfig) (*Writer, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.UsePathStyle = cfg.PathStyle
		},
	}
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return &Writer{
		client: s3.NewFromConfig(awsCfg, opts...),
		bucket: cfg.Bucket,
	}, nil
}

// Put writes body as a single object at key.
func (w *Writer) Put(ctx context.Context, key string, body []byte) error {
	_, err := w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("put s3 object %s: %w", key, err)
	}
	return nil
}
