package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dbward/dbward/pkg/config"
	"github.com/dbward/dbward/pkg/logger"
)

// S3Store stores backup artifacts in an S3 (or S3-compatible) bucket
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store creates an S3 blob store from configuration
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 bucket missing in configuration")
	}

	loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(loadCtx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true // MinIO and most S3-compatibles need path-style
		}
	})

	logger.Info("S3: Blob store initialized", map[string]interface{}{
		"bucket":   cfg.S3Bucket,
		"region":   cfg.S3Region,
		"endpoint": cfg.S3Endpoint,
	})

	return &S3Store{client: client, bucket: cfg.S3Bucket}, nil
}

// Put uploads an artifact to the bucket under the given key
func (s *S3Store) Put(ctx context.Context, path string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	logger.Debug("S3: Artifact uploaded", map[string]interface{}{
		"key":        path,
		"size_bytes": len(data),
	})

	return path, nil
}

// Delete removes an artifact from the bucket
func (s *S3Store) Delete(ctx context.Context, location string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(location),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}
