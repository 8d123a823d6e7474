package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudyskybd/portfolio/internal/telemetry/tracing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var _ ObjectStore = (*S3Store)(nil)

type S3StoreConfig struct {
	Endpoint        string // e.g. https://<account-id>.r2.cloudflarestorage.com, empty for AWS
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string // the bucket's public URL, object paths are appended to it
}

// S3Store works against any S3 compatible API (AWS, Cloudflare R2, minio).
type S3Store struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	publicBaseURL string
}

func NewS3Store(ctx context.Context, cfg S3StoreConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 store: bucket not set")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // required for R2 and minio
		}
	})

	publicBaseURL := cfg.PublicBaseURL
	if publicBaseURL == "" && cfg.Endpoint != "" {
		publicBaseURL = joinURL(cfg.Endpoint, cfg.Bucket)
	}

	return &S3Store{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		publicBaseURL: publicBaseURL,
	}, nil
}

func (s *S3Store) Bucket() string {
	return s.bucket
}

func (s *S3Store) SignedUploadURL(ctx context.Context, objectPath, contentType string, expiry time.Duration) (string, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "s3Store.signedUploadURL")
	defer span.End()

	req, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectPath),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", objectPath, err)
	}

	return req.URL, nil
}

func (s *S3Store) PublicURL(objectPath string) string {
	return joinURL(s.publicBaseURL, objectPath)
}

func (s *S3Store) ObjectPath(publicURL string) (string, error) {
	return objectPathFromURL(s.publicBaseURL, s.bucket, publicURL)
}

func (s *S3Store) Remove(ctx context.Context, objectPath string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "s3Store.remove")
	defer span.End()

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectPath),
	}); err != nil {
		return fmt.Errorf("delete %s: %w", objectPath, err)
	}
	return nil
}
