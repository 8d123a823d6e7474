package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudyskybd/portfolio/internal/telemetry/tracing"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

var _ ObjectStore = (*GCSStore)(nil)

type GCSStoreConfig struct {
	Bucket          string
	CredentialsFile string // service account key; empty means application default credentials
	PublicBaseURL   string
}

type GCSStore struct {
	client        *gcs.Client
	bucket        string
	publicBaseURL string
}

func NewGCSStore(ctx context.Context, cfg GCSStoreConfig) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs store: bucket not set")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, cfg.CredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}

	publicBaseURL := cfg.PublicBaseURL
	if publicBaseURL == "" {
		publicBaseURL = "https://storage.googleapis.com/" + cfg.Bucket
	}

	return &GCSStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: publicBaseURL,
	}, nil
}

func (s *GCSStore) Bucket() string {
	return s.bucket
}

func (s *GCSStore) SignedUploadURL(ctx context.Context, objectPath, contentType string, expiry time.Duration) (string, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "gcsStore.signedUploadURL")
	defer span.End()

	signedURL, err := s.client.Bucket(s.bucket).SignedURL(objectPath, &gcs.SignedURLOptions{
		Scheme:      gcs.SigningSchemeV4,
		Method:      http.MethodPut,
		ContentType: contentType,
		Expires:     time.Now().Add(expiry),
	})
	if err != nil {
		return "", fmt.Errorf("sign put %s: %w", objectPath, err)
	}

	return signedURL, nil
}

func (s *GCSStore) PublicURL(objectPath string) string {
	return joinURL(s.publicBaseURL, objectPath)
}

func (s *GCSStore) ObjectPath(publicURL string) (string, error) {
	return objectPathFromURL(s.publicBaseURL, s.bucket, publicURL)
}

func (s *GCSStore) Remove(ctx context.Context, objectPath string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "gcsStore.remove")
	defer span.End()

	err := s.client.Bucket(s.bucket).Object(objectPath).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", objectPath, err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
