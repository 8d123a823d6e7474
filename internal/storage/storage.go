package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var ErrNotObjectURL = errors.New("not an object url of the bucket")

// ObjectStore is the bucket holding blog thumbnails.
type ObjectStore interface {
	// SignedUploadURL returns a URL that allows a single PUT of objectPath until expiry.
	SignedUploadURL(ctx context.Context, objectPath, contentType string, expiry time.Duration) (string, error)
	PublicURL(objectPath string) string
	// ObjectPath is the inverse of PublicURL.
	ObjectPath(publicURL string) (string, error)
	Remove(ctx context.Context, objectPath string) error
	Bucket() string
}

// ObjectPathFromPublicURL extracts the object path from a public URL produced for bucket.
// It understands "<base>/<bucket>/<path>" style URLs (R2, minio, GCS path style, the old
// storage API) and "<bucket>.storage.googleapis.com/<path>".
func ObjectPathFromPublicURL(bucket, raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Host == "" {
		return "", ErrNotObjectURL
	}

	path := u.Path
	if host := strings.ToLower(u.Host); host == strings.ToLower(bucket)+".storage.googleapis.com" {
		return cleanObjectPath(strings.TrimPrefix(path, "/"))
	}

	marker := "/" + bucket + "/"
	idx := strings.Index(path, marker)
	if idx == -1 {
		return "", ErrNotObjectURL
	}

	return cleanObjectPath(path[idx+len(marker):])
}

// objectPathFromURL strips publicBaseURL off raw. URLs minted under a different base
// (an older public host, say) go through ObjectPathFromPublicURL.
func objectPathFromURL(publicBaseURL, bucket, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	trimmed, _, _ := strings.Cut(raw, "?")
	trimmed, _, _ = strings.Cut(trimmed, "#")

	if base := strings.TrimSuffix(publicBaseURL, "/"); base != "" && strings.HasPrefix(trimmed, base+"/") {
		return cleanObjectPath(strings.TrimPrefix(trimmed, base+"/"))
	}

	return ObjectPathFromPublicURL(bucket, raw)
}

func cleanObjectPath(path string) (string, error) {
	if path == "" {
		return "", ErrNotObjectURL
	}
	for _, segment := range strings.Split(path, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", fmt.Errorf("%w: bad object path", ErrNotObjectURL)
		}
	}
	return path, nil
}

func joinURL(base, objectPath string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(objectPath, "/")
}
