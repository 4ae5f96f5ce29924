package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSSource reads CSV exports stored as Google Cloud Storage objects.
// It assumes Application Default Credentials unless a credentials file is
// configured or anonymous access is requested for public buckets.
type GCSSource struct {
	credentialsFile string
	anonymous       bool
}

// NewGCSSource creates a GCS source.
func NewGCSSource(credentialsFile string, anonymous bool) *GCSSource {
	return &GCSSource{credentialsFile: credentialsFile, anonymous: anonymous}
}

func (s *GCSSource) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case s.anonymous:
		opts = append(opts, option.WithoutAuthentication())
	case s.credentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(s.credentialsFile))
	}
	return opts
}

// Fetch downloads the object bytes from the given GCS URI.
func (s *GCSSource) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	bucketName, objectPath, err := ParseObjectURI(gcsURI, "gs")
	if err != nil {
		return nil, newFetchError(KindUnsupported, gcsURI, err)
	}

	storageClient, err := storage.NewClient(ctx, s.clientOptions()...)
	if err != nil {
		return nil, newFetchError(KindTransport, gcsURI, fmt.Errorf("creating storage client: %w", err))
	}
	defer storageClient.Close()

	rc, err := storageClient.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, &FetchError{Kind: KindStatus, Target: gcsURI, StatusCode: http.StatusNotFound,
				Err: fmt.Errorf("object %s not found: %w", ObjectFilename(gcsURI), err)}
		}
		return nil, newFetchError(KindTransport, gcsURI, fmt.Errorf("reading object %s/%s: %w", bucketName, objectPath, err))
	}
	defer rc.Close()

	data, err := readLimited(rc, maxBodyBytes)
	if errors.Is(err, ErrTooLarge) {
		return nil, newFetchError(KindMalformed, gcsURI, err)
	}
	if err != nil {
		return nil, newFetchError(KindTransport, gcsURI, fmt.Errorf("reading bytes: %w", err))
	}

	return data, nil
}

// ParseObjectURI splits "<scheme>://bucket/path/to/object" into bucket and
// object path.
func ParseObjectURI(uri, scheme string) (bucket, object string, err error) {
	prefix := scheme + "://"
	if !strings.HasPrefix(uri, prefix) {
		return "", "", fmt.Errorf("invalid %s URI: %s", scheme, uri)
	}

	trimmed := strings.TrimPrefix(uri, prefix)
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid %s URI (no object path): %s", scheme, uri)
	}

	return parts[0], parts[1], nil
}

// ObjectFilename extracts the filename from an object URI.
// e.g., "gs://bucket/folder/CSCorito_Maio.csv" -> "CSCorito_Maio.csv"
func ObjectFilename(uri string) string {
	if idx := strings.Index(uri, "://"); idx != -1 {
		uri = uri[idx+3:]
	}

	parts := strings.SplitN(uri, "/", 2)
	if len(parts) < 2 {
		return uri
	}

	return path.Base(parts[1])
}
