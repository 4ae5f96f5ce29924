package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectGetter is the subset of the S3 client used by S3Source.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads CSV exports stored as S3 objects using the default AWS
// credential chain. It is safe for concurrent use.
type S3Source struct {
	newClient func(ctx context.Context) (ObjectGetter, error)

	once      sync.Once
	client    ObjectGetter
	clientErr error
}

// NewS3Source creates an S3 source. The client is built once, on first use.
func NewS3Source(region string) *S3Source {
	return &S3Source{newClient: func(ctx context.Context) (ObjectGetter, error) {
		var opts []func(*awsconfig.LoadOptions) error
		if region != "" {
			opts = append(opts, awsconfig.WithRegion(region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		return s3.NewFromConfig(cfg), nil
	}}
}

// NewS3SourceWithClient creates an S3 source around an existing client.
func NewS3SourceWithClient(client ObjectGetter) *S3Source {
	return &S3Source{newClient: func(context.Context) (ObjectGetter, error) {
		return client, nil
	}}
}

func (s *S3Source) getClient(ctx context.Context) (ObjectGetter, error) {
	s.once.Do(func() {
		s.client, s.clientErr = s.newClient(context.WithoutCancel(ctx))
	})
	return s.client, s.clientErr
}

// Fetch downloads the object bytes from the given S3 URI.
func (s *S3Source) Fetch(ctx context.Context, s3URI string) ([]byte, error) {
	bucket, key, err := ParseObjectURI(s3URI, "s3")
	if err != nil {
		return nil, newFetchError(KindUnsupported, s3URI, err)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, newFetchError(KindTransport, s3URI, err)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, &FetchError{Kind: KindStatus, Target: s3URI, StatusCode: http.StatusNotFound,
				Err: fmt.Errorf("object %s not found: %w", ObjectFilename(s3URI), err)}
		}
		return nil, newFetchError(KindTransport, s3URI, fmt.Errorf("getting object %s/%s: %w", bucket, key, err))
	}
	defer out.Body.Close()

	data, err := readLimited(out.Body, maxBodyBytes)
	if errors.Is(err, ErrTooLarge) {
		return nil, newFetchError(KindMalformed, s3URI, err)
	}
	if err != nil {
		return nil, newFetchError(KindTransport, s3URI, fmt.Errorf("reading bytes: %w", err))
	}

	return data, nil
}
