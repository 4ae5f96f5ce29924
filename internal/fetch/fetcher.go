package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/profit-report/internal/config"
	"github.com/rs/zerolog"
)

// Source retrieves the raw bytes behind a target URI.
type Source interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// Fetcher dispatches a target URI to the source registered for its scheme.
type Fetcher struct {
	sources map[string]Source
	log     zerolog.Logger
}

// NewFetcher creates a fetcher with no sources; register them with Register.
func NewFetcher(log zerolog.Logger) *Fetcher {
	return &Fetcher{
		sources: make(map[string]Source),
		log:     log.With().Str("component", "fetcher").Logger(),
	}
}

// NewDefaultFetcher registers the HTTP(S), GCS and S3 sources.
func NewDefaultFetcher(cfg config.SourceConfig, log zerolog.Logger) *Fetcher {
	f := NewFetcher(log)
	httpSrc := NewHTTPSource(cfg.Timeout, cfg.UserAgent)
	f.Register("http", httpSrc)
	f.Register("https", httpSrc)
	f.Register("gs", NewGCSSource(cfg.CredentialsFile, cfg.Anonymous))
	f.Register("s3", NewS3Source(cfg.Region))
	return f
}

// Register binds a source to a URI scheme such as "https" or "gs".
func (f *Fetcher) Register(scheme string, src Source) {
	f.sources[strings.ToLower(scheme)] = src
}

// Fetch retrieves the bytes behind uri. Every failure is a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	scheme := schemeOf(uri)
	src, ok := f.sources[scheme]
	if !ok {
		return nil, newFetchError(KindUnsupported, uri, fmt.Errorf("no source registered for scheme %q", scheme))
	}

	start := time.Now()
	data, err := src.Fetch(ctx, uri)
	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			fe = newFetchError(KindTransport, uri, err)
		}
		f.log.Error().Err(fe).Str("target", uri).Str("kind", string(fe.Kind)).Msg("Fetch failed")
		return nil, fe
	}

	f.log.Debug().
		Str("target", uri).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("Fetched source data")

	return data, nil
}

func schemeOf(uri string) string {
	idx := strings.Index(uri, "://")
	if idx <= 0 {
		return ""
	}
	return strings.ToLower(uri[:idx])
}
