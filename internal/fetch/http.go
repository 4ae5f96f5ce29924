package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxBodyBytes bounds a single CSV export.
const maxBodyBytes = 32 << 20

// ErrTooLarge reports a body over the size limit. Truncated data is never
// returned.
var ErrTooLarge = errors.New("body exceeds size limit")

// readLimited reads r fully, failing with ErrTooLarge past limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}

// HTTPSource fetches CSV exports over HTTP(S), e.g. the spreadsheet gviz endpoint.
type HTTPSource struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewHTTPSource creates an HTTP source with the given request timeout.
func NewHTTPSource(timeout time.Duration, userAgent string) *HTTPSource {
	return &HTTPSource{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		maxBytes:  maxBodyBytes,
	}
}

// Fetch performs a single GET; there is no retry.
func (s *HTTPSource) Fetch(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, newFetchError(KindTransport, uri, fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Accept", "text/csv")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, newFetchError(KindTransport, uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{
			Kind:       KindStatus,
			Target:     uri,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("bad status: %s", resp.Status),
		}
	}

	// A private or missing spreadsheet answers 200 with a sign-in page.
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(strings.ToLower(ct), "text/html") {
		return nil, newFetchError(KindMalformed, uri, fmt.Errorf("expected CSV, got %s", ct))
	}

	body, err := readLimited(resp.Body, s.maxBytes)
	if errors.Is(err, ErrTooLarge) {
		return nil, newFetchError(KindMalformed, uri, err)
	}
	if err != nil {
		return nil, newFetchError(KindTransport, uri, fmt.Errorf("reading body: %w", err))
	}

	return body, nil
}
