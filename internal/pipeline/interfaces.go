package pipeline

import (
	"context"

	"github.com/dvloznov/profit-report/internal/fetch"
)

// Fetcher retrieves the raw CSV bytes behind a target URI.
// *fetch.Fetcher is the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// TargetResolver maps a sheet label to its fetch target.
// *fetch.Resolver is the production implementation.
type TargetResolver interface {
	Resolve(sheet string) (fetch.Target, error)
	Default() string
	Sheets() []string
}
