package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/profit-report/internal/config"
	"github.com/dvloznov/profit-report/internal/domain"
	"github.com/dvloznov/profit-report/internal/logger"
)

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// Options holds the report settings the pipeline steps need.
type Options struct {
	Columns    config.ColumnsConfig
	StakeValue float64
	PageSize   int
}

// OptionsFromConfig extracts pipeline options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Columns:    cfg.Columns,
		StakeValue: cfg.Report.StakeValue,
		PageSize:   cfg.Report.PageSize,
	}
}

// NewReportPipeline creates the standard 8-step fetch-transform pipeline.
func NewReportPipeline(resolver TargetResolver, fetcher Fetcher, opts Options) *Pipeline {
	if opts.StakeValue <= 0 {
		opts.StakeValue = DefaultStakeValue
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return NewPipeline(
		&ResolveTargetStep{Resolver: resolver},
		&FetchStep{Fetcher: fetcher},
		&DecodeStep{Columns: opts.Columns},
		&DeduplicateStep{},
		&TransformRecordsStep{},
		&PaginateStep{PageSize: opts.PageSize},
		&AggregateStep{StakeValue: opts.StakeValue},
		&FinalizeStep{StakeValue: opts.StakeValue},
	)
}

// Service runs one report cycle per call. It holds no per-cycle state and is
// safe to share between requests.
type Service struct {
	resolver TargetResolver
	pipeline *Pipeline
	log      zerolog.Logger
}

// NewService creates a report service over the given resolver and fetcher.
func NewService(resolver TargetResolver, fetcher Fetcher, opts Options, log zerolog.Logger) *Service {
	return &Service{
		resolver: resolver,
		pipeline: NewReportPipeline(resolver, fetcher, opts),
		log:      log,
	}
}

// Sheets returns the selectable sheet labels.
func (s *Service) Sheets() []string {
	return s.resolver.Sheets()
}

// BuildReport fetches the sheet, transforms it and returns the finalized
// report with the requested page selected. An empty sheet label selects the
// default sheet. Fetch failures are returned as *fetch.FetchError (wrapped);
// an empty dataset is not an error.
func (s *Service) BuildReport(ctx context.Context, sheet string, page int) (*domain.Report, error) {
	state := &PipelineState{
		CycleID:       uuid.NewString(),
		Sheet:         sheet,
		RequestedPage: page,
	}

	log := logger.WithFields(logger.FromContextOr(ctx, s.log), map[string]interface{}{
		"cycle_id": state.CycleID,
		"sheet":    sheet,
	})
	ctx = logger.WithContext(ctx, log)

	start := time.Now()
	log.Info().Int("page", page).Msg("Starting report cycle")

	if err := s.pipeline.Execute(ctx, state); err != nil {
		log.Error().Err(err).Str("target", state.Target.URI).Msg("Report cycle failed")
		return nil, fmt.Errorf("BuildReport: %w", err)
	}

	r := state.Report
	log.Info().
		Str("target", r.Target).
		Int("rows", len(r.Records)).
		Int("page", r.Page.Number).
		Int("issues", len(r.Issues)).
		Int("undated", r.UndatedCount).
		Bool("empty", r.Empty).
		Dur("duration", time.Since(start)).
		Msg("Report cycle completed")

	return r, nil
}
