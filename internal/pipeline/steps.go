package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/profit-report/internal/config"
	"github.com/dvloznov/profit-report/internal/domain"
	"github.com/dvloznov/profit-report/internal/fetch"
	"github.com/dvloznov/profit-report/internal/logger"
)

// PipelineStep represents a single step in the report pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps of one cycle.
type PipelineState struct {
	CycleID       string
	Sheet         string
	RequestedPage int

	Target    fetch.Target
	Data      []byte
	FetchedAt time.Time
	Header    fetch.Header
	Raw       []domain.RawRecord

	Records []domain.Record // display order
	Issues  []*FieldParseError
	Page    domain.Page
	Daily   []domain.DailyAggregate
	Monthly []domain.MonthlyAggregate
	Latest  *domain.MonthlyAggregate

	Report *domain.Report
}

// Step 1: ResolveTargetStep maps the sheet label to its fetch target.
type ResolveTargetStep struct {
	Resolver TargetResolver
}

func (s *ResolveTargetStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Sheet == "" {
		state.Sheet = s.Resolver.Default()
	}
	target, err := s.Resolver.Resolve(state.Sheet)
	if err != nil {
		return err
	}
	state.Target = target
	return nil
}

// Step 2: FetchStep retrieves the CSV bytes for the target.
type FetchStep struct {
	Fetcher Fetcher
}

func (s *FetchStep) Execute(ctx context.Context, state *PipelineState) error {
	data, err := s.Fetcher.Fetch(ctx, state.Target.URI)
	if err != nil {
		return err
	}
	state.Data = data
	state.FetchedAt = time.Now().UTC()
	return nil
}

// Step 3: DecodeStep parses the CSV bytes into raw records.
type DecodeStep struct {
	Columns config.ColumnsConfig
}

func (s *DecodeStep) Execute(ctx context.Context, state *PipelineState) error {
	raws, header, err := fetch.DecodeCSV(state.Data, s.Columns)
	if err != nil {
		var fe *fetch.FetchError
		if errors.As(err, &fe) && fe.Target == "" {
			fe.Target = state.Target.URI
		}
		return err
	}

	log := logger.FromContext(ctx)
	if !header.HasDate() {
		log.Warn().Str("column", s.Columns.Date).Msg("Date column not found; all dates will be null")
	}
	if !header.HasProfit() {
		log.Warn().Str("column", s.Columns.Profit).Msg("Profit column not found; all units will be null")
	}

	state.Header = header
	state.Raw = raws
	return nil
}

// Step 4: DeduplicateStep drops exact duplicate rows.
type DeduplicateStep struct{}

func (s *DeduplicateStep) Execute(ctx context.Context, state *PipelineState) error {
	before := len(state.Raw)
	state.Raw = Deduplicate(state.Raw)
	if dropped := before - len(state.Raw); dropped > 0 {
		log := logger.FromContext(ctx)
		log.Debug().Int("dropped", dropped).Msg("Removed duplicate rows")
	}
	return nil
}

// Step 5: TransformRecordsStep parses typed fields and orders records for display.
type TransformRecordsStep struct{}

func (s *TransformRecordsStep) Execute(ctx context.Context, state *PipelineState) error {
	records, issues := ToRecords(state.Raw)
	for _, issue := range issues {
		log := logger.FromContext(ctx)
		log.Warn().
			Int("row", issue.Row).
			Str("field", issue.Field).
			Str("value", issue.Value).
			Err(issue.Err).
			Msg("Field could not be parsed; using null")
	}
	state.Records = SortForDisplay(records)
	state.Issues = issues
	return nil
}

// Step 6: PaginateStep selects the requested table page.
type PaginateStep struct {
	PageSize int
}

func (s *PaginateStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Page = Paginate(state.Records, state.RequestedPage, s.PageSize)
	return nil
}

// Step 7: AggregateStep computes the daily and monthly series.
type AggregateStep struct {
	StakeValue float64
}

func (s *AggregateStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Daily = DailyAggregates(state.Records, s.StakeValue)
	state.Monthly = MonthlyAggregates(state.Records)
	state.Latest = LatestMonth(state.Monthly)
	return nil
}

// Step 8: FinalizeStep assembles the immutable report snapshot.
type FinalizeStep struct {
	StakeValue float64
}

func (s *FinalizeStep) Execute(ctx context.Context, state *PipelineState) error {
	issues := make([]domain.FieldIssue, 0, len(state.Issues))
	for _, fe := range state.Issues {
		issues = append(issues, fe.Issue())
	}

	state.Report = &domain.Report{
		CycleID:      state.CycleID,
		Sheet:        state.Target.Sheet,
		Month:        state.Target.Month,
		Target:       state.Target.URI,
		FetchedAt:    state.FetchedAt,
		StakeValue:   s.StakeValue,
		Columns:      state.Header.DisplayColumns(),
		Records:      state.Records,
		Page:         state.Page,
		Daily:        state.Daily,
		Monthly:      state.Monthly,
		LatestMonth:  state.Latest,
		Issues:       issues,
		UndatedCount: CountUndated(state.Records),
		Empty:        len(state.Records) == 0,
	}
	return nil
}
