package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/profit-report/internal/config"
	"github.com/dvloznov/profit-report/internal/fetch"
)

// MockFetcher is a mock implementation of Fetcher for testing.
type MockFetcher struct {
	FetchFunc func(ctx context.Context, uri string) ([]byte, error)
	calls     []string
}

func (m *MockFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	m.calls = append(m.calls, uri)
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, uri)
	}
	return nil, nil
}

func csvFetcher(body string) *MockFetcher {
	return &MockFetcher{FetchFunc: func(ctx context.Context, uri string) ([]byte, error) {
		return []byte(body), nil
	}}
}

func newTestService(t *testing.T, fetcher Fetcher) *Service {
	t.Helper()
	cfg := config.Default()
	resolver := fetch.NewResolver(cfg.Source, cfg.Sheets)
	return NewService(resolver, fetcher, OptionsFromConfig(&cfg), zerolog.Nop())
}

const scenarioCSV = "DATA,HR,CONFRONTO,Método,REALIZADA?,PROFIT\n" +
	"01/04/2025,14:00,A x B,Over,SIM,\"1,5\"\n" +
	"01/04/2025,14:00,A x B,Over,SIM,\"1,5\"\n" +
	"02/04/2025,16:00,C x D,Under,SIM,\"-2,0\"\n"

func TestService_BuildReport_Scenario(t *testing.T) {
	fetcher := csvFetcher(scenarioCSV)
	svc := newTestService(t, fetcher)

	report, err := svc.BuildReport(context.Background(), "CSCorito_Abril", 1)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.NotEmpty(t, report.CycleID)
	assert.Equal(t, "CSCorito_Abril", report.Sheet)
	assert.Equal(t, "Abril", report.Month)
	assert.Equal(t, 1000.0, report.StakeValue)
	assert.False(t, report.Empty)
	assert.Equal(t, []string{"date", "time", "matchup", "method", "units"}, report.Columns)
	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, report.Target, fetcher.calls[0])

	require.Len(t, report.Records, 2)
	// Most recent first.
	assert.Equal(t, civil.Date{Year: 2025, Month: 4, Day: 2}, report.Records[0].Date.Date)
	assert.Equal(t, "C x D", report.Records[0].Matchup)

	require.Len(t, report.Daily, 2)
	assert.Equal(t, civil.Date{Year: 2025, Month: 4, Day: 1}, report.Daily[0].Date)
	assert.InDelta(t, 1.5, report.Daily[0].DailyUnits, 1e-9)
	assert.InDelta(t, -2.0, report.Daily[1].DailyUnits, 1e-9)
	assert.InDelta(t, 1.5, report.Daily[0].CumulativeUnits, 1e-9)
	assert.InDelta(t, -0.5, report.Daily[1].CumulativeUnits, 1e-9)
	assert.InDelta(t, -500.0, report.Daily[1].CumulativeValue, 1e-6)

	require.Len(t, report.Monthly, 1)
	assert.Equal(t, "2025-04", report.Monthly[0].YearMonth)
	assert.InDelta(t, -0.5, report.Monthly[0].MonthlyUnits, 1e-9)
	require.NotNil(t, report.LatestMonth)
	assert.Equal(t, "2025-04", report.LatestMonth.YearMonth)

	assert.Equal(t, 1, report.Page.Number)
	assert.Equal(t, 1, report.Page.StartRow)
	assert.Equal(t, 2, report.Page.EndRow)
	assert.Empty(t, report.Issues)
}

func TestService_BuildReport_DefaultSheetAndClampedPage(t *testing.T) {
	fetcher := csvFetcher(scenarioCSV)
	svc := newTestService(t, fetcher)

	report, err := svc.BuildReport(context.Background(), "", 7)
	require.NoError(t, err)
	assert.Equal(t, "CSCorito_Abril", report.Sheet)
	assert.Equal(t, 1, report.Page.Number)
}

func TestService_BuildReport_Empty(t *testing.T) {
	svc := newTestService(t, csvFetcher("DATA,HR,CONFRONTO,Método,REALIZADA?,PROFIT\n"))

	report, err := svc.BuildReport(context.Background(), "CSCorito_Maio", 1)
	require.NoError(t, err)
	assert.True(t, report.Empty)
	assert.Empty(t, report.Records)
	assert.Empty(t, report.Page.Records)
	assert.Equal(t, 1, report.Page.TotalPages)
	assert.Empty(t, report.Daily)
	assert.Empty(t, report.Monthly)
	assert.Nil(t, report.LatestMonth)
}

func TestService_BuildReport_UnparseableFields(t *testing.T) {
	body := "DATA,PROFIT\n" +
		"01/05/2025,\"2,5\"\n" +
		"??,\"1,0\"\n" +
		"02/05/2025,abc\n"
	svc := newTestService(t, csvFetcher(body))

	report, err := svc.BuildReport(context.Background(), "CSCorito_Maio", 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"date", "units"}, report.Columns)
	require.Len(t, report.Records, 3)
	assert.False(t, report.Records[2].Date.Valid, "undated record sorts last")
	assert.Equal(t, 1, report.UndatedCount)
	require.Len(t, report.Issues, 2)
	assert.Equal(t, FieldDate, report.Issues[0].Field)
	assert.Equal(t, FieldUnits, report.Issues[1].Field)

	// The undated 1.0 is excluded; the null unit on 02/05 counts as zero.
	require.Len(t, report.Daily, 2)
	assert.InDelta(t, 2.5, report.Daily[1].CumulativeUnits, 1e-9)
	require.NotNil(t, report.LatestMonth)
	assert.Equal(t, "2025-05", report.LatestMonth.YearMonth)
	assert.InDelta(t, 2.5, report.LatestMonth.MonthlyUnits, 1e-9)
}

func TestService_BuildReport_MissingProfitColumn(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	resolver := fetch.NewResolver(cfg.Source, cfg.Sheets)
	svc := NewService(resolver, csvFetcher("DATA,HR\n01/04/2025,10:00\n"), OptionsFromConfig(&cfg), zerolog.New(&buf))

	report, err := svc.BuildReport(context.Background(), "CSCorito_Abril", 1)
	require.NoError(t, err)
	require.Len(t, report.Records, 1)
	assert.False(t, report.Records[0].Units.Valid)
	assert.Empty(t, report.Issues)
	assert.Contains(t, buf.String(), "Profit column not found")
}

func TestService_BuildReport_FetchError(t *testing.T) {
	fetcher := &MockFetcher{FetchFunc: func(ctx context.Context, uri string) ([]byte, error) {
		return nil, &fetch.FetchError{Kind: fetch.KindStatus, Target: uri, StatusCode: 404}
	}}
	svc := newTestService(t, fetcher)

	report, err := svc.BuildReport(context.Background(), "CSCorito_Abril", 1)
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, fetch.IsFetchError(err))
	assert.Contains(t, err.Error(), "pipeline step 2 failed")
}

func TestService_BuildReport_MalformedCSV(t *testing.T) {
	svc := newTestService(t, csvFetcher(""))

	_, err := svc.BuildReport(context.Background(), "CSCorito_Abril", 1)
	var fe *fetch.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fetch.KindMalformed, fe.Kind)
	assert.NotEmpty(t, fe.Target)
}

func TestService_BuildReport_UnknownSheet(t *testing.T) {
	fetcher := csvFetcher(scenarioCSV)
	svc := newTestService(t, fetcher)

	_, err := svc.BuildReport(context.Background(), "CSCorito_Dezembro", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fetch.ErrUnknownSheet))
	assert.False(t, fetch.IsFetchError(err))
	assert.Empty(t, fetcher.calls)
}

func TestPipeline_StopsAtFirstError(t *testing.T) {
	var ran []int
	step := func(n int, err error) PipelineStep {
		return stepFunc(func(ctx context.Context, state *PipelineState) error {
			ran = append(ran, n)
			return err
		})
	}

	p := NewPipeline(step(1, nil), step(2, errors.New("boom")), step(3, nil))
	err := p.Execute(context.Background(), &PipelineState{})
	require.Error(t, err)
	assert.Equal(t, "pipeline step 2 failed: boom", err.Error())
	assert.Equal(t, []int{1, 2}, ran)
}

type stepFunc func(ctx context.Context, state *PipelineState) error

func (f stepFunc) Execute(ctx context.Context, state *PipelineState) error { return f(ctx, state) }
