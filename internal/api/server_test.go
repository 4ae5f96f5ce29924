package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/dvloznov/profit-report/internal/domain"
	"github.com/dvloznov/profit-report/internal/fetch"
	"github.com/dvloznov/profit-report/internal/presentation"
)

// MockReportService is a mock implementation of handlers.ReportService for testing.
type MockReportService struct {
	BuildReportFunc func(ctx context.Context, sheet string, page int) (*domain.Report, error)
	SheetsFunc      func() []string
}

func (m *MockReportService) BuildReport(ctx context.Context, sheet string, page int) (*domain.Report, error) {
	return m.BuildReportFunc(ctx, sheet, page)
}

func (m *MockReportService) Sheets() []string {
	if m.SheetsFunc != nil {
		return m.SheetsFunc()
	}
	return []string{"CSCorito_Abril", "CSCorito_Maio"}
}

func testReport(sheet string, page int) *domain.Report {
	d := civil.Date{Year: 2025, Month: 5, Day: 1}
	rec := domain.Record{
		Date:    bigquery.NullDate{Date: d, Valid: true},
		Matchup: "A x B",
		Units:   bigquery.NullFloat64{Float64: 1.5, Valid: true},
	}
	latest := domain.MonthlyAggregate{YearMonth: "2025-05", MonthlyUnits: 1.5}
	return &domain.Report{
		Sheet:       sheet,
		Month:       fetch.MonthLabel(sheet),
		StakeValue:  1000,
		Columns:     []string{"date", "matchup", "units"},
		Records:     []domain.Record{rec},
		Page:        domain.Page{Number: page, Size: 20, TotalRows: 1, TotalPages: 1, StartRow: 1, EndRow: 1, Records: []domain.Record{rec}},
		Daily:       []domain.DailyAggregate{{Date: d, DailyUnits: 1.5, CumulativeUnits: 1.5, CumulativeValue: 1500}},
		Monthly:     []domain.MonthlyAggregate{latest},
		LatestMonth: &latest,
	}
}

func newTestServer(svc *MockReportService) http.Handler {
	return New(Config{
		Port:      0,
		Log:       zerolog.Nop(),
		Service:   svc,
		Presenter: presentation.NewPresenter(presentation.DarkTheme(), "CSCorito", "R$"),
	}).Handler()
}

func doGet(t *testing.T, h http.Handler, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doGet(t, newTestServer(&MockReportService{}), "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestListSheets(t *testing.T) {
	rec := doGet(t, newTestServer(&MockReportService{}), "/api/sheets", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Sheets []struct {
			Sheet string `json:"sheet"`
			Month string `json:"month"`
		} `json:"sheets"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "CSCorito_Abril", body.Sheets[0].Sheet)
	assert.Equal(t, "Abril", body.Sheets[0].Month)
}

func TestGetReport(t *testing.T) {
	var gotSheet string
	var gotPage int
	svc := &MockReportService{BuildReportFunc: func(ctx context.Context, sheet string, page int) (*domain.Report, error) {
		gotSheet, gotPage = sheet, page
		return testReport("CSCorito_Maio", page), nil
	}}

	rec := doGet(t, newTestServer(svc), "/api/report?sheet=CSCorito_Maio&page=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "CSCorito_Maio", gotSheet)
	assert.Equal(t, 2, gotPage)

	var view presentation.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "Report CSCorito - Month Maio", view.Title)
	assert.Equal(t, "In month 2025-05 you are at 1.50 units (R$ 1,500.00).", view.Headline)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, []string{"2025-05-01", "A x B", "1.5"}, view.Rows[0])
	assert.Len(t, view.Charts, 2)
}

func TestGetReport_DefaultsSheetAndPage(t *testing.T) {
	var gotSheet string
	var gotPage int
	svc := &MockReportService{BuildReportFunc: func(ctx context.Context, sheet string, page int) (*domain.Report, error) {
		gotSheet, gotPage = sheet, page
		return testReport("CSCorito_Abril", page), nil
	}}

	rec := doGet(t, newTestServer(svc), "/api/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", gotSheet)
	assert.Equal(t, 1, gotPage)
}

func TestGetReport_Msgpack(t *testing.T) {
	svc := &MockReportService{BuildReportFunc: func(ctx context.Context, sheet string, page int) (*domain.Report, error) {
		return testReport("CSCorito_Maio", page), nil
	}}

	rec := doGet(t, newTestServer(svc), "/api/report?sheet=CSCorito_Maio", map[string]string{"Accept": "application/msgpack"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get("Content-Type"))

	var decoded map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, "Report CSCorito - Month Maio", decoded["title"])
}

func TestGetReport_Errors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bad page",
			target:     "/api/report?page=two",
			wantStatus: http.StatusBadRequest,
			wantBody:   "page must be an integer",
		},
		{
			name:       "unknown sheet",
			target:     "/api/report?sheet=Nope",
			err:        fetchWrap(fetch.ErrUnknownSheet),
			wantStatus: http.StatusBadRequest,
			wantBody:   "unknown sheet",
		},
		{
			name:       "fetch error",
			target:     "/api/report?sheet=CSCorito_Maio",
			err:        fetchWrap(&fetch.FetchError{Kind: fetch.KindStatus, Target: "https://example", StatusCode: 500}),
			wantStatus: http.StatusBadGateway,
			wantBody:   "Could not retrieve sheet data",
		},
		{
			name:       "unexpected error",
			target:     "/api/report",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Failed to build report",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &MockReportService{BuildReportFunc: func(ctx context.Context, sheet string, page int) (*domain.Report, error) {
				called = true
				return nil, tt.err
			}}

			rec := doGet(t, newTestServer(svc), tt.target, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			if tt.err == nil {
				assert.False(t, called)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	rec := doGet(t, newTestServer(&MockReportService{}), "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPanicRecovery(t *testing.T) {
	svc := &MockReportService{BuildReportFunc: func(ctx context.Context, sheet string, page int) (*domain.Report, error) {
		panic("boom")
	}}

	rec := doGet(t, newTestServer(svc), "/api/report", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func fetchWrap(err error) error {
	return fmt.Errorf("BuildReport: pipeline step 1 failed: %w", err)
}
