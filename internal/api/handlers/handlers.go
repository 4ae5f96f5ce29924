package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/profit-report/internal/api/middleware"
	"github.com/dvloznov/profit-report/internal/domain"
	"github.com/dvloznov/profit-report/internal/fetch"
	"github.com/dvloznov/profit-report/internal/presentation"
)

// ReportService runs one fetch-transform cycle per call.
// *pipeline.Service is the production implementation.
type ReportService interface {
	BuildReport(ctx context.Context, sheet string, page int) (*domain.Report, error)
	Sheets() []string
}

// SheetInfo describes one selectable sheet.
type SheetInfo struct {
	Sheet string `json:"sheet"`
	Month string `json:"month"`
}

// ReportsHandler handles sheet and report endpoints.
type ReportsHandler struct {
	svc       ReportService
	presenter *presentation.Presenter
	log       zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(svc ReportService, presenter *presentation.Presenter, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{
		svc:       svc,
		presenter: presenter,
		log:       log,
	}
}

// ListSheets handles GET /api/sheets
func (h *ReportsHandler) ListSheets(w http.ResponseWriter, r *http.Request) {
	labels := h.svc.Sheets()
	sheets := make([]SheetInfo, 0, len(labels))
	for _, s := range labels {
		sheets = append(sheets, SheetInfo{Sheet: s, Month: fetch.MonthLabel(s)})
	}

	middleware.WriteNegotiated(w, r, http.StatusOK, map[string]interface{}{
		"sheets": sheets,
		"count":  len(sheets),
	})
}

// GetReport handles GET /api/report?sheet=&page=
func (h *ReportsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	sheet := strings.TrimSpace(query.Get("sheet"))

	page := 1
	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "page must be an integer")
			return
		}
		page = p
	}

	report, err := h.svc.BuildReport(ctx, sheet, page)
	if err != nil {
		h.writeReportError(ctx, w, sheet, err)
		return
	}

	middleware.WriteNegotiated(w, r, http.StatusOK, h.presenter.Build(report))
}

func (h *ReportsHandler) writeReportError(ctx context.Context, w http.ResponseWriter, sheet string, err error) {
	log := h.log.With().Str("request_id", middleware.RequestIDFromContext(ctx)).Logger()

	var fe *fetch.FetchError
	switch {
	case errors.Is(err, fetch.ErrUnknownSheet):
		middleware.WriteError(w, http.StatusBadRequest, "unknown sheet: "+sheet)
	case errors.As(err, &fe):
		log.Error().Err(err).Str("sheet", sheet).Str("kind", string(fe.Kind)).Msg("Failed to fetch sheet data")
		middleware.WriteError(w, http.StatusBadGateway, "Could not retrieve sheet data: "+fe.Error())
	default:
		log.Error().Err(err).Str("sheet", sheet).Msg("Failed to build report")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build report")
	}
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
