package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/dennisdiepolder/champkpi/internal/auth"
	"github.com/dennisdiepolder/champkpi/internal/export"
	"github.com/dennisdiepolder/champkpi/internal/period"
	"github.com/dennisdiepolder/champkpi/internal/report"
	"github.com/dennisdiepolder/champkpi/internal/storage"
	"github.com/dennisdiepolder/champkpi/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// KPIHandler serves employee KPI reports
type KPIHandler struct {
	service *report.Service
	logger  zerolog.Logger
}

// NewKPIHandler creates a new KPIHandler
func NewKPIHandler(service *report.Service, logger zerolog.Logger) *KPIHandler {
	return &KPIHandler{
		service: service,
		logger:  logger.With().Str("component", "kpi_api").Logger(),
	}
}

// GetReport handles GET /api/kpi/{employeeId}?period=Month&selector=March
func (h *KPIHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// GetReportPDF handles GET /api/kpi/{employeeId}/report.pdf
func (h *KPIHandler) GetReportPDF(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, rep); err != nil {
		h.logger.Error().Err(err).Str("employee_id", rep.EmployeeID).Msg("pdf rendering failed")
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="kpi-`+rep.EmployeeID+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetPeriods handles GET /api/periods?period=Week&employeeId=1070
func (h *KPIHandler) GetPeriods(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	employeeID := q.Get("employeeId")

	if employeeID != "" && !h.allowed(r, employeeID) {
		writeError(w, http.StatusForbidden, "not allowed to view this employee")
		return
	}
	// agents only ever see their own periods
	if claims, ok := auth.GetUserFromContext(r.Context()); ok && claims.Role == auth.RoleAgent {
		employeeID = claims.EmployeeID
	}

	periods, err := h.service.Periods(r.Context(), q.Get("period"), employeeID)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"period":  q.Get("period"),
		"periods": periods,
	})
}

func (h *KPIHandler) lookup(w http.ResponseWriter, r *http.Request) (*types.Report, bool) {
	employeeID := chi.URLParam(r, "employeeId")
	if !h.allowed(r, employeeID) {
		writeError(w, http.StatusForbidden, "not allowed to view this employee")
		return nil, false
	}

	q := r.URL.Query()
	rep, err := h.service.Lookup(r.Context(), report.Query{
		EmployeeID: employeeID,
		Kind:       q.Get("period"),
		Selector:   q.Get("selector"),
	})
	if err != nil {
		h.writeLookupError(w, err)
		return nil, false
	}
	return rep, true
}

func (h *KPIHandler) allowed(r *http.Request, employeeID string) bool {
	claims, ok := auth.GetUserFromContext(r.Context())
	return ok && auth.CanView(claims, employeeID)
}

// writeLookupError maps service errors onto status codes
func (h *KPIHandler) writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, period.ErrUnknownKind), errors.Is(err, report.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrSourceUnavailable):
		h.logger.Error().Err(err).Msg("data source unavailable")
		writeError(w, http.StatusServiceUnavailable, "data source unavailable")
	default:
		h.logger.Error().Err(err).Msg("lookup failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
