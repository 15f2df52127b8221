/*
handlers.go - HTTP handler implementations

PURPOSE:
  Thin HTTP layer over the LeaveService. Each handler:
  1. Extracts parameters (owner, dates, ids)
  2. Parses and validates the request body
  3. Calls the service
  4. Serializes the response

ERROR HANDLING:
  Errors map to JSON bodies with appropriate status:
  - 400: Validation errors, invalid dates/periods
  - 404: Unknown type or rule
  - 500: Store failures

SEE ALSO:
  - dto.go: Request/response data structures
  - service.go: The composed leave service
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mchuche/gestion-conges-sub000/calendar"
	"github.com/mchuche/gestion-conges-sub000/leave"
	"github.com/mchuche/gestion-conges-sub000/recurrence"
)

// defaultOwner backs single-user deployments where no owner is supplied.
const defaultOwner = "default"

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Svc *LeaveService
}

// NewHandler creates a handler over the service.
func NewHandler(svc *LeaveService) *Handler {
	return &Handler{Svc: svc}
}

func ownerFrom(r *http.Request) string {
	if owner := r.URL.Query().Get("owner"); owner != "" {
		return owner
	}
	return defaultOwner
}

// yearFrom parses the year query parameter, defaulting to the current year.
func (h *Handler) yearFrom(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return h.Svc.Clock().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 {
		return 0, fmt.Errorf("invalid year %q", raw)
	}
	return year, nil
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

// GetLedger returns the owner's ledger, optionally filtered by year.
// GET /api/ledger?owner=&year=
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r)
	ledger, err := h.Svc.Ledger(r.Context(), owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load ledger", err)
		return
	}

	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		filtered := make(leave.Ledger)
		for key, typeID := range ledger {
			if leave.KeyYear(key) == year {
				filtered[key] = typeID
			}
		}
		ledger = filtered
	}

	writeJSON(w, http.StatusOK, LedgerDTO{Owner: owner, Entries: ledger})
}

// GetDay returns the resolved entry for one calendar day.
// GET /api/ledger/{date}
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	day, err := calendar.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	ledger, err := h.Svc.Ledger(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load ledger", err)
		return
	}
	entry := ledger.Entry(day)
	writeJSON(w, http.StatusOK, DayEntryDTO{
		Date:      calendar.DayKey(day),
		Full:      entry.Full,
		Morning:   entry.Morning,
		Afternoon: entry.Afternoon,
	})
}

// SetEntry writes one ledger entry.
// POST /api/ledger/entries
func (h *Handler) SetEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	day, err := calendar.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	if req.TypeID == "" {
		writeError(w, http.StatusBadRequest, "leaveTypeId is required", nil)
		return
	}

	err = h.Svc.SetEntry(r.Context(), ownerFrom(r), day, leave.Period(req.Period), req.TypeID)
	if err != nil {
		writeServiceError(w, err, "Failed to set entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveEntry clears one ledger entry.
// DELETE /api/ledger/entries
func (h *Handler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	day, err := calendar.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	err = h.Svc.RemoveEntry(r.Context(), ownerFrom(r), day, leave.Period(req.Period))
	if err != nil {
		writeServiceError(w, err, "Failed to remove entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// LEAVE TYPE HANDLERS
// =============================================================================

// ListTypes returns the owner's leave types.
// GET /api/types
func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	registry, err := h.Svc.Registry(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load types", err)
		return
	}
	writeJSON(w, http.StatusOK, registry.Types())
}

// CreateType stores a leave type.
// POST /api/types
func (h *Handler) CreateType(w http.ResponseWriter, r *http.Request) {
	var t leave.LeaveType
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	saved, err := h.Svc.UpsertType(r.Context(), ownerFrom(r), t)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave type", err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// UpdateType replaces a leave type.
// PUT /api/types/{id}
func (h *Handler) UpdateType(w http.ResponseWriter, r *http.Request) {
	var t leave.LeaveType
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	t.ID = chi.URLParam(r, "id")
	saved, err := h.Svc.UpsertType(r.Context(), ownerFrom(r), t)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave type", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteType removes a type, cascading to its ledger entries and quotas.
// DELETE /api/types/{id}
func (h *Handler) DeleteType(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Svc.DeleteType(r.Context(), ownerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "Failed to delete type")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removedEntries": removed})
}

// =============================================================================
// QUOTA HANDLERS
// =============================================================================

// ListQuotas returns the owner's quota table.
// GET /api/quotas
func (h *Handler) ListQuotas(w http.ResponseWriter, r *http.Request) {
	registry, err := h.Svc.Registry(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load quotas", err)
		return
	}
	table := registry.Quotas()
	dtos := make([]QuotaDTO, 0, len(table))
	for key, days := range table {
		dtos = append(dtos, QuotaDTO{Year: key.Year, TypeID: key.TypeID, Days: days})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SetQuota writes one quota cell.
// PUT /api/quotas
func (h *Handler) SetQuota(w http.ResponseWriter, r *http.Request) {
	var req QuotaDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	err := h.Svc.SetQuota(r.Context(), ownerFrom(r), req.Year, req.TypeID, req.Days)
	if err != nil {
		writeServiceError(w, err, "Failed to set quota")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RECURRENCE RULE HANDLERS
// =============================================================================

// ListRules returns the owner's stored rules.
// GET /api/rules
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Svc.ListRules(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load rules", err)
		return
	}
	if rules == nil {
		rules = []recurrence.Rule{}
	}
	writeJSON(w, http.StatusOK, rules)
}

// CreateRule stores a new rule.
// POST /api/rules
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var rule recurrence.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	saved, err := h.Svc.SaveRule(r.Context(), ownerFrom(r), rule)
	if err != nil {
		writeServiceError(w, err, "Invalid rule")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// UpdateRule replaces a stored rule.
// PUT /api/rules/{id}
func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	var rule recurrence.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	rule.ID = chi.URLParam(r, "id")
	saved, err := h.Svc.SaveRule(r.Context(), ownerFrom(r), rule)
	if err != nil {
		writeServiceError(w, err, "Invalid rule")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteRule removes a stored rule.
// DELETE /api/rules/{id}
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	err := h.Svc.DeleteRule(r.Context(), ownerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "Failed to delete rule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PreviewRule expands a rule without writing anything.
// POST /api/rules/preview
func (h *Handler) PreviewRule(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	window, err := windowFrom(req.From, req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid window", err)
		return
	}
	result, err := h.Svc.PreviewRule(r.Context(), ownerFrom(r), req.Rule, window, req.Country)
	if err != nil {
		writeServiceError(w, err, "Invalid rule")
		return
	}
	writeJSON(w, http.StatusOK, toGenerationDTO(result, false))
}

// ApplyRule expands a stored rule into the ledger.
// POST /api/rules/{id}/apply
func (h *Handler) ApplyRule(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	window, err := windowFrom(req.From, req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid window", err)
		return
	}
	result, err := h.Svc.ApplyRule(r.Context(), ownerFrom(r), chi.URLParam(r, "id"), window, req.Country)
	if err != nil {
		writeServiceError(w, err, "Failed to apply rule")
		return
	}
	writeJSON(w, http.StatusOK, toGenerationDTO(result, true))
}

func windowFrom(from, to *string) (Window, error) {
	var window Window
	if from != nil {
		day, err := calendar.ParseDay(*from)
		if err != nil {
			return Window{}, err
		}
		window.From = day
	}
	if to != nil {
		day, err := calendar.ParseDay(*to)
		if err != nil {
			return Window{}, err
		}
		window.To = day
	}
	return window, nil
}

// =============================================================================
// STATS AND HOLIDAY HANDLERS
// =============================================================================

// GetStats returns the quota consumption report for a year.
// GET /api/stats?year=
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	year, err := h.yearFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	report, err := h.Svc.ComputeStats(r.Context(), ownerFrom(r), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats", err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsDTO(report))
}

// GetHolidays returns the holiday map for a country and year.
// GET /api/holidays?country=&year=
func (h *Handler) GetHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := h.yearFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	country := r.URL.Query().Get("country")
	if country == "" {
		country = calendar.DefaultCountry
	}
	writeJSON(w, http.StatusOK, HolidaysDTO{
		Country:  country,
		Year:     year,
		Holidays: h.Svc.Holidays(country, year),
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps domain errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case leave.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusBadRequest, message, err)
	}
}
