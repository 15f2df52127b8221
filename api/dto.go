/*
dto.go - Data transfer objects for API requests and responses

PURPOSE:
  JSON shapes decoupling the domain model from the API contract. Dates
  travel as YYYY-MM-DD strings and are parsed at this boundary; a bad
  date is a 400, never a silent substitution.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - recurrence/rule.go: Rule carries its own JSON encoding
*/
package api

import (
	"github.com/mchuche/gestion-conges-sub000/calendar"
	"github.com/mchuche/gestion-conges-sub000/recurrence"
	"github.com/mchuche/gestion-conges-sub000/stats"
)

// =============================================================================
// LEDGER
// =============================================================================

// LedgerDTO is the owner's raw ledger: encoded date key -> leave type id.
type LedgerDTO struct {
	Owner   string            `json:"owner"`
	Entries map[string]string `json:"entries"`
}

// EntryRequest sets or removes one ledger entry.
type EntryRequest struct {
	Date   string `json:"date"`   // YYYY-MM-DD
	Period string `json:"period"` // full | morning | afternoon
	TypeID string `json:"leaveTypeId,omitempty"`
}

// DayEntryDTO is the resolved state of one calendar day.
type DayEntryDTO struct {
	Date      string `json:"date"`
	Full      string `json:"full,omitempty"`
	Morning   string `json:"morning,omitempty"`
	Afternoon string `json:"afternoon,omitempty"`
}

// =============================================================================
// QUOTAS
// =============================================================================

// QuotaDTO is one quota cell.
type QuotaDTO struct {
	Year   int    `json:"year"`
	TypeID string `json:"leaveTypeId"`
	Days   int    `json:"days"`
}

// =============================================================================
// RECURRENCE
// =============================================================================

// OccurrenceDTO is one generated occurrence.
type OccurrenceDTO struct {
	Date        string `json:"date"`
	Period      string `json:"period"`
	LeaveTypeID string `json:"leaveTypeId"`
}

// GenerationDTO is the outcome of a preview or apply run.
type GenerationDTO struct {
	Occurrences []OccurrenceDTO `json:"occurrences"`
	Count       int             `json:"count"`
	Truncated   bool            `json:"truncated"`
	Applied     bool            `json:"applied"`
}

// ApplyRequest bounds the generation window. Absent fields default to the
// rule's start date and the end of next year.
type ApplyRequest struct {
	From    *string `json:"from,omitempty"` // YYYY-MM-DD
	To      *string `json:"to,omitempty"`   // YYYY-MM-DD
	Country string  `json:"country,omitempty"`
}

// PreviewRequest is an ApplyRequest carrying the rule inline (dry run,
// nothing is stored).
type PreviewRequest struct {
	Rule    recurrence.Rule `json:"rule"`
	From    *string         `json:"from,omitempty"`
	To      *string         `json:"to,omitempty"`
	Country string          `json:"country,omitempty"`
}

func toGenerationDTO(result recurrence.Result, applied bool) GenerationDTO {
	dtos := make([]OccurrenceDTO, len(result.Occurrences))
	for i, occ := range result.Occurrences {
		dtos[i] = OccurrenceDTO{
			Date:        calendar.DayKey(occ.Date),
			Period:      string(occ.Period),
			LeaveTypeID: occ.LeaveTypeID,
		}
	}
	return GenerationDTO{
		Occurrences: dtos,
		Count:       len(dtos),
		Truncated:   result.Truncated,
		Applied:     applied,
	}
}

// =============================================================================
// STATS
// =============================================================================

// TypeUsageDTO is the consumption state of one leave type.
type TypeUsageDTO struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Label            string  `json:"label"`
	Color            string  `json:"color"`
	Category         string  `json:"category"`
	Used             float64 `json:"used"`
	UsedDisplay      string  `json:"usedDisplay"`
	Quota            *int    `json:"quota,omitempty"`
	Remaining        float64 `json:"remaining"`
	RemainingDisplay string  `json:"remainingDisplay"`
}

// StatsDTO is the accounting report for one year.
type StatsDTO struct {
	Year                  int            `json:"year"`
	Types                 []TypeUsageDTO `json:"types"`
	TotalUsed             float64        `json:"totalUsed"`
	TotalUsedDisplay      string         `json:"totalUsedDisplay"`
	TotalQuota            float64        `json:"totalQuota"`
	TotalRemaining        float64        `json:"totalRemaining"`
	TotalRemainingDisplay string         `json:"totalRemainingDisplay"`
}

func toStatsDTO(report stats.Report) StatsDTO {
	dto := StatsDTO{
		Year:                  report.Year,
		Types:                 make([]TypeUsageDTO, 0, len(report.Types)),
		TotalUsed:             report.TotalUsed.InexactFloat64(),
		TotalUsedDisplay:      stats.Format(report.TotalUsed),
		TotalQuota:            report.TotalQuota.InexactFloat64(),
		TotalRemaining:        report.TotalRemaining.InexactFloat64(),
		TotalRemainingDisplay: stats.Format(report.TotalRemaining),
	}
	for _, usage := range report.Types {
		t := TypeUsageDTO{
			ID:               usage.Type.ID,
			Name:             usage.Type.Name,
			Label:            usage.Type.Label,
			Color:            usage.Type.Color,
			Category:         string(usage.Type.Category),
			Used:             usage.Used.InexactFloat64(),
			UsedDisplay:      stats.Format(usage.Used),
			Remaining:        usage.Remaining.InexactFloat64(),
			RemainingDisplay: stats.Format(usage.Remaining),
		}
		if usage.HasQuota {
			q := usage.Quota
			t.Quota = &q
		}
		dto.Types = append(dto.Types, t)
	}
	return dto
}

// =============================================================================
// HOLIDAYS AND ERRORS
// =============================================================================

// HolidaysDTO is the holiday map for one (country, year).
type HolidaysDTO struct {
	Country  string            `json:"country"`
	Year     int               `json:"year"`
	Holidays map[string]string `json:"holidays"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
