/*
types.go - Leave type definitions

PURPOSE:
  A LeaveType describes one kind of absence a user can mark. Types in the
  "leave" category are counted against yearly quotas; "event" types are
  informational markers (sick day, remote work) and never consume quota.

SEE ALSO:
  - registry.go: Type registry and quota table
  - stats/stats.go: Quota accounting over leave-category types
*/
package leave

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// =============================================================================
// CATEGORY
// =============================================================================

type Category string

const (
	// CategoryLeave participates in quota accounting.
	CategoryLeave Category = "leave"
	// CategoryEvent is informational only and never consumes quota.
	CategoryEvent Category = "event"
)

func (c Category) Valid() bool {
	return c == CategoryLeave || c == CategoryEvent
}

// =============================================================================
// LEAVE TYPE
// =============================================================================

// LeaveType describes one kind of absence.
type LeaveType struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Label    string   `json:"label"` // short display code, e.g. "CP"
	Color    string   `json:"color"` // display hint, opaque to core logic
	Category Category `json:"category"`
}

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate checks the type definition.
func (t LeaveType) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.ID, validation.Required),
		validation.Field(&t.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&t.Label, validation.Required, validation.Length(1, 8)),
		validation.Field(&t.Color, validation.Required, validation.Match(colorPattern)),
		validation.Field(&t.Category, validation.Required, validation.By(func(any) error {
			if !t.Category.Valid() {
				return ErrInvalidCategory
			}
			return nil
		})),
	)
}

// DefaultType is auto-inserted whenever the registry would become empty.
// The registry never has zero types.
func DefaultType() LeaveType {
	return LeaveType{
		ID:       "conges-payes",
		Name:     "Congés payés",
		Label:    "CP",
		Color:    "#4f86f7",
		Category: CategoryLeave,
	}
}
