package model

import (
	"time"

	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Ward represents an administrative division of the city. Wards own
// zero or more assets and are the middle tier of score aggregation.
type Ward struct {
	ID        types.WardID
	Code      string // Stable ward code used for deterministic rank tie-breaks
	Name      string
	Zone      string
	Officer   string
	Center    Location
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewWard creates a new Ward with a generated ID
func NewWard(code, name string) (*Ward, error) {
	if code == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "ward code is required")
	}
	if name == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "ward name is required")
	}

	now := time.Now()
	return &Ward{
		ID:        types.NewWardID(),
		Code:      code,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate validates the ward
func (w *Ward) Validate() error {
	if w.ID == "" {
		return goerr.Wrap(ErrInvalidInput, "ward ID is required")
	}
	if w.Code == "" {
		return goerr.Wrap(ErrInvalidInput, "ward code is required",
			goerr.V("wardID", w.ID))
	}
	if w.Name == "" {
		return goerr.Wrap(ErrInvalidInput, "ward name is required",
			goerr.V("wardID", w.ID))
	}
	return nil
}
