package board

import (
	"time"

	"github.com/spec-kit/fluxboard/internal/domain"
)

const createdAtLayout = "02/01/2006 15:04"

// StateLabel is the text shown in the state badge.
func StateLabel(f domain.Flux) string {
	if s := f.StateValue(); s != "" {
		return s
	}
	return domain.StateNotDone
}

// TypeLabel is the text shown in the type column.
func TypeLabel(f domain.Flux) string {
	if f.TypeFlux == "" {
		return "Non spécifié"
	}
	return string(f.TypeFlux)
}

// GameLabel is the text shown in the game column.
func GameLabel(f domain.Flux) string {
	if f.GameModel == nil || *f.GameModel == "" {
		return "Non spécifié"
	}
	return *f.GameModel
}

// AssigneeLabel is the text shown in the assignee column.
func AssigneeLabel(f domain.Flux) string {
	if f.AssigneeEmail == nil || *f.AssigneeEmail == "" {
		return "Non assigné"
	}
	return *f.AssigneeEmail
}

// FormatCreatedAt renders t in loc, or "Date invalide" for the zero time.
func FormatCreatedAt(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "Date invalide"
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(createdAtLayout)
}
