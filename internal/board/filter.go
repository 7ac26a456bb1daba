package board

import (
	"strings"

	"github.com/spec-kit/fluxboard/internal/domain"
)

// Category is the badge bucket a flux state falls in.
type Category string

const (
	CategoryDone      Category = "done"
	CategoryCallback  Category = "callback"
	CategoryScheduled Category = "scheduled"
	CategoryPending   Category = "pending"
)

// Search returns the flux where one of the searchable fields contains term,
// ignoring case. Input order is kept. An empty term returns a copy of list.
func Search(list []domain.Flux, term string) []domain.Flux {
	needle := strings.ToLower(term)
	result := make([]domain.Flux, 0, len(list))
	for _, f := range list {
		if needle == "" || matches(f, needle) {
			result = append(result, f)
		}
	}
	return result
}

func matches(f domain.Flux, needle string) bool {
	fields := []*string{
		&f.ClientName,
		&f.Address,
		&f.City,
		&f.PostCode,
		&f.ClientPhone,
		f.ClientEmail,
		f.GameModel,
		(*string)(&f.TypeFlux),
		f.State,
		f.AssigneeEmail,
	}
	for _, field := range fields {
		if field == nil {
			continue
		}
		if strings.Contains(strings.ToLower(*field), needle) {
			return true
		}
	}
	return false
}

// Classify maps the flux state to its badge category.
func Classify(f domain.Flux) Category {
	return ClassifyState(f.State)
}

// ClassifyState is Classify on a bare state value.
func ClassifyState(state *string) Category {
	switch {
	case IsDone(state):
		return CategoryDone
	case state != nil && *state == domain.StateCallback:
		return CategoryCallback
	case state != nil && *state == domain.StateScheduled:
		return CategoryScheduled
	default:
		return CategoryPending
	}
}

// IsDone reports whether state contains "trait" in any case.
// "Sous-traitance" would match too; the store has no closed state list.
func IsDone(state *string) bool {
	if state == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*state), "trait")
}
