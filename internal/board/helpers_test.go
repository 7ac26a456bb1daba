package board

import (
	"fmt"
	"time"

	"github.com/spec-kit/fluxboard/internal/domain"
)

func strPtr(s string) *string { return &s }

func newFlux(id string, typ domain.FluxType, state *string) domain.Flux {
	return domain.Flux{
		ID:          id,
		CreatedAt:   time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		ClientName:  "Client " + id,
		ClientPhone: "0600000000",
		Address:     "1 rue de la Paix",
		City:        "Paris",
		PostCode:    "75002",
		TypeFlux:    typ,
		State:       state,
	}
}

func numbered(n int) []domain.Flux {
	list := make([]domain.Flux, n)
	for i := range list {
		list[i] = newFlux(fmt.Sprintf("f%02d", i), domain.FluxTypeCommande, nil)
	}
	return list
}

func ids(list []domain.Flux) []string {
	out := make([]string, len(list))
	for i, f := range list {
		out[i] = f.ID
	}
	return out
}
