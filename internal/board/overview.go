package board

import (
	"math"

	"github.com/spec-kit/fluxboard/internal/domain"
)

// Card is one overview counter: how many of Total are Count.
type Card struct {
	Title   string
	Count   int
	Total   int
	Percent int
}

// Overview is the row of cards above the flux table.
type Overview struct {
	Commandes     Card
	Installations Card
	Locations     Card
	Rappels       Card
}

// Cards returns the cards in display order.
func (o Overview) Cards() []Card {
	return []Card{o.Commandes, o.Installations, o.Locations, o.Rappels}
}

// Summarize counts done flux per type and callbacks over the whole list.
func Summarize(list []domain.Flux) Overview {
	o := Overview{
		Commandes:     Card{Title: "Commandes"},
		Installations: Card{Title: "Installations"},
		Locations:     Card{Title: "Locations"},
		Rappels:       Card{Title: "Rappels", Total: len(list)},
	}
	for _, f := range list {
		var card *Card
		switch f.TypeFlux {
		case domain.FluxTypeCommande:
			card = &o.Commandes
		case domain.FluxTypeInstallation:
			card = &o.Installations
		case domain.FluxTypeLocation:
			card = &o.Locations
		}
		if card != nil {
			card.Total++
			if IsDone(f.State) {
				card.Count++
			}
		}
		if f.State != nil && *f.State == domain.StateCallback {
			o.Rappels.Count++
		}
	}
	for _, c := range []*Card{&o.Commandes, &o.Installations, &o.Locations, &o.Rappels} {
		c.Percent = percent(c.Count, c.Total)
	}
	return o
}

func percent(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
