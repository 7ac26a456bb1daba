package domain

import "time"

// FluxType is the kind of customer request. Values outside the known set are kept as-is.
type FluxType string

const (
	FluxTypeCommande     FluxType = "Commande"
	FluxTypeInstallation FluxType = "Installation"
	FluxTypeLocation     FluxType = "Location"
)

// Well-known state labels. State is free text in the store; these are the
// values the dashboard itself writes.
const (
	StateDone        = "Traité"
	StateNotDone     = "Non traité"
	StateScheduled   = "Planifié"
	StateCallback    = "Rappel"
	StateTransmitted = "Traitée et transmise au vendeur"
)

// Flux is a customer order, installation or rental tracked on the dashboard.
type Flux struct {
	ID            string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	ClientName    string
	ClientEmail   *string
	ClientPhone   string
	Address       string
	City          string
	PostCode      string
	TypeFlux      FluxType
	GameModel     *string
	State         *string
	Details       *string
	AssigneeID    *string
	AssigneeEmail *string
	CreatedBy     *string
}

// StateValue returns the state or an empty string when unset.
func (f Flux) StateValue() string {
	if f.State == nil {
		return ""
	}
	return *f.State
}

// IsAssignedTo reports whether the flux is currently assigned to userID.
func (f Flux) IsAssignedTo(userID string) bool {
	return f.AssigneeID != nil && *f.AssigneeID == userID
}
