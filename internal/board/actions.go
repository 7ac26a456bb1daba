package board

import (
	"fmt"

	"github.com/spec-kit/fluxboard/internal/domain"
)

// ActionKind distinguishes state changes from assignments.
type ActionKind string

const (
	ActionSetState ActionKind = "set_state"
	ActionTransmit ActionKind = "transmit"
	ActionAssign   ActionKind = "assign"
)

// Action is one entry of a flux row's menu.
type Action struct {
	Kind          ActionKind
	Label         string
	State         string
	AssigneeID    string
	AssigneeEmail string
}

// Key identifies the action for deduplication.
func (a Action) Key() string {
	if a.Kind == ActionAssign {
		return string(a.Kind) + ":" + a.AssigneeID
	}
	return string(a.Kind) + ":" + a.State
}

type actionRule struct {
	roles   []domain.Role
	types   []domain.FluxType // nil applies to every type
	actions []Action
}

var transmitAction = Action{Kind: ActionTransmit, Label: "Transmettre au vendeur", State: domain.StateTransmitted}

var actionTable = []actionRule{
	{
		roles: []domain.Role{domain.RoleVendeur, domain.RoleSuperAdmin},
		actions: []Action{
			{Kind: ActionSetState, Label: "Marquer comme traité", State: domain.StateDone},
			{Kind: ActionSetState, Label: "Marquer comme non traité", State: domain.StateNotDone},
			{Kind: ActionSetState, Label: "Planifier", State: domain.StateScheduled},
			{Kind: ActionSetState, Label: "Rappel client", State: domain.StateCallback},
		},
	},
	{
		roles:   []domain.Role{domain.RoleTechnicien, domain.RoleSuperAdmin},
		types:   []domain.FluxType{domain.FluxTypeInstallation},
		actions: []Action{transmitAction},
	},
	{
		roles:   []domain.Role{domain.RoleGestionnaireStock, domain.RoleSuperAdmin},
		types:   []domain.FluxType{domain.FluxTypeCommande, domain.FluxTypeLocation},
		actions: []Action{transmitAction},
	},
}

func (r actionRule) applies(role domain.Role, typ domain.FluxType) bool {
	if !containsRole(r.roles, role) {
		return false
	}
	if r.types == nil {
		return true
	}
	for _, t := range r.types {
		if t == typ {
			return true
		}
	}
	return false
}

func containsRole(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// AvailableActions returns the menu for flux f as seen by role. Every role
// may assign the flux to any of the assignable users except its current assignee.
func AvailableActions(f domain.Flux, role domain.Role, assignable []domain.User) []Action {
	seen := make(map[string]struct{})
	var result []Action
	add := func(a Action) {
		if _, dup := seen[a.Key()]; dup {
			return
		}
		seen[a.Key()] = struct{}{}
		result = append(result, a)
	}

	for _, rule := range actionTable {
		if !rule.applies(role, f.TypeFlux) {
			continue
		}
		for _, a := range rule.actions {
			add(a)
		}
	}
	for _, u := range assignable {
		if f.IsAssignedTo(u.ID) {
			continue
		}
		add(Action{
			Kind:          ActionAssign,
			Label:         fmt.Sprintf("Assigner à %s", u.Email),
			AssigneeID:    u.ID,
			AssigneeEmail: u.Email,
		})
	}
	return result
}

// PermitsState reports whether actions contains a state change to state.
func PermitsState(actions []Action, state string) bool {
	for _, a := range actions {
		if a.Kind != ActionAssign && a.State == state {
			return true
		}
	}
	return false
}
