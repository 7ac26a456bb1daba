package dto

import (
	"time"

	"github.com/spec-kit/fluxboard/internal/board"
	"github.com/spec-kit/fluxboard/internal/domain"
)

// FluxListQuery captures query parameters of GET /flux.
type FluxListQuery struct {
	Term     string
	Page     int
	PageSize int
}

// FluxRow is one line of the flux table.
type FluxRow struct {
	ID               string         `json:"id"`
	CreatedAt        time.Time      `json:"created_at"`
	CreatedAtLabel   string         `json:"created_at_label"`
	UpdatedAt        *time.Time     `json:"updated_at,omitempty"`
	ClientName       string         `json:"client_name"`
	ClientEmail      *string        `json:"client_email"`
	ClientPhone      string         `json:"client_phone"`
	Address          string         `json:"address"`
	City             string         `json:"city"`
	PostCode         string         `json:"post_code"`
	TypeFlux         string         `json:"type_flux"`
	TypeLabel        string         `json:"type_label"`
	GameModel        *string        `json:"game_model"`
	GameLabel        string         `json:"game_label"`
	State            *string        `json:"state"`
	StateLabel       string         `json:"state_label"`
	Category         board.Category `json:"category"`
	Details          *string        `json:"details"`
	AssigneeID       *string        `json:"assignee_id"`
	AssigneeEmail    *string        `json:"assignee_email"`
	AssigneeLabel    string         `json:"assignee_label"`
	AvailableActions []ActionItem   `json:"available_actions"`
}

// ActionItem is one entry of a row's action menu.
type ActionItem struct {
	Key           string           `json:"key"`
	Kind          board.ActionKind `json:"kind"`
	Label         string           `json:"label"`
	State         string           `json:"state,omitempty"`
	AssigneeID    string           `json:"assignee_id,omitempty"`
	AssigneeEmail string           `json:"assignee_email,omitempty"`
}

// PageMeta describes the page returned by GET /flux.
type PageMeta struct {
	Term      string `json:"q"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	Total     int    `json:"total"`
	PageCount int    `json:"page_count"`
}

// OverviewCard is one counter above the table.
type OverviewCard struct {
	Title   string `json:"title"`
	Count   int    `json:"count"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
}

// UserSummary is an assignable user.
type UserSummary struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	FullName *string     `json:"full_name"`
}

// ChangeStateRequest payload of PATCH /flux/:id/state.
type ChangeStateRequest struct {
	State string `json:"state"`
}

// AssignRequest payload of PATCH /flux/:id/assignee.
type AssignRequest struct {
	UserID string `json:"user_id"`
}

// ConfirmationResponse is returned after a successful mutation.
type ConfirmationResponse struct {
	FluxID  string `json:"flux_id"`
	Message string `json:"message"`
}

// NewFluxRow renders a flux with its badge and menu.
func NewFluxRow(f domain.Flux, category board.Category, actions []board.Action, loc *time.Location) FluxRow {
	items := make([]ActionItem, 0, len(actions))
	for _, a := range actions {
		items = append(items, ActionItem{
			Key:           a.Key(),
			Kind:          a.Kind,
			Label:         a.Label,
			State:         a.State,
			AssigneeID:    a.AssigneeID,
			AssigneeEmail: a.AssigneeEmail,
		})
	}
	return FluxRow{
		ID:               f.ID,
		CreatedAt:        f.CreatedAt,
		CreatedAtLabel:   board.FormatCreatedAt(f.CreatedAt, loc),
		UpdatedAt:        f.UpdatedAt,
		ClientName:       f.ClientName,
		ClientEmail:      f.ClientEmail,
		ClientPhone:      f.ClientPhone,
		Address:          f.Address,
		City:             f.City,
		PostCode:         f.PostCode,
		TypeFlux:         string(f.TypeFlux),
		TypeLabel:        board.TypeLabel(f),
		GameModel:        f.GameModel,
		GameLabel:        board.GameLabel(f),
		State:            f.State,
		StateLabel:       board.StateLabel(f),
		Category:         category,
		Details:          f.Details,
		AssigneeID:       f.AssigneeID,
		AssigneeEmail:    f.AssigneeEmail,
		AssigneeLabel:    board.AssigneeLabel(f),
		AvailableActions: items,
	}
}

// NewOverviewCards renders the overview in display order.
func NewOverviewCards(o board.Overview) []OverviewCard {
	cards := o.Cards()
	out := make([]OverviewCard, 0, len(cards))
	for _, c := range cards {
		out = append(out, OverviewCard{Title: c.Title, Count: c.Count, Total: c.Total, Percent: c.Percent})
	}
	return out
}

// NewUserSummaries renders assignable users.
func NewUserSummaries(users []domain.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummary{ID: u.ID, Email: u.Email, Role: u.Role, FullName: u.FullName})
	}
	return out
}
