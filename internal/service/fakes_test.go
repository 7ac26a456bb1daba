package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/fluxboard/internal/domain"
	"github.com/spec-kit/fluxboard/internal/events"
	"github.com/spec-kit/fluxboard/internal/repository"
)

type fakeFluxRepo struct {
	mu        sync.Mutex
	flux      []domain.Flux
	listErr   error
	updateErr error
	block     bool
	updates   []string
}

func (f *fakeFluxRepo) List(ctx context.Context, _ repository.FluxQuery) ([]domain.Flux, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Flux(nil), f.flux...), nil
}

func (f *fakeFluxRepo) GetByID(_ context.Context, id string) (*domain.Flux, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.flux {
		if f.flux[i].ID == id {
			cp := f.flux[i]
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeFluxRepo) UpdateState(_ context.Context, id, state string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.flux {
		if f.flux[i].ID == id {
			f.flux[i].State = &state
			f.updates = append(f.updates, "state:"+id+":"+state)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeFluxRepo) UpdateAssignee(_ context.Context, id, assigneeID, assigneeEmail string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.flux {
		if f.flux[i].ID == id {
			f.flux[i].AssigneeID = &assigneeID
			f.flux[i].AssigneeEmail = &assigneeEmail
			f.updates = append(f.updates, "assign:"+id+":"+assigneeID+":"+assigneeEmail)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeUserRepo struct {
	users   []domain.User
	listErr error
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			cp := f.users[i]
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.User
	for _, u := range f.users {
		if filter.ExcludeID != nil && u.ID == *filter.ExcludeID {
			continue
		}
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

type recordingDispatcher struct {
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func strPtr(s string) *string { return &s }

func sampleUsers() []domain.User {
	return []domain.User{
		{ID: "u-vendeur", Email: "vendeur@shop.fr", Role: domain.RoleVendeur},
		{ID: "u-tech", Email: "tech@shop.fr", Role: domain.RoleTechnicien},
		{ID: "u-stock", Email: "stock@shop.fr", Role: domain.RoleGestionnaireStock},
		{ID: "u-admin", Email: "admin@shop.fr", Role: domain.RoleSuperAdmin},
	}
}

func sampleFlux() []domain.Flux {
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	mk := func(id string, typ domain.FluxType, city string, state *string) domain.Flux {
		return domain.Flux{
			ID:          id,
			CreatedAt:   base,
			ClientName:  "Client " + id,
			ClientPhone: "0600000000",
			Address:     "3 place Bellecour",
			City:        city,
			PostCode:    "69002",
			TypeFlux:    typ,
			State:       state,
		}
	}
	return []domain.Flux{
		mk("f1", domain.FluxTypeCommande, "Lyon", strPtr(domain.StateDone)),
		mk("f2", domain.FluxTypeInstallation, "Lyon", strPtr(domain.StateCallback)),
		mk("f3", domain.FluxTypeLocation, "Grenoble", nil),
	}
}

func session(userID string, role domain.Role) *domain.Session {
	return &domain.Session{UserID: userID, Email: userID + "@shop.fr", Role: role, Authenticated: true}
}
