package handlers

import (
	"context"

	"github.com/spec-kit/fluxboard/internal/board"
	"github.com/spec-kit/fluxboard/internal/domain"
	"github.com/spec-kit/fluxboard/internal/events"
	"github.com/spec-kit/fluxboard/internal/service"
)

// Dashboard is the read side used by the handlers.
type Dashboard interface {
	Table(ctx context.Context, session *domain.Session, query service.TableQuery) (*service.TablePage, error)
	Overview(ctx context.Context, session *domain.Session) (board.Overview, error)
	Search(ctx context.Context, session *domain.Session, term string) ([]domain.Flux, error)
	Detail(ctx context.Context, session *domain.Session, fluxID string) (*service.TableRow, error)
	Assignable(ctx context.Context, session *domain.Session) ([]domain.User, error)
	AuthorizeStateChange(ctx context.Context, session *domain.Session, fluxID, state string) error
	ResolveAssignee(ctx context.Context, session *domain.Session, fluxID, userID string) (*domain.User, error)
}

// Mutations is the write side used by the handlers.
type Mutations interface {
	ChangeState(ctx context.Context, actor events.Actor, fluxID, newState string) (*service.Confirmation, error)
	Assign(ctx context.Context, actor events.Actor, fluxID, userID, userEmail string) (*service.Confirmation, error)
}

var (
	_ Dashboard = (*service.DashboardService)(nil)
	_ Mutations = (*service.MutationGateway)(nil)
)
