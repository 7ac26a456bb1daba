package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/fluxboard/internal/board"
	"github.com/spec-kit/fluxboard/internal/domain"
	"github.com/spec-kit/fluxboard/internal/events"
	"github.com/spec-kit/fluxboard/internal/repository"
	apperrors "github.com/spec-kit/fluxboard/pkg/util/errorutil"
)

const (
	msgNotAuthenticated = "Vous n'êtes pas authentifié. Veuillez vous reconnecter."
	msgFetchTimeout     = "Le chargement des flux a pris trop de temps. Veuillez rafraîchir."
	msgFetchFailed      = "Erreur lors du chargement des flux"
)

// DashboardService fetches flux and users from the store and projects them
// for the caller's role. Every call reads the store again.
type DashboardService struct {
	flux         repository.FluxRepository
	users        repository.UserRepository
	fetchTimeout time.Duration
	pageSize     int
	maxPageSize  int
	logger       *zap.Logger
}

// DashboardDependencies bundles collaborators.
type DashboardDependencies struct {
	FluxRepo     repository.FluxRepository
	UserRepo     repository.UserRepository
	FetchTimeout time.Duration
	PageSize     int
	MaxPageSize  int
	Logger       *zap.Logger
}

// Snapshot is one fetch of the store.
type Snapshot struct {
	Flux       []domain.Flux
	Assignable []domain.User
}

// TableQuery selects a page of the flux table.
type TableQuery struct {
	Term     string
	Page     int
	PageSize int
}

// TableRow is one flux with its badge and menu.
type TableRow struct {
	Flux     domain.Flux
	Category board.Category
	Actions  []board.Action
}

// TablePage is the visible part of the flux table.
type TablePage struct {
	Rows      []TableRow
	Term      string
	Page      int
	PageSize  int
	Total     int
	PageCount int
}

// NewDashboardService constructs the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	s := &DashboardService{
		flux:         deps.FluxRepo,
		users:        deps.UserRepo,
		fetchTimeout: deps.FetchTimeout,
		pageSize:     deps.PageSize,
		maxPageSize:  deps.MaxPageSize,
		logger:       deps.Logger,
	}
	if s.fetchTimeout <= 0 {
		s.fetchTimeout = 15 * time.Second
	}
	if s.pageSize <= 0 {
		s.pageSize = board.DefaultPageSize
	}
	if s.maxPageSize < s.pageSize {
		s.maxPageSize = s.pageSize
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Load fetches every flux, newest first, and the users the caller may assign
// to. A failing users query leaves the assignable list empty.
func (s *DashboardService) Load(ctx context.Context, session *domain.Session) (*Snapshot, error) {
	if !session.Ready() {
		return nil, apperrors.NewUnauthorized(msgNotAuthenticated)
	}

	loadCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	snap := &Snapshot{}
	g, gctx := errgroup.WithContext(loadCtx)
	g.Go(func() error {
		list, err := s.flux.List(gctx, repository.FluxQuery{OrderBy: "created_at"})
		if err != nil {
			return err
		}
		snap.Flux = list
		return nil
	})
	g.Go(func() error {
		exclude := session.UserID
		users, err := s.users.List(gctx, repository.UserFilter{ExcludeID: &exclude})
		if err != nil {
			s.logger.Warn("assignable users unavailable", zap.Error(err))
			return nil
		}
		snap.Assignable = users
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-loadCtx.Done():
		err = loadCtx.Err()
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(loadCtx.Err(), context.DeadlineExceeded) {
			s.logger.Warn("flux fetch timed out", zap.Duration("timeout", s.fetchTimeout))
			return nil, apperrors.NewTimeout(msgFetchTimeout, err)
		}
		s.logger.Error("flux fetch failed", zap.Error(err))
		return nil, apperrors.NewStoreError(msgFetchFailed+": "+repository.StoreMessage(err), err)
	}

	s.logger.Debug("flux loaded", zap.Int("flux", len(snap.Flux)), zap.Int("assignable", len(snap.Assignable)))
	return snap, nil
}

// Table loads the store and returns the requested page for the caller.
func (s *DashboardService) Table(ctx context.Context, session *domain.Session, query TableQuery) (*TablePage, error) {
	snap, err := s.Load(ctx, session)
	if err != nil {
		return nil, err
	}

	view := board.NewView(snap.Flux, s.clampPageSize(query.PageSize))
	view.SetTerm(query.Term)
	view.GoTo(query.Page)

	page := &TablePage{
		Term:      view.Term(),
		Page:      view.CurrentPage(),
		PageSize:  view.PageSize(),
		Total:     view.Total(),
		PageCount: view.PageCount(),
	}
	for _, f := range view.Rows() {
		page.Rows = append(page.Rows, s.row(f, session, snap.Assignable))
	}
	return page, nil
}

// Overview loads the store and summarizes it.
func (s *DashboardService) Overview(ctx context.Context, session *domain.Session) (board.Overview, error) {
	snap, err := s.Load(ctx, session)
	if err != nil {
		return board.Overview{}, err
	}
	return board.Summarize(snap.Flux), nil
}

// Search loads the store and returns every flux matching term.
func (s *DashboardService) Search(ctx context.Context, session *domain.Session, term string) ([]domain.Flux, error) {
	snap, err := s.Load(ctx, session)
	if err != nil {
		return nil, err
	}
	return board.Search(snap.Flux, term), nil
}

// Detail returns one flux with the caller's menu.
func (s *DashboardService) Detail(ctx context.Context, session *domain.Session, fluxID string) (*TableRow, error) {
	if !session.Ready() {
		return nil, apperrors.NewUnauthorized(msgNotAuthenticated)
	}
	f, err := s.flux.GetByID(ctx, fluxID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("flux", map[string]any{"flux_id": fluxID})
		}
		return nil, apperrors.NewStoreError(msgFetchFailed+": "+repository.StoreMessage(err), err)
	}
	row := s.row(*f, session, s.assignableOrEmpty(ctx, session))
	return &row, nil
}

// Assignable returns every user except the caller.
func (s *DashboardService) Assignable(ctx context.Context, session *domain.Session) ([]domain.User, error) {
	if !session.Ready() {
		return nil, apperrors.NewUnauthorized(msgNotAuthenticated)
	}
	exclude := session.UserID
	users, err := s.users.List(ctx, repository.UserFilter{ExcludeID: &exclude})
	if err != nil {
		return nil, apperrors.NewStoreError("Erreur lors du chargement des utilisateurs: "+repository.StoreMessage(err), err)
	}
	return users, nil
}

// assignableOrEmpty tolerates a failing users query the way Load does: the
// state menu never depends on users.
func (s *DashboardService) assignableOrEmpty(ctx context.Context, session *domain.Session) []domain.User {
	users, err := s.Assignable(ctx, session)
	if err != nil {
		s.logger.Warn("assignable users unavailable", zap.Error(err))
		return nil
	}
	return users
}

// AuthorizeStateChange fails unless state is in the caller's menu for the flux.
func (s *DashboardService) AuthorizeStateChange(ctx context.Context, session *domain.Session, fluxID, state string) error {
	row, err := s.Detail(ctx, session, fluxID)
	if err != nil {
		return err
	}
	if !board.PermitsState(row.Actions, state) {
		return apperrors.NewForbidden("state change not allowed for role " + string(session.Role))
	}
	return nil
}

// ResolveAssignee returns the user the caller may assign the flux to. The
// email comes from the users table so id and email always match.
func (s *DashboardService) ResolveAssignee(ctx context.Context, session *domain.Session, fluxID, userID string) (*domain.User, error) {
	row, err := s.Detail(ctx, session, fluxID)
	if err != nil {
		return nil, err
	}
	if row.Flux.IsAssignedTo(userID) {
		return nil, apperrors.NewConflict("flux already assigned to this user", map[string]any{"user_id": userID})
	}
	for _, a := range row.Actions {
		if a.Kind == board.ActionAssign && a.AssigneeID == userID {
			return &domain.User{ID: a.AssigneeID, Email: a.AssigneeEmail}, nil
		}
	}
	// Assignment needs the users table; report its failure rather than a miss.
	if _, err := s.Assignable(ctx, session); err != nil {
		return nil, err
	}
	return nil, apperrors.NewNotFound("assignable user", map[string]any{"user_id": userID})
}

func (s *DashboardService) row(f domain.Flux, session *domain.Session, assignable []domain.User) TableRow {
	return TableRow{
		Flux:     f,
		Category: board.Classify(f),
		Actions:  board.AvailableActions(f, session.Role, assignable),
	}
}

func (s *DashboardService) clampPageSize(n int) int {
	switch {
	case n <= 0:
		return s.pageSize
	case n > s.maxPageSize:
		return s.maxPageSize
	}
	return n
}

// ActorFromSession builds event metadata for the caller.
func ActorFromSession(session *domain.Session) events.Actor {
	if session == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: session.UserID, Email: session.Email, Role: session.Role}
}
