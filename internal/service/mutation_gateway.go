package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/fluxboard/internal/events"
	"github.com/spec-kit/fluxboard/internal/observability"
	"github.com/spec-kit/fluxboard/internal/repository"
	apperrors "github.com/spec-kit/fluxboard/pkg/util/errorutil"
)

// MutationGateway forwards flux updates to the store. It never retries and
// never edits a local copy; callers re-fetch after a confirmation.
type MutationGateway struct {
	flux       repository.FluxRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// MutationDependencies bundles collaborators for the gateway.
type MutationDependencies struct {
	FluxRepo   repository.FluxRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// Confirmation is the success signal of a mutation.
type Confirmation struct {
	FluxID  string
	Message string
}

// NewMutationGateway creates the gateway.
func NewMutationGateway(deps MutationDependencies) *MutationGateway {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MutationGateway{
		flux:       deps.FluxRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// ChangeState writes newState on the flux as given.
func (g *MutationGateway) ChangeState(ctx context.Context, actor events.Actor, fluxID, newState string) (*Confirmation, error) {
	if fluxID == "" || strings.TrimSpace(newState) == "" {
		return nil, apperrors.NewValidationError("flux id and state required", nil)
	}

	if err := g.flux.UpdateState(ctx, fluxID, newState); err != nil {
		g.metrics.RecordMutation("state", "error")
		g.logger.Warn("flux state change failed", zap.String("flux_id", fluxID), zap.Error(err))
		return nil, mutationError(err, fluxID, "Erreur lors du changement d'état")
	}
	g.metrics.RecordMutation("state", "ok")

	g.publish(ctx, events.EventFluxStateChanged, fluxID, actor, events.FluxStateChangedPayload{NewState: newState})
	return &Confirmation{
		FluxID:  fluxID,
		Message: fmt.Sprintf("État changé en %q avec succès", newState),
	}, nil
}

// Assign sets the assignee id and email together in one update.
func (g *MutationGateway) Assign(ctx context.Context, actor events.Actor, fluxID, userID, userEmail string) (*Confirmation, error) {
	if fluxID == "" || userID == "" || strings.TrimSpace(userEmail) == "" {
		return nil, apperrors.NewValidationError("flux id, user id and user email required", nil)
	}

	if err := g.flux.UpdateAssignee(ctx, fluxID, userID, userEmail); err != nil {
		g.metrics.RecordMutation("assign", "error")
		g.logger.Warn("flux assignment failed", zap.String("flux_id", fluxID), zap.String("user_id", userID), zap.Error(err))
		return nil, mutationError(err, fluxID, "Erreur lors de l'assignation")
	}
	g.metrics.RecordMutation("assign", "ok")

	g.publish(ctx, events.EventFluxAssigned, fluxID, actor, events.FluxAssignedPayload{
		AssigneeID:    userID,
		AssigneeEmail: userEmail,
	})
	return &Confirmation{
		FluxID:  fluxID,
		Message: fmt.Sprintf("Flux assigné à %s avec succès", userEmail),
	}, nil
}

func mutationError(err error, fluxID, prefix string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("flux", map[string]any{"flux_id": fluxID})
	}
	return apperrors.NewStoreError(prefix+": "+repository.StoreMessage(err), err)
}

func (g *MutationGateway) publish(ctx context.Context, eventType events.EventType, fluxID string, actor events.Actor, payload any) {
	if g.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		FluxID:    fluxID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := g.dispatcher.Publish(ctx, event); err != nil {
		g.logger.Warn("event handlers failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
