package handlers

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/fluxboard/internal/api/dto"
	"github.com/spec-kit/fluxboard/internal/auth"
	"github.com/spec-kit/fluxboard/internal/domain"
	"github.com/spec-kit/fluxboard/internal/export"
	"github.com/spec-kit/fluxboard/internal/service"
	apperrors "github.com/spec-kit/fluxboard/pkg/util/errorutil"
)

// FluxHandler serves the flux table and its mutations.
type FluxHandler struct {
	dashboard Dashboard
	mutations Mutations
	loc       *time.Location
	logger    *zap.Logger
}

// NewFluxHandler constructs handler.
func NewFluxHandler(dashboard Dashboard, mutations Mutations, loc *time.Location, logger *zap.Logger) *FluxHandler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FluxHandler{dashboard: dashboard, mutations: mutations, loc: loc, logger: logger}
}

// List GET /flux.
func (h *FluxHandler) List(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	query, err := parseFluxListQuery(c)
	if err != nil {
		return err
	}

	page, err := h.dashboard.Table(c.UserContext(), session, service.TableQuery{
		Term:     query.Term,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		return err
	}

	rows := make([]dto.FluxRow, 0, len(page.Rows))
	for _, r := range page.Rows {
		rows = append(rows, dto.NewFluxRow(r.Flux, r.Category, r.Actions, h.loc))
	}
	return c.JSON(fiber.Map{
		"data": rows,
		"meta": dto.PageMeta{
			Term:      page.Term,
			Page:      page.Page,
			PageSize:  page.PageSize,
			Total:     page.Total,
			PageCount: page.PageCount,
		},
	})
}

// Overview GET /flux/overview.
func (h *FluxHandler) Overview(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	overview, err := h.dashboard.Overview(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOverviewCards(overview)})
}

// Export GET /flux/export.
func (h *FluxHandler) Export(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	list, err := h.dashboard.Search(c.UserContext(), session, c.Query("q"))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.WriteFluxWorkbook(&buf, list, h.loc); err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Attachment(export.FileName(time.Now().In(h.loc)))
	c.Set(fiber.HeaderContentType, export.ContentType)
	return c.Send(buf.Bytes())
}

// Detail GET /flux/:id.
func (h *FluxHandler) Detail(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	row, err := h.dashboard.Detail(c.UserContext(), session, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewFluxRow(row.Flux, row.Category, row.Actions, h.loc)})
}

// ChangeState PATCH /flux/:id/state.
func (h *FluxHandler) ChangeState(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.ChangeStateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	state := strings.TrimSpace(req.State)
	if state == "" {
		return apperrors.NewValidationError("state required", nil)
	}

	fluxID := c.Params("id")
	if err := h.dashboard.AuthorizeStateChange(c.UserContext(), session, fluxID, state); err != nil {
		return err
	}
	confirmation, err := h.mutations.ChangeState(c.UserContext(), service.ActorFromSession(session), fluxID, state)
	if err != nil {
		return err
	}
	h.logger.Info("flux state changed", zap.String("flux_id", fluxID), zap.String("state", state), zap.String("user_id", session.UserID))
	return c.JSON(fiber.Map{"data": dto.ConfirmationResponse{FluxID: confirmation.FluxID, Message: confirmation.Message}})
}

// Assign PATCH /flux/:id/assignee.
func (h *FluxHandler) Assign(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.UserID) == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}

	fluxID := c.Params("id")
	user, err := h.dashboard.ResolveAssignee(c.UserContext(), session, fluxID, req.UserID)
	if err != nil {
		return err
	}
	confirmation, err := h.mutations.Assign(c.UserContext(), service.ActorFromSession(session), fluxID, user.ID, user.Email)
	if err != nil {
		return err
	}
	h.logger.Info("flux assigned", zap.String("flux_id", fluxID), zap.String("assignee_id", user.ID), zap.String("user_id", session.UserID))
	return c.JSON(fiber.Map{"data": dto.ConfirmationResponse{FluxID: confirmation.FluxID, Message: confirmation.Message}})
}

func requireSession(c *fiber.Ctx) (*domain.Session, error) {
	session, ok := auth.SessionFromContext(c)
	if !ok || !session.Ready() {
		return nil, apperrors.NewUnauthorized("Vous n'êtes pas authentifié. Veuillez vous reconnecter.")
	}
	return session, nil
}

func parseFluxListQuery(c *fiber.Ctx) (dto.FluxListQuery, error) {
	query := dto.FluxListQuery{Term: c.Query("q"), Page: 1}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return query, apperrors.NewValidationError("page must be an integer", map[string]any{"page": raw})
		}
		query.Page = n
	}
	if raw := c.Query("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return query, apperrors.NewValidationError("page_size must be an integer", map[string]any{"page_size": raw})
		}
		query.PageSize = n
	}
	return query, nil
}
