package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/fluxboard/internal/api/http/handlers"
	"github.com/spec-kit/fluxboard/internal/auth"
	"github.com/spec-kit/fluxboard/internal/domain"
	"github.com/spec-kit/fluxboard/internal/events"
	"github.com/spec-kit/fluxboard/internal/export"
	"github.com/spec-kit/fluxboard/internal/observability"
	"github.com/spec-kit/fluxboard/internal/repository"
	"github.com/spec-kit/fluxboard/internal/service"
)

type memFluxRepo struct {
	mu        sync.Mutex
	flux      []domain.Flux
	updateErr error
}

func (r *memFluxRepo) List(context.Context, repository.FluxQuery) ([]domain.Flux, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Flux(nil), r.flux...), nil
}

func (r *memFluxRepo) GetByID(_ context.Context, id string) (*domain.Flux, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.flux {
		if f.ID == id {
			cp := f
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memFluxRepo) UpdateState(_ context.Context, id, state string) error {
	return r.update(id, func(f *domain.Flux) { f.State = &state })
}

func (r *memFluxRepo) UpdateAssignee(_ context.Context, id, assigneeID, assigneeEmail string) error {
	return r.update(id, func(f *domain.Flux) {
		f.AssigneeID = &assigneeID
		f.AssigneeEmail = &assigneeEmail
	})
}

func (r *memFluxRepo) update(id string, apply func(*domain.Flux)) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.flux {
		if r.flux[i].ID == id {
			apply(&r.flux[i])
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memUserRepo struct {
	users   []domain.User
	listErr error
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.User
	for _, u := range r.users {
		if filter.ExcludeID != nil && u.ID == *filter.ExcludeID {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

type okPinger struct{ err error }

func (p okPinger) Ping(context.Context) error { return p.err }

type testServer struct {
	app     *fiber.App
	tokens  *auth.TokenManager
	flux    *memFluxRepo
	users   *memUserRepo
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	strPtr := func(s string) *string { return &s }
	created := time.Date(2025, 6, 2, 14, 5, 0, 0, time.UTC)

	srv := &testServer{
		tokens:  auth.NewTokenManager("test-secret", 5),
		metrics: observability.NewMetrics(),
		users: &memUserRepo{users: []domain.User{
			{ID: "u-vendeur", Email: "vendeur@shop.fr", Role: domain.RoleVendeur},
			{ID: "u-tech", Email: "tech@shop.fr", Role: domain.RoleTechnicien},
			{ID: "u-stock", Email: "stock@shop.fr", Role: domain.RoleGestionnaireStock},
		}},
		flux: &memFluxRepo{flux: []domain.Flux{
			{ID: "f1", CreatedAt: created, ClientName: "Alice", City: "Lyon", TypeFlux: domain.FluxTypeCommande, State: strPtr(domain.StateDone)},
			{ID: "f2", CreatedAt: created, ClientName: "Bruno", City: "Annecy", TypeFlux: domain.FluxTypeInstallation, State: strPtr(domain.StateCallback)},
			{ID: "f3", CreatedAt: created, ClientName: "Chloé", City: "Grenoble", TypeFlux: domain.FluxTypeLocation},
		}},
	}

	logger := zap.NewNop()
	dashboard := service.NewDashboardService(service.DashboardDependencies{
		FluxRepo:     srv.flux,
		UserRepo:     srv.users,
		FetchTimeout: time.Second,
		PageSize:     2,
		MaxPageSize:  50,
		Logger:       logger,
	})
	gateway := service.NewMutationGateway(service.MutationDependencies{
		FluxRepo:   srv.flux,
		Dispatcher: events.NewInMemoryDispatcher(),
		Metrics:    srv.metrics,
		Logger:     logger,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, srv.metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("fluxboard", "test", map[string]handlers.Pinger{"postgres": okPinger{}}, srv.metrics),
		Flux:           handlers.NewFluxHandler(dashboard, gateway, time.UTC, logger),
		Users:          handlers.NewUsersHandler(dashboard),
		AuthMiddleware: auth.NewAuthMiddleware(srv.tokens, srv.users),
	})
	srv.app = app
	return srv
}

func (s *testServer) do(t *testing.T, method, path, userID string, body any) (int, map[string]any) {
	t.Helper()
	status, raw := s.doRaw(t, method, path, userID, body)
	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return status, decoded
}

func (s *testServer) doRaw(t *testing.T, method, path, userID string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		user, err := s.users.GetByID(context.Background(), userID)
		if err != nil {
			user = &domain.User{ID: userID, Email: userID + "@shop.fr", Role: domain.RoleSuperAdmin}
		}
		token, _, err := s.tokens.GenerateToken(*user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestRoutes_RequireSession(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, "GET", "/flux", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, body = srv.do(t, "GET", "/flux", "u-ghost", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
}

func TestRoutes_ListPages(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, "GET", "/flux?page=2", "u-vendeur", nil)
	require.Equal(t, fiber.StatusOK, status)
	meta := body["meta"].(map[string]any)
	assert.EqualValues(t, 2, meta["page"])
	assert.EqualValues(t, 2, meta["page_size"])
	assert.EqualValues(t, 3, meta["total"])
	assert.EqualValues(t, 2, meta["page_count"])

	rows := body["data"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "f3", row["id"])
	assert.Equal(t, "pending", row["category"])
	assert.Equal(t, "Non traité", row["state_label"])
	assert.Equal(t, "Non assigné", row["assignee_label"])
	assert.Equal(t, "02/06/2025 14:05", row["created_at_label"])

	status, body = srv.do(t, "GET", "/flux?q=ANNECY", "u-vendeur", nil)
	require.Equal(t, fiber.StatusOK, status)
	rows = body["data"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "f2", rows[0].(map[string]any)["id"])

	status, body = srv.do(t, "GET", "/flux?page=abc", "u-vendeur", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestRoutes_ChangeStateForbiddenForRole(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, "PATCH", "/flux/f1/state", "u-tech", map[string]string{"state": domain.StateTransmitted})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	f, err := srv.flux.GetByID(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateDone, f.StateValue())

	status, body = srv.do(t, "PATCH", "/flux/f2/state", "u-tech", map[string]string{"state": domain.StateTransmitted})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, `État changé en "Traitée et transmise au vendeur" avec succès`, body["data"].(map[string]any)["message"])

	snap := srv.metrics.Snapshot()
	assert.EqualValues(t, 1, snap.Mutations["state|ok"])
}

func TestRoutes_ChangeStateWithoutUsersTable(t *testing.T) {
	srv := newTestServer(t)
	srv.users.listErr = &pgconn.PgError{Message: "permission denied for table users"}

	status, _ := srv.do(t, "PATCH", "/flux/f3/state", "u-vendeur", map[string]string{"state": " Planifié "})
	require.Equal(t, fiber.StatusOK, status)

	f, err := srv.flux.GetByID(context.Background(), "f3")
	require.NoError(t, err)
	assert.Equal(t, domain.StateScheduled, f.StateValue())

	status, _ = srv.do(t, "GET", "/flux/f3", "u-vendeur", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, body := srv.do(t, "PATCH", "/flux/f3/state", "u-vendeur", map[string]string{"state": "  "})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestRoutes_AssignResolvesEmail(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, "PATCH", "/flux/f3/assignee", "u-vendeur", map[string]string{"user_id": "u-stock"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Flux assigné à stock@shop.fr avec succès", body["data"].(map[string]any)["message"])

	f, err := srv.flux.GetByID(context.Background(), "f3")
	require.NoError(t, err)
	require.NotNil(t, f.AssigneeEmail)
	assert.Equal(t, "stock@shop.fr", *f.AssigneeEmail)

	status, body = srv.do(t, "PATCH", "/flux/f3/assignee", "u-vendeur", map[string]string{"user_id": "u-stock"})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))

	status, _ = srv.do(t, "PATCH", "/flux/f3/assignee", "u-vendeur", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestRoutes_StoreFailureSurfacesMessage(t *testing.T) {
	srv := newTestServer(t)
	srv.flux.updateErr = &pgconn.PgError{Message: "permission denied for table flux"}

	status, body := srv.do(t, "PATCH", "/flux/f1/assignee", "u-vendeur", map[string]string{"user_id": "u-tech"})
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, "STORE_ERROR", errorCode(body))
	assert.Equal(t, "Erreur lors de l'assignation: permission denied for table flux", body["error"].(map[string]any)["message"])

	f, err := srv.flux.GetByID(context.Background(), "f1")
	require.NoError(t, err)
	assert.Nil(t, f.AssigneeID)
}

func TestRoutes_DetailAndOverview(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, "GET", "/flux/f2", "u-tech", nil)
	require.Equal(t, fiber.StatusOK, status)
	actions := body["data"].(map[string]any)["available_actions"].([]any)
	var kinds []string
	for _, a := range actions {
		kinds = append(kinds, a.(map[string]any)["kind"].(string))
	}
	assert.Contains(t, kinds, "transmit")
	assert.NotContains(t, kinds, "set_state")

	status, body = srv.do(t, "GET", "/flux/missing", "u-tech", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body = srv.do(t, "GET", "/flux/overview", "u-vendeur", nil)
	require.Equal(t, fiber.StatusOK, status)
	cards := body["data"].([]any)
	require.Len(t, cards, 4)
	assert.Equal(t, "Commandes", cards[0].(map[string]any)["title"])
	assert.EqualValues(t, 100, cards[0].(map[string]any)["percent"])
}

func TestRoutes_AssignableExcludesCaller(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, "GET", "/users/assignable", "u-tech", nil)
	require.Equal(t, fiber.StatusOK, status)
	users := body["data"].([]any)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.NotEqual(t, "u-tech", u.(map[string]any)["id"])
	}
}

func TestRoutes_Export(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/flux/export?q=lyon", nil)
	token, _, err := srv.tokens.GenerateToken(domain.User{ID: "u-vendeur", Email: "vendeur@shop.fr", Role: domain.RoleVendeur})
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, export.ContentType, resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "attachment"))

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[1][1])
}

func TestRoutes_Health(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, "GET", "/health/live", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = srv.do(t, "GET", "/health/ready", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["dependencies"].(map[string]any)["postgres"])

	status, body = srv.do(t, "GET", "/health/metrics", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	requests := body["data"].(map[string]any)["requests"].(map[string]any)
	assert.NotEmpty(t, requests)
}

func TestHealth_NotReady(t *testing.T) {
	app := fiber.New()
	h := handlers.NewHealthHandler("fluxboard", "test", map[string]handlers.Pinger{"redis": okPinger{err: errors.New("connection refused")}}, nil)
	app.Get("/ready", h.Ready)

	resp, err := app.Test(httptest.NewRequest("GET", "/ready", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
