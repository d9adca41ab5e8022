package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/workorder-service/internal/api/http/handlers"
	"github.com/spec-kit/workorder-service/internal/auth"
	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/observability"
	"github.com/spec-kit/workorder-service/internal/repository"
	"github.com/spec-kit/workorder-service/internal/repository/memory"
	"github.com/spec-kit/workorder-service/internal/service"
)

type testServer struct {
	app    *fiber.App
	tokens *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Seed(context.Background(), repository.Fixtures{
		Users: []repository.UserFixture{
			{ID: "mgr", Username: "mgr", IsManager: true},
			{ID: "prod-a", Username: "prod_a", IsProduction: true},
			{ID: "prod-b", Username: "prod_b", IsProduction: true},
			{ID: "elec", Username: "elec", FirstName: "Uma", LastName: "Singh", Department: "Electrical", IsUtilities: true},
		},
		Equipment: []domain.Equipment{{ID: "eq-1", Machine: "Press 4"}},
		WorkTypes: []domain.WorkType{{ID: "wt-1", Name: "Breakdown"}},
	}))

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	tokens := auth.NewTokenManager("test-secret", 5)
	workOrders := service.NewWorkOrderService(service.WorkOrderDependencies{
		Store:   store,
		Metrics: metrics,
		Logger:  logger,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("workorder-service", "test", map[string]handlers.Pinger{"store": store}),
		WorkOrders:     handlers.NewWorkOrdersHandler(workOrders),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Users()),
		Metrics:        metrics,
	})
	return &testServer{app: app, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, user string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		token, _, err := s.tokens.GenerateToken(user, user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestWorkOrderLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/v1/workorders", "prod-a", map[string]any{
		"problem":      "conveyor motor overheating",
		"department":   "Electrical",
		"equipment":    "eq-1",
		"type_of_work": "wt-1",
	})
	require.Equal(t, http.StatusCreated, status, body)
	data := body["data"].(map[string]any)
	id := data["id"].(string)
	assert.Equal(t, "Pending", data["work_status"])
	assert.Equal(t, "none", data["pr_number"])

	status, body = s.do(t, http.MethodPost, "/api/v1/workorders/"+id+"/accept", "elec", map[string]any{
		"target_date": "2024-07-01",
	})
	require.Equal(t, http.StatusOK, status, body)
	data = body["data"].(map[string]any)
	assert.Equal(t, "In_Process", data["work_status"])
	assert.Equal(t, "Uma Singh", data["assigned_to"])
	assert.Equal(t, "2024-07-01", data["target_date"])

	status, body = s.do(t, http.MethodPost, "/api/v1/workorders/"+id+"/accept", "elec", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(body))

	status, _ = s.do(t, http.MethodPost, "/api/v1/workorders/"+id+"/complete", "elec", nil)
	require.Equal(t, http.StatusOK, status)

	status, body = s.do(t, http.MethodPost, "/api/v1/workorders/"+id+"/close", "prod-a", map[string]any{
		"closed":          "Yes",
		"closing_remarks": "running normally",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Yes", body["data"].(map[string]any)["closed"])

	status, body = s.do(t, http.MethodGet, "/api/v1/workorders/"+id+"/history", "prod-a", nil)
	require.Equal(t, http.StatusOK, status)
	entries := body["data"].([]any)
	require.Len(t, entries, 4)
	actions := make([]string, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.(map[string]any)["action"].(string))
	}
	assert.Equal(t, []string{"closed", "completed", "accepted", "created"}, actions)
}

func TestErrorEnvelopes(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/api/v1/workorders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, body = s.do(t, http.MethodPost, "/api/v1/workorders", "prod-a", map[string]any{"department": "Plumbing"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = s.do(t, http.MethodPost, "/api/v1/workorders", "prod-a", map[string]any{
		"problem": "x", "department": "Electrical", "equipment": "missing", "type_of_work": "wt-1",
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body = s.do(t, http.MethodGet, "/api/v1/workorders?work_status=Done", "mgr", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = s.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestCheckAccessEndpoint(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, http.MethodPost, "/api/v1/workorders", "prod-a", map[string]any{
		"problem": "x", "department": "Electrical", "equipment": "eq-1", "type_of_work": "wt-1",
	})
	require.Equal(t, http.StatusCreated, status)
	id := body["data"].(map[string]any)["id"].(string)

	status, body = s.do(t, http.MethodGet, "/api/v1/workorders/"+id+"/check-access", "prod-a", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body = s.do(t, http.MethodGet, "/api/v1/workorders/"+id+"/check-access", "prod-b", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "unauthorized", body["status"])

	status, _ = s.do(t, http.MethodPost, "/api/v1/workorders/"+id+"/accept", "prod-b", nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	s.do(t, http.MethodGet, "/health/live", "", nil)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "http_requests_total")
}

func (s *testServer) completedOrder(t *testing.T) string {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/v1/workorders", "prod-a", map[string]any{
		"problem": "x", "department": "Electrical", "equipment": "eq-1", "type_of_work": "wt-1",
	})
	require.Equal(t, http.StatusCreated, status, body)
	id := body["data"].(map[string]any)["id"].(string)
	status, _ = s.do(t, http.MethodPost, "/api/v1/workorders/"+id+"/accept", "elec", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodPost, "/api/v1/workorders/"+id+"/complete", "elec", nil)
	require.Equal(t, http.StatusOK, status)
	return id
}

func TestCloseAcceptsBooleanLikeValues(t *testing.T) {
	cases := []struct {
		name   string
		closed any
		want   string
	}{
		{"json true", true, "Yes"},
		{"string yes", "yes", "Yes"},
		{"string true", "true", "Yes"},
		{"number one", 1, "Yes"},
		{"json false", false, "No"},
		{"other string", "later", "No"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			id := s.completedOrder(t)
			status, body := s.do(t, http.MethodPost, "/api/v1/workorders/"+id+"/close", "prod-a", map[string]any{
				"closed": tc.closed,
			})
			require.Equal(t, http.StatusOK, status, body)
			assert.Equal(t, tc.want, body["data"].(map[string]any)["closed"])
		})
	}
}

func TestCloseRequiresValue(t *testing.T) {
	s := newTestServer(t)
	id := s.completedOrder(t)
	status, body := s.do(t, http.MethodPost, "/api/v1/workorders/"+id+"/close", "prod-a", map[string]any{
		"closing_remarks": "done",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestPatchClosedWithBoolean(t *testing.T) {
	s := newTestServer(t)
	id := s.completedOrder(t)
	status, body := s.do(t, http.MethodPatch, "/api/v1/workorders/"+id, "prod-a", map[string]any{
		"closed": true,
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Yes", body["data"].(map[string]any)["closed"])

	status, body = s.do(t, http.MethodPatch, "/api/v1/workorders/"+id, "prod-a", map[string]any{
		"closed": "no",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "No", body["data"].(map[string]any)["closed"])
}
