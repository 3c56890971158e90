package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/gear-reservation/internal/booking"
	"github.com/iliyamo/gear-reservation/internal/config"
	"github.com/iliyamo/gear-reservation/internal/handler"
	"github.com/iliyamo/gear-reservation/internal/middleware"
	"github.com/iliyamo/gear-reservation/internal/repository"
	"github.com/iliyamo/gear-reservation/internal/utils"
)

const (
	testSecret   = "router-test-secret"
	testPassword = "letmein"
)

func newTestServer(t *testing.T) (*echo.Echo, *repository.MemoryStore) {
	t.Helper()
	hash, err := utils.HashPassword(testPassword, 4)
	require.NoError(t, err)
	cfg := config.Config{JWTSecret: testSecret, AdminPasswordHash: hash, AccessTTLMin: 5}

	store := repository.NewMemoryStore()
	engine := booking.NewEngine(store, zap.NewNop())
	noLimit := middleware.NewTokenBucket(config.RateLimitConfig{}, nil, nil)

	e := echo.New()
	RegisterRoutes(e, nil)
	RegisterPublic(e, handler.NewReservationHandler(engine), noLimit)
	RegisterAdmin(e, handler.NewAdminHandler(cfg, engine, zap.NewNop()), testSecret, noLimit)
	return e, store
}

func call(e *echo.Echo, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func booking1(name string) echo.Map {
	return echo.Map{
		"requester_name": name,
		"department":     "Marketing",
		"resources":      []string{"CANON相機"},
		"date":           "2024-06-01",
		"slots":          []string{"09:00-10:00", "10:00-11:00"},
		"purpose":        "shoot",
	}
}

func login(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := call(e, http.MethodPost, "/v1/admin/login", echo.Map{"password": testPassword}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode(t, rec)["token"].(string)
}

func TestHealthAndMetrics(t *testing.T) {
	e, _ := newTestServer(t)
	rec := call(e, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = call(e, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCatalog(t *testing.T) {
	e, _ := newTestServer(t)
	rec := call(e, http.MethodGet, "/v1/catalog", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["resources"], 4)
	assert.Len(t, body["slots"], 9)
}

func TestBookingFlow(t *testing.T) {
	e, store := newTestServer(t)

	rec := call(e, http.MethodPost, "/v1/reservations", booking1("Alice"), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	orderID := created["order_id"].(string)
	assert.Len(t, orderID, 8)
	assert.EqualValues(t, 2, created["rows"])
	assert.Equal(t, "PENDING", created["status"])

	rec = call(e, http.MethodPost, "/v1/reservations", booking1("Bob"), "")
	require.Equal(t, http.StatusConflict, rec.Code)
	conflicts := decode(t, rec)["conflicts"].([]interface{})
	assert.Len(t, conflicts, 2)

	rec = call(e, http.MethodGet, "/v1/availability?resource="+url.QueryEscape("CANON相機")+"&date=2024-06-01", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	board := decode(t, rec)["slots"].([]interface{})
	require.Len(t, board, 9)
	first := board[0].(map[string]interface{})
	assert.Equal(t, false, first["free"])
	assert.Equal(t, orderID, first["occupant"].(map[string]interface{})["order_id"])

	rec = call(e, http.MethodGet, "/v1/reservations/search?q=alice", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode(t, rec)["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "2024-06-01", items[0].(map[string]interface{})["date"])

	rec = call(e, http.MethodGet, "/v1/reservations/search?q=", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["items"])

	// Returning a pending order finds nothing to return.
	rec = call(e, http.MethodPost, "/v1/reservations/"+orderID+"/return", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(e, http.MethodPost, "/v1/reservations/"+orderID+"/cancel", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = call(e, http.MethodPost, "/v1/reservations/"+orderID+"/cancel", nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(e, http.MethodPost, "/v1/reservations", booking1("Bob"), "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	recs, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 4)
}

func TestCreateValidation(t *testing.T) {
	e, _ := newTestServer(t)

	body := booking1("Alice")
	body["date"] = "01/06/2024"
	rec := call(e, http.MethodPost, "/v1/reservations", body, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = booking1("Alice")
	body["resources"] = []string{"drone"}
	rec = call(e, http.MethodPost, "/v1/reservations", body, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "resources")

	rec = call(e, http.MethodGet, "/v1/availability?resource=drone&date=2024-06-01", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminFlow(t *testing.T) {
	e, _ := newTestServer(t)

	rec := call(e, http.MethodPost, "/v1/admin/login", echo.Map{"password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = call(e, http.MethodGet, "/v1/admin/pending", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := login(t, e)

	rec = call(e, http.MethodPost, "/v1/reservations", booking1("Alice"), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := decode(t, rec)["order_id"].(string)

	rec = call(e, http.MethodGet, "/v1/admin/pending", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 2)

	path := "/v1/admin/reservations/" + orderID
	rec = call(e, http.MethodPost, path+"/approve", echo.Map{"resource": "CANON相機", "slot": "09:00-10:00"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "APPROVED", decode(t, rec)["status"])

	rec = call(e, http.MethodPost, path+"/reject", echo.Map{"resource": "CANON相機", "slot": "10:00-11:00"}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(e, http.MethodPost, path+"/approve", echo.Map{"resource": "CANON相機", "slot": "10:00-11:00"}, token)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = call(e, http.MethodPost, path+"/approve", echo.Map{"resource": "V8", "slot": "10:00-11:00"}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = call(e, http.MethodPost, path+"/approve", echo.Map{}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, http.MethodPost, "/v1/reservations/"+orderID+"/return", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(e, http.MethodGet, "/v1/admin/reservations", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 2)

	rec = call(e, http.MethodGet, "/v1/admin/stats", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"CANON相機": float64(2)}, decode(t, rec)["usage"])

	rec = call(e, http.MethodGet, "/v1/admin/export.csv", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), ".csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "order_id,requester_name"))
	assert.Contains(t, lines[1], "RETURNED")
	assert.Contains(t, lines[2], "REJECTED")

	rec = call(e, http.MethodGet, "/v1/admin/export.xlsx", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}
