package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/tokenfarms-api/internal/config"
	"github.com/deppfellow/tokenfarms-api/internal/database"
	"github.com/deppfellow/tokenfarms-api/internal/errs"
	"github.com/deppfellow/tokenfarms-api/internal/handler"
	"github.com/deppfellow/tokenfarms-api/internal/model"
	"github.com/deppfellow/tokenfarms-api/internal/repository"
	"github.com/deppfellow/tokenfarms-api/internal/server"
	"github.com/deppfellow/tokenfarms-api/internal/service"
	"github.com/deppfellow/tokenfarms-api/internal/testing/dbtest"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			Port:               "0",
			ReadTimeout:        5,
			WriteTimeout:       5,
			IdleTimeout:        5,
			ShutdownTimeout:    5,
			CORSAllowedOrigins: []string{"*"},
		},
		Database: config.DatabaseConfig{
			QueryTimeout: time.Second,
		},
		Observability: config.DefaultObservabilityConfig(),
	}
	return cfg
}

func newTestRouter(t *testing.T, pool *dbtest.Pool) *echo.Echo {
	t.Helper()

	logger := zerolog.Nop()
	srv := server.NewWithStore(testConfig(), &logger, pool)

	repos := repository.NewRepositories(srv)
	handlers := handler.NewHandlers(srv, service.NewServices(repos))

	return NewRouter(srv, handlers)
}

func post(t *testing.T, e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeErrors(t *testing.T, rec *httptest.ResponseRecorder) []errs.FieldError {
	t.Helper()

	var body errs.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Errors
}

func paths(fieldErrors []errs.FieldError) []string {
	out := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, fe.Path)
	}
	return out
}

// ============================================================================
// Success
// ============================================================================

func TestGetFarm_OK(t *testing.T) {
	pool := &dbtest.Pool{Rows: []database.Row{{"farm_name": "alice", "creator": "bob"}}}
	e := newTestRouter(t, pool)

	rec := post(t, e, "/get-farm", `{"farm_name":"alice"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"farm":[{"farm_name":"alice","creator":"bob"}]}`, rec.Body.String())

	q, ok := pool.LastQuery()
	require.True(t, ok)
	assert.Equal(t, []any{"alice"}, q.Args)
	assert.Equal(t, 0, pool.InUse())
}

func TestGetFarm_NoMatchIsEmptyArray(t *testing.T) {
	e := newTestRouter(t, &dbtest.Pool{})

	rec := post(t, e, "/get-farm", `{"farm_name":"nobody"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"farm":[]}`, rec.Body.String())
}

func TestGetFarms_Defaults(t *testing.T) {
	pool := &dbtest.Pool{}
	e := newTestRouter(t, pool)

	rec := post(t, e, "/get-farms", `{}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"farms":[]}`, rec.Body.String())

	q, _ := pool.LastQuery()
	assert.Contains(t, q.SQL, "ORDER BY time_created DESC")
	assert.Equal(t, []any{100, 0}, q.Args)
}

func TestGetFarms_NullFieldsAreValidated(t *testing.T) {
	pool := &dbtest.Pool{}
	e := newTestRouter(t, pool)

	rec := post(t, e, "/get-farms", `{"page":null,"limit":null,"sort":null,"creator":null}`)

	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"page", "limit", "sort", "creator"}, paths(decodeErrors(t, rec)))
	assert.Equal(t, 0, pool.Acquired())
}

func TestGetStakers_IntegerStrings(t *testing.T) {
	pool := &dbtest.Pool{}
	e := newTestRouter(t, pool)

	rec := post(t, e, "/get-stakers", `{"farm_name":"alice","page":"2","limit":"10"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	q, _ := pool.LastQuery()
	assert.Equal(t, []any{"alice", 10, 10}, q.Args)
}

func TestGetFarms_LastPage(t *testing.T) {
	pool := &dbtest.Pool{}
	e := newTestRouter(t, pool)

	rec := post(t, e, "/get-farms", fmt.Sprintf(`{"page":%d,"limit":%d}`, model.MaxPage, model.MaxLimit))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	q, _ := pool.LastQuery()
	assert.Equal(t, []any{model.MaxLimit, model.MaxLimit * (model.MaxPage - 1)}, q.Args)
}

func TestGetFarms_CreatorWins(t *testing.T) {
	pool := &dbtest.Pool{}
	e := newTestRouter(t, pool)

	rec := post(t, e, "/get-farms", `{"creator":"bob","original_creator":"carol","page":2,"limit":10,"sort":"oldest"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	q, _ := pool.LastQuery()
	assert.Contains(t, q.SQL, "WHERE creator = $1")
	assert.Contains(t, q.SQL, "ORDER BY time_created ASC")
	assert.Equal(t, []any{"bob", 10, 10}, q.Args)
}

func TestGetStakers_OK(t *testing.T) {
	pool := &dbtest.Pool{Rows: []database.Row{{"username": "bob", "balance": "1.0000 WAX"}}}
	e := newTestRouter(t, pool)

	rec := post(t, e, "/get-stakers", `{"farm_name":"alice","limit":5}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"stakers":[{"username":"bob","balance":"1.0000 WAX"}]}`, rec.Body.String())

	q, _ := pool.LastQuery()
	assert.Contains(t, q.SQL, "ORDER BY balance_numeric DESC")
	assert.Equal(t, []any{"alice", 5, 0}, q.Args)
}

func TestStakedOnly_OK(t *testing.T) {
	pool := &dbtest.Pool{Rows: []database.Row{{"farm_name": "alice", "staker_balance": "2.0000 WAX"}}}
	e := newTestRouter(t, pool)

	rec := post(t, e, "/staked-only", `{"staker":"bob"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"farms":[{"farm_name":"alice","staker_balance":"2.0000 WAX"}]}`, rec.Body.String())

	q, _ := pool.LastQuery()
	assert.Contains(t, q.SQL, "WHERE stakers.username = $1")
	assert.Equal(t, []any{"bob", 100, 0}, q.Args)
}

// ============================================================================
// Validation failures never reach the pool
// ============================================================================

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		body  string
		paths []string
	}{
		{name: "limit zero", path: "/get-farms", body: `{"limit":0}`, paths: []string{"limit"}},
		{name: "limit 101", path: "/get-farms", body: `{"limit":101}`, paths: []string{"limit"}},
		{name: "page zero", path: "/get-farms", body: `{"page":0}`, paths: []string{"page"}},
		{name: "page negative", path: "/get-stakers", body: `{"farm_name":"alice","page":-1}`, paths: []string{"page"}},
		{name: "bad sort", path: "/staked-only", body: `{"staker":"bob","sort":"popular"}`, paths: []string{"sort"}},
		{name: "missing farm name", path: "/get-farm", body: `{}`, paths: []string{"farm_name"}},
		{name: "uppercase staker", path: "/staked-only", body: `{"staker":"Bob"}`, paths: []string{"staker"}},
		{name: "too long creator", path: "/get-farms", body: `{"creator":"abcdefghijklm"}`, paths: []string{"creator"}},
		{name: "empty original creator", path: "/get-farms", body: `{"original_creator":""}`, paths: []string{"original_creator"}},
		{name: "non-numeric limit", path: "/get-farms", body: `{"limit":"ten"}`, paths: []string{"limit"}},
		{name: "fractional limit", path: "/get-farms", body: `{"limit":1.5}`, paths: []string{"limit"}},
		{name: "page past last", path: "/get-farms", body: `{"page":92233720368547760,"limit":100}`, paths: []string{"page"}},
		{name: "page that wraps the offset", path: "/get-farms", body: `{"page":4611686018427387905,"limit":100}`, paths: []string{"page"}},
		{name: "page out of int range", path: "/get-stakers", body: `{"farm_name":"alice","page":"99999999999999999999"}`, paths: []string{"page"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := &dbtest.Pool{}
			e := newTestRouter(t, pool)

			rec := post(t, e, tt.path, tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			fieldErrors := decodeErrors(t, rec)
			assert.Equal(t, tt.paths, paths(fieldErrors))
			for _, fe := range fieldErrors {
				assert.Equal(t, "field", fe.Type)
				assert.Equal(t, "body", fe.Location)
				assert.NotEmpty(t, fe.Msg)
			}

			assert.Equal(t, 0, pool.Acquired())
			assert.Empty(t, pool.Queries())
		})
	}
}

func TestValidation_ReportsEveryFailingField(t *testing.T) {
	pool := &dbtest.Pool{}
	e := newTestRouter(t, pool)

	rec := post(t, e, "/get-farms", `{"page":0,"limit":101,"sort":"random","creator":"BOB"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.ElementsMatch(t, []string{"page", "limit", "sort", "creator"}, paths(decodeErrors(t, rec)))
	assert.Equal(t, 0, pool.Acquired())
}

func TestValidation_WrongTypeJoinsOtherFailures(t *testing.T) {
	pool := &dbtest.Pool{}
	e := newTestRouter(t, pool)

	rec := post(t, e, "/staked-only", `{"staker":"BAD!","limit":500,"sort":7}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	fieldErrors := decodeErrors(t, rec)
	assert.ElementsMatch(t, []string{"staker", "limit", "sort"}, paths(fieldErrors))
	for _, fe := range fieldErrors {
		if fe.Path == "sort" {
			assert.Equal(t, "Sort must be of type string", fe.Msg)
			assert.Equal(t, float64(7), fe.Value)
		}
	}
	assert.Equal(t, 0, pool.Acquired())
}

func TestValidation_WrongTypeUsesJSONName(t *testing.T) {
	e := newTestRouter(t, &dbtest.Pool{})

	rec := post(t, e, "/get-farms", `{"limit":1.5}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":[{
		"type":"field",
		"value":1.5,
		"msg":"Limit must be of type integer",
		"path":"limit",
		"location":"body"
	}]}`, rec.Body.String())
}

func TestValidation_EntryShape(t *testing.T) {
	e := newTestRouter(t, &dbtest.Pool{})

	rec := post(t, e, "/staked-only", `{"staker":"Bob!"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":[{
		"type":"field",
		"value":"Bob!",
		"msg":"Invalid staker format: only a-z, 1-5, and . are allowed",
		"path":"staker",
		"location":"body"
	}]}`, rec.Body.String())
}

func TestMalformedJSON(t *testing.T) {
	pool := &dbtest.Pool{}
	e := newTestRouter(t, pool)

	rec := post(t, e, "/get-farm", `{"farm_name":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decodeErrors(t, rec), 1)
	assert.Equal(t, 0, pool.Acquired())
}

// ============================================================================
// Store failures
// ============================================================================

func TestStoreFailure_QueryError(t *testing.T) {
	pool := &dbtest.Pool{QueryErr: errors.New(`relation "tokenfarms_farms" does not exist`)}
	e := newTestRouter(t, pool)

	rec := post(t, e, "/get-farms", `{}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, errs.ServerErrorBody, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "relation")
	assert.Equal(t, 1, pool.Acquired())
	assert.Equal(t, 0, pool.InUse())
}

func TestStoreFailure_AcquireError(t *testing.T) {
	pool := &dbtest.Pool{AcquireErr: context.DeadlineExceeded}
	e := newTestRouter(t, pool)

	rec := post(t, e, "/staked-only", `{"staker":"bob"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, errs.ServerErrorBody, rec.Body.String())
	assert.Equal(t, 0, pool.InUse())
}

func TestStoreFailure_PanicIsRecovered(t *testing.T) {
	pool := &dbtest.Pool{
		QueryFunc: func(context.Context, string, []any) ([]database.Row, error) {
			panic("driver exploded")
		},
	}
	e := newTestRouter(t, pool)

	rec := post(t, e, "/get-stakers", `{"farm_name":"alice"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, errs.ServerErrorBody, rec.Body.String())
	assert.Equal(t, 0, pool.InUse())
}

func TestInUseReturnsToBaselineAfterMixedTraffic(t *testing.T) {
	calls := 0
	pool := &dbtest.Pool{
		QueryFunc: func(context.Context, string, []any) ([]database.Row, error) {
			calls++
			if calls%2 == 0 {
				return nil, errors.New("boom")
			}
			return []database.Row{}, nil
		},
	}
	e := newTestRouter(t, pool)

	for i := 0; i < 6; i++ {
		post(t, e, "/get-farms", `{}`)
		post(t, e, "/get-farms", `{"limit":0}`)
	}

	assert.Equal(t, 6, pool.Acquired())
	assert.Equal(t, 0, pool.InUse())
}

// ============================================================================
// System routes and middleware
// ============================================================================

func TestUnknownRoute(t *testing.T) {
	e := newTestRouter(t, &dbtest.Pool{})

	rec := post(t, e, "/get-everything", `{}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	fieldErrors := decodeErrors(t, rec)
	require.Len(t, fieldErrors, 1)
	assert.Equal(t, "Route not found", fieldErrors[0].Msg)
}

func TestCORSPreflight(t *testing.T) {
	e := newTestRouter(t, &dbtest.Pool{})

	req := httptest.NewRequest(http.MethodOptions, "/get-farms", nil)
	req.Header.Set(echo.HeaderOrigin, "https://wallet.example")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestRequestIDIsEchoed(t *testing.T) {
	e := newTestRouter(t, &dbtest.Pool{})

	req := httptest.NewRequest(http.MethodPost, "/get-farms", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestStatus(t *testing.T) {
	pool := &dbtest.Pool{}
	e := newTestRouter(t, pool)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])

	pool.PingErr = errors.New("connection refused")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDocs(t *testing.T) {
	e := newTestRouter(t, &dbtest.Pool{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
	assert.Contains(t, rec.Body.String(), "/static/openapi.json")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/openapi.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Contains(t, doc["paths"], "/get-farm")
	assert.Contains(t, doc["paths"], "/staked-only")
}
