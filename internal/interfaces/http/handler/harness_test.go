package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appexport "github.com/finops/backend/internal/application/export"
	"github.com/finops/backend/internal/bootstrap"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/infrastructure/cache"
	"github.com/finops/backend/internal/infrastructure/logger"
	"github.com/finops/backend/internal/infrastructure/persistence"
	"github.com/finops/backend/internal/infrastructure/persistence/models"
	"github.com/finops/backend/internal/infrastructure/storage"
	"github.com/finops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// harness serves the API handlers over an in-memory sqlite database.
type harness struct {
	t       *testing.T
	engine  *gin.Engine
	archive *storage.StubObjectStorage
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := persistence.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.DB.AutoMigrate(models.All()...))

	idem := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idem.Close() })
	archive := storage.NewStubObjectStorage()

	services := bootstrap.NewServices(db.DB, bootstrap.Options{
		Logger:            zap.NewNop(),
		Idempotency:       idem,
		IdempotencyConfig: shared.IdempotencyConfig{TTL: time.Hour, Enabled: true},
		Export:            []appexport.Option{appexport.WithArchive(archive, time.Minute)},
	})

	engine := gin.New()
	engine.Use(logger.RequestID())
	base := NewBaseHandler(zap.NewNop(), false)
	mount(engine.Group("/api/v1"), base, services)
	engine.GET("/health", NewSystemHandler(base, "test", db).Health)

	return &harness{t: t, engine: engine, archive: archive}
}

func mountCRUD(g *gin.RouterGroup, h interface {
	Create(*gin.Context)
	GetByID(*gin.Context)
	List(*gin.Context)
	Update(*gin.Context)
	Delete(*gin.Context)
}) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func mount(api *gin.RouterGroup, base BaseHandler, s *bootstrap.Services) {
	mountCRUD(api.Group("/clients"), NewClientHandler(base, s.Clients))
	mountCRUD(api.Group("/banks"), NewBankHandler(base, s.Banks))
	mountCRUD(api.Group("/cards"), NewCardHandler(base, s.Cards))
	mountCRUD(api.Group("/transactions"), NewTransactionHandler(base, s.Transactions))

	mountCRUD(api.Group("/profiler/clients"), NewProfilerClientHandler(base, s.ProfilerClients))
	mountCRUD(api.Group("/profiler/banks"), NewProfilerBankHandler(base, s.ProfilerBanks))
	profiles := NewProfileHandler(base, s.Profiles)
	mountCRUD(api.Group("/profiler/profiles"), profiles)
	api.POST("/profiler/profiles/:id/done", profiles.MarkDone)
	mountCRUD(api.Group("/profiler/transactions"), NewProfilerTransactionHandler(base, s.ProfilerTransactions))

	reports := NewReportHandler(base, s.Reports)
	api.GET("/reports/clients", reports.ClientSummary)
	api.GET("/reports/profiles", reports.ProfileSummary)

	exports := NewExportHandler(base, s.Exports)
	api.POST("/exports/transactions", exports.Transactions)
	api.POST("/exports/transactions/preview", exports.PreviewTransactions)
	api.POST("/exports/profiler-transactions", exports.ProfilerTransactions)
	api.POST("/exports/profiler-transactions/preview", exports.PreviewProfilerTransactions)
}

func (h *harness) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(h.t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

// envelope is the generic response body.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string              `json:"code"`
		Message   string              `json:"message"`
		RequestID string              `json:"request_id"`
		Details   []shared.FieldError `json:"details"`
	} `json:"error"`
	Pagination *struct {
		CurrentPage int   `json:"current_page"`
		PerPage     int   `json:"per_page"`
		TotalCount  int64 `json:"total_count"`
		TotalPages  int   `json:"total_pages"`
		HasNextPage bool  `json:"has_next_page"`
	} `json:"pagination"`
	FiltersApplied map[string]any `json:"filters_applied"`
	SearchApplied  string         `json:"search_applied"`
	SortApplied    map[string]any `json:"sort_applied"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// dataOf decodes the data member of a success response.
func dataOf[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	env := decode(t, w)
	require.True(t, env.Success, w.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// created posts body to path, expects a 201 and returns the new ID.
func (h *harness) created(path string, body any, headers ...string) string {
	h.t.Helper()
	w := h.do(http.MethodPost, path, body, headers...)
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	return dataOf[struct {
		ID string `json:"id"`
	}](h.t, w).ID
}
