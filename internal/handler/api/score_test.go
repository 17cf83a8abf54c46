package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScoreFuse/internal/domain/models"
	"ScoreFuse/internal/engine"
	"ScoreFuse/internal/history"
	"ScoreFuse/internal/repository"
	"ScoreFuse/internal/usecase"
	xlogger "ScoreFuse/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordComputation(string, string, float64) {}
func (nopMetrics) RecordSourceDrop(string, string)           {}
func (nopMetrics) RecordInsufficientData(string)             {}
func (nopMetrics) RecordPublishError(string)                 {}
func (nopMetrics) RecordLatency(string, float64)             {}

type handlerFixture struct {
	e       *echo.Echo
	ambient *repository.MemoryAmbientStore
	store   *history.MemoryStore
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	eng, err := engine.NewEngine(engine.DefaultConfig())
	require.NoError(t, err)

	ambient := repository.NewMemoryAmbientStore()
	store := history.NewMemoryStore(0)
	scores := usecase.NewScoreUsecase(eng, ambient, store, repository.NoopResultPublisher{}, nopMetrics{}, l)
	admin := usecase.NewAdminUsecase(ambient, l)
	hist := usecase.NewHistoryUsecase(store)

	e := echo.New()
	NewScoreHandler(l, scores, admin, hist, nil).RegisterRoutes(e)
	return &handlerFixture{e: e, ambient: ambient, store: store}
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (f *handlerFixture) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestHealth(t *testing.T) {
	f := newHandlerFixture(t)
	rec, env := f.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, env.Status)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
}

func TestScoreEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	body := `{
		"symbol": "btc-usdt",
		"scores": [
			{"kind": "LIQUIDATION", "value": 75, "confidence": 0.85},
			{"kind": "TECHNICAL", "value": 82, "confidence": 0.80},
			{"kind": "RISK", "value": 68, "confidence": 0.90}
		]
	}`
	_, env := f.do(t, http.MethodPost, "/api/score", body)
	require.Equal(t, http.StatusOK, env.Status)

	var res models.AggregationResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "BTC-USDT", res.Symbol)
	assert.Greater(t, res.FinalScore, 0.0)
	assert.NotEmpty(t, res.Recommendation)

	// the computation was recorded
	recs, err := f.store.Range(context.Background(), "BTC-USDT", time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestScoreEndpointValidation(t *testing.T) {
	f := newHandlerFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing symbol", `{"scores":[{"kind":"RISK","value":50,"confidence":0.5}]}`},
		{"unknown kind", `{"symbol":"BTC-USDT","scores":[{"kind":"SENTIMENT","value":50,"confidence":0.5}]}`},
		{"too many scores", `{"symbol":"BTC-USDT","scores":[
			{"kind":"RISK","value":50,"confidence":0.5},
			{"kind":"RISK","value":50,"confidence":0.5},
			{"kind":"RISK","value":50,"confidence":0.5},
			{"kind":"RISK","value":50,"confidence":0.5}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, env := f.do(t, http.MethodPost, "/api/score", tt.body)
			assert.Equal(t, http.StatusBadRequest, env.Status)
		})
	}
}

func TestScoreEndpointInsufficientData(t *testing.T) {
	f := newHandlerFixture(t)

	_, env := f.do(t, http.MethodPost, "/api/score", `{"symbol":"BTC-USDT"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, env.Status)
}

func TestConditionEndpoints(t *testing.T) {
	f := newHandlerFixture(t)

	_, env := f.do(t, http.MethodGet, "/api/admin/condition", "")
	require.Equal(t, http.StatusOK, env.Status)
	assert.JSONEq(t, `{"condition":"NORMAL"}`, string(env.Data))

	_, env = f.do(t, http.MethodPut, "/api/admin/condition", `{"condition":"HIGH_VOLATILITY"}`)
	require.Equal(t, http.StatusOK, env.Status)

	_, env = f.do(t, http.MethodGet, "/api/admin/condition", "")
	assert.JSONEq(t, `{"condition":"HIGH_VOLATILITY"}`, string(env.Data))
}

func TestConditionRejectsUnknown(t *testing.T) {
	f := newHandlerFixture(t)

	_, env := f.do(t, http.MethodPut, "/api/admin/condition", `{"condition":"MOONSHOT"}`)
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestPriorEndpoints(t *testing.T) {
	f := newHandlerFixture(t)

	_, env := f.do(t, http.MethodPut, "/api/admin/priors/LIQUIDATION", `{"prior":0.8}`)
	require.Equal(t, http.StatusOK, env.Status)

	var p models.ReliabilityPrior
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, models.SourceLiquidation, p.Kind)
	assert.Equal(t, 0.8, p.Prior)

	_, env = f.do(t, http.MethodGet, "/api/admin/priors", "")
	require.Equal(t, http.StatusOK, env.Status)
	var priors map[models.SourceKind]models.ReliabilityPrior
	require.NoError(t, json.Unmarshal(env.Data, &priors))
	assert.Contains(t, priors, models.SourceLiquidation)
}

func TestPriorRejectsBadInput(t *testing.T) {
	f := newHandlerFixture(t)

	_, env := f.do(t, http.MethodPut, "/api/admin/priors/SENTIMENT", `{"prior":0.5}`)
	assert.Equal(t, http.StatusBadRequest, env.Status)

	_, env = f.do(t, http.MethodPut, "/api/admin/priors/RISK", `{"prior":1.5}`)
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestHistoryEndpoints(t *testing.T) {
	f := newHandlerFixture(t)

	// seed via the score endpoint
	for i := 0; i < 3; i++ {
		_, env := f.do(t, http.MethodPost, "/api/score", `{
			"symbol": "BTC-USDT",
			"scores": [{"kind": "TECHNICAL", "value": 70, "confidence": 0.9}]
		}`)
		require.Equal(t, http.StatusOK, env.Status)
	}

	_, env := f.do(t, http.MethodGet, "/api/history/BTC-USDT/stats?n=2", "")
	require.Equal(t, http.StatusOK, env.Status)
	var stats models.HistoryStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.Records)

	_, env = f.do(t, http.MethodGet, "/api/history/BTC-USDT", "")
	require.Equal(t, http.StatusOK, env.Status)
	var list struct {
		Rows  []models.HistoryRecord `json:"rows"`
		Total int64                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, int64(3), list.Total)

	_, env = f.do(t, http.MethodGet, "/api/history/BTC-USDT/patterns", "")
	require.Equal(t, http.StatusOK, env.Status)
}
