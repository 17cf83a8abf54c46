package api

import (
	"errors"

	"ScoreFuse/internal/domain/models"
	"ScoreFuse/internal/service/ratelimit"
	"ScoreFuse/internal/usecase"
	xhttp "ScoreFuse/pkg/http"
	xlogger "ScoreFuse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ScoreHandler implements the Echo-based HTTP surface: scoring, ambient
// administration and history queries.
type ScoreHandler struct {
	logger  *xlogger.Logger
	scores  *usecase.ScoreUsecase
	admin   *usecase.AdminUsecase
	history *usecase.HistoryUsecase
	// collector is nil when the score feed is disabled; requests must then
	// carry explicit scores.
	collector *usecase.ScoreCollector
	limiter   *ratelimit.Limiter

	// rate limit for the compute endpoint, per client IP
	rateCapacity float64
	ratePerSec   float64
}

func NewScoreHandler(
	logger *xlogger.Logger,
	scores *usecase.ScoreUsecase,
	admin *usecase.AdminUsecase,
	history *usecase.HistoryUsecase,
	collector *usecase.ScoreCollector,
) *ScoreHandler {
	return &ScoreHandler{
		logger:       logger,
		scores:       scores,
		admin:        admin,
		history:      history,
		collector:    collector,
		limiter:      ratelimit.New(),
		rateCapacity: 20,
		ratePerSec:   10,
	}
}

func (h *ScoreHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.POST("/score", h.Score)

	admin := g.Group("/admin")
	admin.GET("/condition", h.GetCondition)
	admin.PUT("/condition", h.SetCondition)
	admin.GET("/priors", h.GetPriors)
	admin.PUT("/priors/:kind", h.SetPrior)

	hist := g.Group("/history")
	hist.GET("/:symbol", h.HistoryRange)
	hist.GET("/:symbol/stats", h.HistoryStats)
	hist.GET("/:symbol/patterns", h.HistoryPatterns)
}

func (h *ScoreHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *ScoreHandler) Score(c echo.Context) error {
	if !h.limiter.Allow(c.RealIP(), h.rateCapacity, h.ratePerSec) {
		return xhttp.TooManyRequestsResponse(c)
	}

	req := &models.ScoreRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var (
		res models.AggregationResult
		err error
	)
	if len(req.Scores) == 0 && h.collector != nil {
		// no explicit scores: fuse the freshest streamed inputs
		collected := h.collector.Latest(req.Symbol)
		res, err = h.scores.ComputeFromCollected(c.Request().Context(), req.Symbol, collected, req.Legacy)
	} else {
		res, err = h.scores.ComputeRequest(c.Request().Context(), *req)
	}
	if err != nil {
		if errors.Is(err, usecase.ErrInsufficientData) {
			return xhttp.UnprocessableResponse(c, "no usable source scores")
		}
		h.logger.Error("score usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ScoreHandler) GetCondition(c echo.Context) error {
	cond, err := h.admin.Condition(c.Request().Context())
	if err != nil {
		h.logger.Error("get condition error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"condition": string(cond)})
}

func (h *ScoreHandler) SetCondition(c echo.Context) error {
	req := &models.ConditionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cond, err := h.admin.SetCondition(c.Request().Context(), req.Condition)
	if err != nil {
		h.logger.Error("set condition error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"condition": string(cond)})
}

func (h *ScoreHandler) GetPriors(c echo.Context) error {
	priors, err := h.admin.Priors(c.Request().Context())
	if err != nil {
		h.logger.Error("get priors error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, priors)
}

func (h *ScoreHandler) SetPrior(c echo.Context) error {
	req := &models.PriorRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	p, err := h.admin.SetPrior(c.Request().Context(), c.Param("kind"), req.Prior)
	if err != nil {
		h.logger.Warn("set prior rejected", xlogger.Error(err))
		return xhttp.BadRequestResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, p)
}

func (h *ScoreHandler) HistoryStats(c echo.Context) error {
	req := &models.HistoryStatsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	stats, err := h.history.Stats(c.Request().Context(), req.Symbol, req.N)
	if err != nil {
		h.logger.Error("history stats error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, stats)
}

func (h *ScoreHandler) HistoryPatterns(c echo.Context) error {
	symbol := c.Param("symbol")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol is required")
	}

	counts, err := h.history.PatternCounts(c.Request().Context(), symbol)
	if err != nil {
		h.logger.Error("history patterns error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, counts)
}

func (h *ScoreHandler) HistoryRange(c echo.Context) error {
	req := &models.HistoryRangeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	recs, err := h.history.Range(c.Request().Context(), req.Symbol, req.From, req.To, req.Limit)
	if err != nil {
		h.logger.Error("history range error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, recs, int64(len(recs)))
}
