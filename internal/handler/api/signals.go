package api

import (
	"errors"
	"net/http"
	"time"

	"CoinPulse/internal/analysis"
	models "CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/usecase"
	"CoinPulse/pkg/cache"
	xhttp "CoinPulse/pkg/http"
	xlogger "CoinPulse/pkg/logger"
	xutil "CoinPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

const snapshotCacheTTL = 5 * time.Second

// SignalsHandler exposes the evaluation pipeline over HTTP.
type SignalsHandler struct {
	logger    *xlogger.Logger
	evaluator *usecase.SignalEvaluator
	candles   *usecase.CandlesUseCase
	collector *usecase.SignalCollector
	store     domrepo.CandleStore
	cache     cache.Service
	timeframe domrepo.Timeframe
}

func NewSignalsHandler(
	logger *xlogger.Logger,
	evaluator *usecase.SignalEvaluator,
	candles *usecase.CandlesUseCase,
	collector *usecase.SignalCollector,
	store domrepo.CandleStore,
	cacheSvc cache.Service,
	timeframe domrepo.Timeframe,
) *SignalsHandler {
	return &SignalsHandler{
		logger:    logger,
		evaluator: evaluator,
		candles:   candles,
		collector: collector,
		store:     store,
		cache:     cacheSvc,
		timeframe: timeframe,
	}
}

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/signal", h.Signal)
	g.GET("/snapshot", h.Snapshot)
	g.GET("/candles", h.Candles)
	e.GET("/healthz", h.Health)
}

// Signal runs an on-demand evaluation and returns the full signal.
func (h *SignalsHandler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	signal, err := h.evaluator.Evaluate(c.Request().Context(), req.Market, req.Count)
	if err != nil {
		return h.evaluationError(c, err)
	}
	return xhttp.SuccessResponse(c, signal)
}

// Snapshot returns the enriched market snapshot without running processors.
func (h *SignalsHandler) Snapshot(c echo.Context) error {
	req := &models.SnapshotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	key := cache.GenerateKeyWithParams("snapshot", req.Market, req.Count)
	if h.cache != nil {
		var cached models.MarketSnapshot
		if err := h.cache.Get(ctx, key, &cached); err == nil {
			return xhttp.SuccessResponse(c, &cached)
		}
	}

	snap, err := h.evaluator.Snapshot(ctx, req.Market, req.Count)
	if err != nil {
		return h.evaluationError(c, err)
	}
	if h.cache != nil {
		if err := h.cache.Set(ctx, key, snap, snapshotCacheTTL); err != nil {
			h.logger.Warn("snapshot cache write failed", xlogger.Error(err))
		}
	}
	return xhttp.SuccessResponse(c, snap)
}

// Candles reads stored candle history back from the candle store.
func (h *SignalsHandler) Candles(c echo.Context) error {
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now().UTC()
	from := xutil.ParseTimeDefault(req.From, now.Add(-24*time.Hour))
	to := xutil.ParseTimeDefault(req.To, now)
	from, to = xutil.AlignFromTo(from, to, string(h.timeframe))

	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Market:    req.Market,
		From:      from,
		To:        to,
		Timeframe: h.timeframe,
		Limit:     req.Limit,
	})
	if err != nil {
		h.logger.Error("candles usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Health reports stream and storage liveness.
func (h *SignalsHandler) Health(c echo.Context) error {
	status := map[string]interface{}{
		"status":    "ok",
		"stream":    h.collector.IsConnected(),
		"timestamp": time.Now().UTC(),
	}
	if h.store != nil {
		if err := h.store.Health(c.Request().Context()); err != nil {
			status["status"] = "degraded"
			status["storage"] = err.Error()
			return xhttp.DataResponse(c, http.StatusServiceUnavailable, status)
		}
		status["storage"] = "ok"
	}
	if !h.collector.IsConnected() {
		status["status"] = "degraded"
	}
	return xhttp.SuccessResponse(c, status)
}

func (h *SignalsHandler) evaluationError(c echo.Context, err error) error {
	var insufficient *analysis.InsufficientDataError
	if errors.As(err, &insufficient) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf(
			"insufficient history for %s: have %d candles, need %d",
			insufficient.Market, insufficient.Have, insufficient.Need,
		))
	}
	h.logger.Error("evaluation error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}
