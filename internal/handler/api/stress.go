package api

import (
	"time"

	domrepo "StressPulse/internal/domain/repository"
	icache "StressPulse/internal/service/cache"
	"StressPulse/internal/usecase"
	xhttp "StressPulse/pkg/http"
	xlogger "StressPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

const latestCacheTTL = 60 * time.Second

// StressHandler serves the read API over the feature store. The latest
// point is cached in-process: it only changes once per day.
type StressHandler struct {
	logger   *xlogger.Logger
	features domrepo.FeatureStore
	raw      domrepo.RawDataStore
	runner   *usecase.StressRunner
	cache    *icache.TTLCache
}

func NewStressHandler(logger *xlogger.Logger, features domrepo.FeatureStore, raw domrepo.RawDataStore, runner *usecase.StressRunner) *StressHandler {
	return &StressHandler{logger: logger, features: features, raw: raw, runner: runner, cache: icache.NewTTLCache()}
}

func (h *StressHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/stress")
	g.GET("/latest", h.Latest)
	g.GET("/history", h.History)
	g.GET("/findings", h.Findings)
	g.POST("/run", h.Run)
	e.GET("/healthz", h.Healthz)
}

// Latest returns the most recent stress index point.
func (h *StressHandler) Latest(c echo.Context) error {
	if v, ok := h.cache.Get("latest"); ok {
		c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
		return xhttp.SuccessResponse(c, v)
	}

	point, err := h.features.GetLatestStressPoint(c.Request().Context())
	if err != nil {
		h.logger.Error("latest stress point error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if point == nil {
		return xhttp.NotFoundResponse(c, "no stress index computed yet")
	}
	h.cache.Set("latest", point, latestCacheTTL)
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, point)
}

// History returns stress points between from and to (default: last 90 days).
func (h *StressHandler) History(c echo.Context) error {
	now := time.Now().UTC()
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), now.AddDate(0, 0, -90))
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), now)
	if !from.Before(to) {
		return xhttp.BadRequestResponse(c, "from must be before to")
	}

	points, err := h.features.GetStressHistory(c.Request().Context(), from, to)
	if err != nil {
		h.logger.Error("stress history error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, points, int64(len(points)))
}

// Findings returns quality findings for one indicator (default: last 30 days).
func (h *StressHandler) Findings(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return xhttp.BadRequestResponse(c, "code is required")
	}
	now := time.Now().UTC()
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), now.AddDate(0, 0, -30))
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), now)

	findings, err := h.features.GetFindings(c.Request().Context(), code, from, to)
	if err != nil {
		h.logger.Error("findings error", xlogger.String("code", code), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, findings, int64(len(findings)))
}

type runRequest struct {
	AsOf string `json:"as_of" validate:"required,datetime=2006-01-02"`
}

// Run triggers the pipeline for a given day. Used by operators to backfill
// or rerun a day after fixing an upstream data problem.
func (h *StressHandler) Run(c echo.Context) error {
	var req runRequest
	if verrs := xhttp.ReadAndValidateRequest(c, &req); verrs != nil {
		return xhttp.BadRequestResponse(c, verrs)
	}
	asOf, _ := time.Parse("2006-01-02", req.AsOf)

	point, err := h.runner.RunDaily(c.Request().Context(), asOf)
	if err != nil {
		h.logger.Error("manual stress run failed", xlogger.String("as_of", req.AsOf), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	h.cache.Delete("latest")
	return xhttp.SuccessResponse(c, point)
}

// Healthz reports raw store connectivity.
func (h *StressHandler) Healthz(c echo.Context) error {
	if err := h.raw.Health(c.Request().Context()); err != nil {
		h.logger.Error("health check failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("raw store unreachable"))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
