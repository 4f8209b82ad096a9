// Package httpapi serves share snapshots over HTTP without authentication.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Tiliavir/daylog/internal/logging"
	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/render"
	"github.com/Tiliavir/daylog/internal/report"
	"github.com/Tiliavir/daylog/internal/share"
)

// Fetcher loads valid share snapshots.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (model.ShareSnapshot, error)
}

// Server provides the public share endpoints.
type Server struct {
	echo    *echo.Echo
	shares  Fetcher
	metrics *Metrics
	logger  *zap.Logger
}

// NewServer creates the server. Metrics are registered with reg and exposed
// on /metrics.
func NewServer(shares Fetcher, reg *prometheus.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		shares:  shares,
		metrics: NewMetrics(reg),
		logger:  logger.Named("http"),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			s.logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})
	e.Use(s.metrics.Middleware())

	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	g := e.Group("/s/:id")
	g.GET("", s.handleShare)
	g.GET("/table", s.handleTable)
	g.GET("/teams", s.handleTeams)
	g.GET("/export.xlsx", s.handleExport)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting share server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down share server")
	return s.echo.Shutdown(ctx)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// ErrorResponse is returned for invalid shares.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ProjectHours is one entry of ShareResponse.ProjectHours.
type ProjectHours struct {
	Project string `json:"project"`
	Hours   int    `json:"hours"`
}

// ShareResponse is the response body for GET /s/:id.
type ShareResponse struct {
	ID           string         `json:"id"`
	UserName     string         `json:"userName"`
	MonthName    string         `json:"monthName"`
	Year         int            `json:"year"`
	Month        int            `json:"month"`
	ExpiresAt    time.Time      `json:"expiresAt"`
	TotalHours   int            `json:"totalHours"`
	ProjectHours []ProjectHours `json:"projectHours"`
	Logs         []model.DayLog `json:"logs"`
}

// fetch loads the snapshot and writes the invalid-state response itself.
// ok is false when the handler should return err without writing data.
func (s *Server) fetch(c echo.Context) (model.ShareSnapshot, bool, error) {
	id := c.Param("id")
	snap, err := s.shares.Fetch(c.Request().Context(), id)
	outcome, status, code := "ok", 0, ""
	switch {
	case err == nil:
	case errors.Is(err, share.ErrNotFound):
		outcome, status, code = "not_found", http.StatusNotFound, "not_found"
	case errors.Is(err, share.ErrExpired):
		outcome, status, code = "expired", http.StatusGone, "expired"
	case errors.Is(err, share.ErrDisabled):
		outcome, status, code = "disabled", http.StatusGone, "disabled"
	default:
		s.metrics.ShareFetchTotal.WithLabelValues("error").Inc()
		s.logger.Error("fetching share", logging.ShareID(id), zap.Error(err))
		return model.ShareSnapshot{}, false, echo.NewHTTPError(http.StatusInternalServerError, "could not load share")
	}
	s.metrics.ShareFetchTotal.WithLabelValues(outcome).Inc()
	if err != nil {
		return model.ShareSnapshot{}, false, c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
	}
	return snap, true, nil
}

func (s *Server) handleShare(c echo.Context) error {
	snap, ok, err := s.fetch(c)
	if !ok {
		return err
	}
	totals := report.HoursTotals(snap.Logs)
	resp := ShareResponse{
		ID:           snap.ID,
		UserName:     snap.UserName,
		MonthName:    snap.MonthName,
		Year:         snap.Year,
		Month:        snap.Month,
		ExpiresAt:    snap.ExpiresAt,
		TotalHours:   totals.Hours,
		ProjectHours: []ProjectHours{},
		Logs:         report.Sorted(snap.Logs),
	}
	for _, p := range totals.ByProject {
		resp.ProjectHours = append(resp.ProjectHours, ProjectHours{Project: p.Project, Hours: p.Hours})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleTable(c echo.Context) error {
	snap, ok, err := s.fetch(c)
	if !ok {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return render.HTMLTable(c.Response(), report.Rows(snap.Logs))
}

func (s *Server) handleTeams(c echo.Context) error {
	snap, ok, err := s.fetch(c)
	if !ok {
		return err
	}
	return c.String(http.StatusOK, render.Teams(snap.MonthName, report.Rows(snap.Logs)))
}

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleExport(c echo.Context) error {
	snap, ok, err := s.fetch(c)
	if !ok {
		return err
	}
	f, err := report.Workbook(snap.Logs)
	if err != nil {
		s.logger.Error("building shared workbook", logging.ShareID(snap.ID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "could not build workbook")
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("writing shared workbook", logging.ShareID(snap.ID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "could not build workbook")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+report.SharedFileName(snap.MonthName)+`"`)
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}
