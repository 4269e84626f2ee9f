package api

import (
	"time"

	"IndexPulse/internal/domain/models"
	drepo "IndexPulse/internal/domain/repository"
	"IndexPulse/internal/usecase"
	"IndexPulse/pkg/cache"
	xhttp "IndexPulse/pkg/http"
	xlogger "IndexPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StatusEchoHandler exposes the collector's state over HTTP: current
// file, latest snapshot with trend signals, mirror history and a live
// websocket stream.
type StatusEchoHandler struct {
	logger    *xlogger.Logger
	collector *usecase.SampleCollector
	store     drepo.Storage // nil when no storage mirror is configured
	queries   *cache.Memory
	startedAt time.Time
}

func NewStatusEchoHandler(logger *xlogger.Logger, collector *usecase.SampleCollector, store drepo.Storage) *StatusEchoHandler {
	return &StatusEchoHandler{
		logger:    logger,
		collector: collector,
		store:     store,
		queries:   cache.NewMemory(cache.WithMaxSize(256)),
		startedAt: time.Now(),
	}
}

func (h *StatusEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/status", h.Status)
	g.GET("/signal", h.Signal)
	g.GET("/history", h.History)
	g.GET("/live", h.Live)
}

type statusResponse struct {
	CurrentFile string     `json:"current_file"`
	RowsWritten int64      `json:"rows_written"`
	LastSample  *time.Time `json:"last_sample,omitempty"`
	UptimeSecs  float64    `json:"uptime_seconds"`
}

func (h *StatusEchoHandler) Status(c echo.Context) error {
	resp := statusResponse{
		CurrentFile: h.collector.CurrentFilePath(),
		RowsWritten: h.collector.RowsWritten(),
		UptimeSecs:  time.Since(h.startedAt).Seconds(),
	}
	if snap, ok := h.collector.Latest(); ok {
		ts := snap.Timestamp
		resp.LastSample = &ts
	}
	return xhttp.SuccessResponse(c, resp)
}

func (h *StatusEchoHandler) Signal(c echo.Context) error {
	snap, ok := h.collector.Latest()
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no sample recorded yet"))
	}
	return xhttp.SuccessResponse(c, snap)
}

type historyRequest struct {
	From  string `query:"from"`
	To    string `query:"to"`
	Limit int    `query:"limit" default:"100" validate:"gte=1,lte=10000"`
}

// History serves raw samples from the storage mirror when one is
// configured.
func (h *StatusEchoHandler) History(c echo.Context) error {
	if h.store == nil {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("no storage mirror configured"))
	}

	req := &historyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	to := time.Now()
	if req.To != "" {
		t, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("to must be RFC3339"))
		}
		to = t
	}
	from := to.Add(-time.Hour)
	if req.From != "" {
		t, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("from must be RFC3339"))
		}
		from = t
	}

	key := cache.Key("history", from.Unix(), to.Unix(), req.Limit)
	if v, err := h.queries.Get(key); err == nil {
		return xhttp.SuccessResponse(c, v.([]models.Sample))
	}

	rows, err := h.store.Query(c.Request().Context(), from, to, req.Limit)
	if err != nil {
		h.logger.Error("history query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("history query failed", err))
	}
	h.queries.Set(key, rows, 10*time.Second)
	return xhttp.SuccessResponse(c, rows)
}
