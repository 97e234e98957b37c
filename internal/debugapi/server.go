package debugapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/voxel-sandbox/internal/eventbus"
	"github.com/annel0/voxel-sandbox/internal/game"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// SnapshotSource источник состояния сессии; Snapshot вызывается из горутин HTTP
type SnapshotSource interface {
	Snapshot() game.Snapshot
}

// Registry реестр метрик, в который пишет мир и из которого читает /metrics
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// Server отладочный HTTP-интерфейс песочницы
type Server struct {
	router  *gin.Engine
	source  SnapshotSource
	journal *eventbus.Journal
	process *ProcessMetrics
	logger  *logging.Logger
	http    *http.Server
}

// NewServer создает сервер; port == 0 допустим только для Handler() в тестах.
// journal может быть nil, тогда /api/events всегда пуст.
func NewServer(port int, source SnapshotSource, reg Registry, journal *eventbus.Journal) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	// Спан запроса создаётся до логгера, чтобы X-Trace-Id совпадал с trace-id
	router.Use(otelgin.Middleware("voxel-debug"))

	logger := logging.GetAPILogger()
	router.Use(middleware.NewRequestLogger(logger).Handler())

	promMw := middleware.NewPrometheusMiddleware("voxel_debug", reg)
	router.Use(promMw.Handler())
	middleware.RegisterMetricsEndpoint(router, reg)

	s := &Server{
		router:  router,
		source:  source,
		journal: journal,
		process: NewProcessMetrics(),
		logger:  logger,
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/world", s.handleWorld)
		api.GET("/process", s.handleProcess)
		api.GET("/events", s.handleEvents)
	}
}

// Handler возвращает http.Handler роутера
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start запускает сервер в фоне; ошибки, кроме штатной остановки, уходят в лог
func (s *Server) Start() {
	go func() {
		s.logger.Info("🔧 Отладочный API слушает %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Отладочный API остановлен с ошибкой: %v", err)
		}
	}()
}

// Shutdown корректно останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// handleHealth проверка состояния
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// handleWorld снимок сессии: позиция игрока и статистика мира
func (s *Server) handleWorld(c *gin.Context) {
	if s.source == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "сессия не запущена"})
		return
	}
	c.JSON(http.StatusOK, s.source.Snapshot())
}

// handleProcess показатели процесса
func (s *Server) handleProcess(c *gin.Context) {
	c.JSON(http.StatusOK, s.process.Collect())
}

// handleEvents последние события мира; ?limit=N ограничивает выдачу
func (s *Server) handleEvents(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit должен быть неотрицательным числом"})
			return
		}
		limit = v
	}

	events := []*eventbus.Envelope{}
	if s.journal != nil {
		events = s.journal.Recent(limit)
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}
