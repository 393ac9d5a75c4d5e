package api

import (
	"context"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"medbox-sync/internal/config/components"
	"medbox-sync/internal/models"
	"medbox-sync/internal/relay"
	"medbox-sync/internal/services"
	"net"
	"net/http"
	"strings"
	"time"
)

type RelayQuerier interface {
	Snapshot(ctx context.Context) (relay.Snapshot, error)
	SyncMedicines(ctx context.Context) error
}

type StoreReader interface {
	ListMedicines(ctx context.Context) ([]models.Medicine, error)
	GetConfig(ctx context.Context) (*models.CabinetConfig, error)
}

type Commander interface {
	SendControl(ctx context.Context, action string) error
}

type Dependencies struct {
	Relay     RelayQuerier
	Store     StoreReader
	Commands  Commander
	WebSocket http.Handler
	// DatabaseUp reports store reachability for /health; nil means unknown.
	DatabaseUp func() bool
	BusUp      func() bool
}

type Server struct {
	deps   Dependencies
	config components.HTTPConfigImpl
	router *gin.Engine
	server *http.Server
	logger zerolog.Logger
}

type controlRequest struct {
	Action string `json:"action"`
}

func NewServer(cfg components.HTTPConfigImpl, deps Dependencies, logger zerolog.Logger) *Server {
	s := &Server{
		deps:   deps,
		config: cfg,
		logger: logger,
	}
	s.router = s.newRouter()
	s.server = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery(), s.requestLogger())

	if s.deps.WebSocket != nil {
		router.GET("/ws", gin.WrapH(s.deps.WebSocket))
	}
	router.GET("/health", s.handleHealth)
	router.GET("/status", s.handleStatus)
	router.POST("/control", s.handleControl)
	router.POST("/sync", s.handleSync)

	return router
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(started)).
			Msg("HTTP request")
	}
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}

	s.logger.Info().Str("address", listener.Addr().String()).Msg("HTTP server listening")

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("HTTP server stopped unexpectedly")
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"database":  checkUp(s.deps.DatabaseUp),
		"mqtt":      checkUp(s.deps.BusUp),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	ctx := c.Request.Context()

	snapshot, err := s.deps.Relay.Snapshot(ctx)
	if err != nil {
		s.abortWithError(c, http.StatusServiceUnavailable, err)
		return
	}

	medicines, err := s.deps.Store.ListMedicines(ctx)
	if err != nil {
		s.abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	config, err := s.deps.Store.GetConfig(ctx)
	if err != nil {
		s.abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	body := make(gin.H, len(snapshot.Status)+5)
	for key, value := range snapshot.Status {
		body[key] = value
	}
	body["medicineCount"] = len(medicines)
	body["config"] = models.NewConfigMessage(config)
	body["producers"] = snapshot.Producers
	body["busConnected"] = snapshot.BusConnected
	body["brokerClients"] = snapshot.BrokerClients

	c.JSON(http.StatusOK, body)
}

func (s *Server) handleControl(c *gin.Context) {
	var request controlRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	action := strings.TrimSpace(request.Action)
	if action == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Action required"})
		return
	}

	if err := s.deps.Commands.SendControl(c.Request.Context(), action); err != nil {
		if errors.Is(err, services.ErrEmptyAction) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Action required"})
			return
		}
		s.abortWithError(c, http.StatusBadGateway, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Command sent: " + action})
}

func (s *Server) handleSync(c *gin.Context) {
	if err := s.deps.Relay.SyncMedicines(c.Request.Context()); err != nil {
		s.abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Medicines synced"})
}

func (s *Server) abortWithError(c *gin.Context, status int, err error) {
	s.logger.Error().Err(err).Int("status", status).Str("path", c.FullPath()).Msg("Request failed")
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func checkUp(check func() bool) bool {
	return check != nil && check()
}
