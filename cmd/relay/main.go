package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SendMailRequest represents a single message handed to the relay
type SendMailRequest struct {
	To       string `json:"to" binding:"required"`
	Subject  string `json:"subject" binding:"required"`
	HTMLBody string `json:"html_body" binding:"required"`
}

// SendMailResponse is the relay's answer to a submit request
type SendMailResponse struct {
	Accepted    bool      `json:"accepted"`
	Queue       string    `json:"queue,omitempty"`
	ErrorMsg    string    `json:"error_message,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status     string    `json:"status"`
	RelayID    string    `json:"relay_id"`
	Timestamp  time.Time `json:"timestamp"`
	AcceptRate float64   `json:"accept_rate"`
}

// MockRelay simulates an outbound mail relay
type MockRelay struct {
	acceptRate float64
	minDelay   time.Duration
	maxDelay   time.Duration
	relayID    string
	rng        *rand.Rand
}

// NewMockRelay creates a new mock relay instance
func NewMockRelay(acceptRate float64, minDelay, maxDelay time.Duration) *MockRelay {
	return &MockRelay{
		acceptRate: acceptRate,
		minDelay:   minDelay,
		maxDelay:   maxDelay,
		relayID:    "MOCK_RELAY_" + uuid.New().String()[:8],
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// simulateSubmit simulates handing the message off to an upstream MTA
func (m *MockRelay) simulateSubmit(req *SendMailRequest) *SendMailResponse {
	delay := m.randomDelay()
	time.Sleep(delay)

	response := &SendMailResponse{
		ProcessedAt: time.Now(),
	}

	if m.shouldAccept() {
		response.Accepted = true
		response.Queue = uuid.New().String()

		log.Info().
			Str("to", req.To).
			Str("subject", req.Subject).
			Str("queue", response.Queue).
			Dur("delay", delay).
			Msg("Mail accepted")
	} else {
		response.Accepted = false
		response.ErrorMsg = m.randomError()

		log.Warn().
			Str("to", req.To).
			Str("subject", req.Subject).
			Str("error", response.ErrorMsg).
			Msg("Mail rejected")
	}

	return response
}

func (m *MockRelay) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	randomDelta := time.Duration(m.rng.Int63n(int64(delta)))
	return m.minDelay + randomDelta
}

func (m *MockRelay) shouldAccept() bool {
	return m.rng.Float64() < m.acceptRate
}

func (m *MockRelay) randomError() string {
	errors := []string{
		"mailbox unavailable",
		"greylisted, try again later",
		"message rejected by content filter",
		"recipient address rejected",
		"connection to upstream MTA lost",
	}
	return errors[m.rng.Intn(len(errors))]
}

// Handler struct holds the mock relay and routes
type Handler struct {
	relay *MockRelay
}

func NewHandler(relay *MockRelay) *Handler {
	return &Handler{relay: relay}
}

// SendMail handles mail submit requests
func (h *Handler) SendMail(c *gin.Context) {
	var req SendMailRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	log.Info().
		Str("to", req.To).
		Str("subject", req.Subject).
		Msg("Received mail submit request")

	response := h.relay.simulateSubmit(&req)

	statusCode := http.StatusOK
	if !response.Accepted {
		statusCode = http.StatusAccepted // 202: received but not accepted for delivery
	}

	c.JSON(statusCode, response)
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:     "healthy",
		RelayID:    h.relay.relayID,
		Timestamp:  time.Now(),
		AcceptRate: h.relay.acceptRate,
	})
}

// UpdateConfig allows changing relay configuration at runtime
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		AcceptRate *float64 `json:"accept_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if config.AcceptRate != nil {
		if *config.AcceptRate >= 0 && *config.AcceptRate <= 1.0 {
			h.relay.acceptRate = *config.AcceptRate
			log.Info().Float64("rate", *config.AcceptRate).Msg("Updated accept rate")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Configuration updated",
		"accept_rate": h.relay.acceptRate,
	})
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/mail/send", handler.SendMail)
		v1.GET("/health", handler.HealthCheck)
		v1.PUT("/config", handler.UpdateConfig)
	}

	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := getEnv("PORT", "8081")
	acceptRate := getEnvFloat("ACCEPT_RATE", 1)
	minDelay := getEnvDuration("MIN_DELAY", 100*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 1*time.Second)

	log.Info().
		Str("port", port).
		Float64("accept_rate", acceptRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("Starting Mock Mail Relay")

	relay := NewMockRelay(acceptRate, minDelay, maxDelay)
	handler := NewHandler(relay)
	router := SetupRouter(handler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
