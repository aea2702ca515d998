// Package server exposes the bot over HTTP: the Twilio webhook, a liveness
// endpoint, and Prometheus metrics.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danuwira/duitbot/internal/bot"
	"github.com/danuwira/duitbot/internal/common"
	"github.com/danuwira/duitbot/internal/twilio"
)

// deferredTimeout bounds how long a deferred ledger operation may run after
// the webhook response has already been sent.
const deferredTimeout = 60 * time.Second

// Sender delivers proactive messages. *twilio.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// Config holds the HTTP server settings.
type Config struct {
	// Addr is the listen address, e.g. ":3000".
	Addr string
	// PublicURL is the externally visible webhook URL, used for signature
	// validation. Leave empty to skip validation.
	PublicURL string
	// AuthToken is the Twilio auth token used to check X-Twilio-Signature.
	// Leave empty to skip validation.
	AuthToken string
}

// Server wires the dispatcher and the messaging gateway into an HTTP API.
type Server struct {
	dispatcher *bot.Dispatcher
	sender     Sender
	logger     *slog.Logger
	engine     *gin.Engine
	config     Config
}

// New creates the HTTP server. sender may be nil, in which case deferred
// replies are logged and dropped.
func New(config Config, dispatcher *bot.Dispatcher, sender Sender, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		config:     config,
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
		engine:     engine,
	}

	engine.POST("/webhook", s.handleWebhook)
	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("server listening", "addr", s.config.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleWebhook(c *gin.Context) {
	requestID := uuid.NewString()
	logger := s.logger.With("request_id", requestID)

	if s.config.AuthToken != "" && s.config.PublicURL != "" {
		if err := c.Request.ParseForm(); err != nil {
			c.String(http.StatusBadRequest, "bad form")
			return
		}
		signature := c.GetHeader("X-Twilio-Signature")
		if !twilio.ValidateSignature(s.config.AuthToken, s.config.PublicURL, c.Request.PostForm, signature) {
			logger.Warn("rejected webhook with bad signature")
			c.String(http.StatusForbidden, "invalid signature")
			return
		}
	}

	senderID, text, err := twilio.ParseWebhook(c.Request)
	if err != nil {
		logger.Warn("malformed webhook request", "error", err)
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	result := s.dispatcher.Dispatch(c.Request.Context(), senderID, text)
	messagesTotal.WithLabelValues(result.Command).Inc()
	logger.Info("dispatched message", "sender", senderID, "command", result.Command)

	if err := twilio.WriteTwiML(c.Writer, result.Reply); err != nil {
		logger.Error("failed to write twiml reply", "error", err)
		return
	}

	if result.Deferred == nil {
		return
	}

	// The real work happens after the inline reply so the webhook answers
	// within Twilio's deadline. The second message goes out through the
	// REST API; a failed send is logged, never retried.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), deferredTimeout)
		defer cancel()

		msg, deferredErr := result.Deferred(ctx)
		if deferredErr != nil {
			deferredErrors.Inc()
			logger.Error("deferred operation failed", "sender", senderID, "error", deferredErr)
			if msg == "" {
				msg = common.UserMessage(deferredErr, bot.MsgUpstreamError)
			}
		}
		if msg == "" {
			return
		}
		if s.sender == nil {
			logger.Warn("no sender configured, dropping deferred reply", "sender", senderID)
			return
		}
		if sendErr := s.sender.Send(ctx, senderID, msg); sendErr != nil {
			sendErrors.Inc()
			logger.Error("failed to send deferred reply", "sender", senderID, "error", sendErr)
		}
	}()
}
