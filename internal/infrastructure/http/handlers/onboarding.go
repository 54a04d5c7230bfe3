package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/alchemorsel/nutriplan/internal/ports/inbound"
	apperrors "github.com/alchemorsel/nutriplan/pkg/errors"
)

const (
	maxFrameBytes = 4096
	socketIdle    = 10 * time.Minute
	writeWait     = 10 * time.Second
)

// SessionMetrics counts onboarding sessions and open sockets
type SessionMetrics interface {
	SessionStarted()
	SocketOpened()
	SocketClosed()
}

type nopSessionMetrics struct{}

func (nopSessionMetrics) SessionStarted() {}
func (nopSessionMetrics) SocketOpened()   {}
func (nopSessionMetrics) SocketClosed()   {}

// OnboardingHandler serves the onboarding chat over REST and a websocket
type OnboardingHandler struct {
	service  inbound.OnboardingService
	metrics  SessionMetrics
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewOnboardingHandler creates an onboarding handler. An empty origin list
// accepts any origin.
func NewOnboardingHandler(service inbound.OnboardingService, metrics SessionMetrics, allowedOrigins []string, logger *zap.Logger) *OnboardingHandler {
	if metrics == nil {
		metrics = nopSessionMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OnboardingHandler{
		service: service,
		metrics: metrics,
		logger:  logger.Named("onboarding-http"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// Register mounts the REST routes
func (h *OnboardingHandler) Register(r gin.IRouter) {
	r.POST("/onboarding/sessions", h.StartSession)
	r.POST("/onboarding/sessions/:id/messages", h.SendMessage)
}

// RegisterSocket mounts the websocket route. It must sit outside any
// request timeout.
func (h *OnboardingHandler) RegisterSocket(r gin.IRouter) {
	r.GET("/onboarding/ws", h.Socket)
}

// StartSession handles POST /api/v1/onboarding/sessions
func (h *OnboardingHandler) StartSession(c *gin.Context) {
	reply, err := h.service.StartSession(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.metrics.SessionStarted()

	c.JSON(http.StatusCreated, newOnboardingResponse(reply))
}

// SendMessage handles POST /api/v1/onboarding/sessions/:id/messages
func (h *OnboardingHandler) SendMessage(c *gin.Context) {
	var req MessageRequest
	if !bindJSON(c, &req) {
		return
	}

	reply, err := h.service.SendMessage(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, newOnboardingResponse(reply))
}

// Socket handles GET /api/v1/onboarding/ws. The connection owns one session:
// the greeting is sent on connect, then every text frame is one message and
// every reply is a JSON frame. Failures are sent as error frames and keep the
// socket open.
func (h *OnboardingHandler) Socket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.metrics.SocketOpened()
	defer h.metrics.SocketClosed()

	requestID := c.GetString("request_id")
	ctx := c.Request.Context()

	reply, err := h.service.StartSession(ctx)
	if err != nil {
		h.writeError(conn, err, requestID)
		return
	}
	h.metrics.SessionStarted()
	if err := h.write(conn, newOnboardingResponse(reply)); err != nil {
		return
	}

	sessionID := reply.SessionID
	log := h.logger.With(zap.String("session_id", sessionID))
	log.Debug("Onboarding socket opened")

	conn.SetReadLimit(maxFrameBytes)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(socketIdle))
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Info("Onboarding socket closed", zap.Error(err))
			}
			return
		}
		if kind != websocket.TextMessage {
			h.writeError(conn, apperrors.NewValidationError("only text frames are accepted"), requestID)
			continue
		}

		text := strings.TrimSpace(string(data))
		if text == "" {
			h.writeError(conn, apperrors.NewValidationError("message must not be empty"), requestID)
			continue
		}

		reply, err := h.service.SendMessage(ctx, sessionID, text)
		if err != nil {
			log.Warn("Onboarding message failed", zap.Error(err))
			if h.writeError(conn, err, requestID) != nil {
				return
			}
			continue
		}
		if err := h.write(conn, newOnboardingResponse(reply)); err != nil {
			return
		}
	}
}

func (h *OnboardingHandler) write(conn *websocket.Conn, v interface{}) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(v); err != nil {
		h.logger.Debug("WebSocket write failed", zap.Error(err))
		return err
	}
	return nil
}

func (h *OnboardingHandler) writeError(conn *websocket.Conn, err error, requestID string) error {
	appErr := apperrors.Wrap(err, "onboarding failed")
	return h.write(conn, apperrors.ToErrorResponse(appErr, requestID))
}
