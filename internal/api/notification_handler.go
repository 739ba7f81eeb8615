package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// Notification channel topics.
const (
	TopicUpdates = "updates"
	TopicNotify  = "notify"
)

// Client frame actions.
const (
	ActionSubscribe = "subscribe"
	ActionPublish   = "publish"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// ClientFrame is a message sent by a websocket client.
type ClientFrame struct {
	Action  string `json:"action"`
	Topic   string `json:"topic"`
	Message string `json:"message,omitempty"`
}

// ServerFrame is a message pushed to subscribed clients.
type ServerFrame struct {
	Message string `json:"message"`
}

// NotificationHandler upgrades connections to websockets and bridges them to
// the notification hub. The channel is a public broadcast: any client may
// subscribe to updates or publish a notice.
type NotificationHandler struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewNotificationHandler creates a NotificationHandler on hub.
func NewNotificationHandler(hub *events.Hub, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger.With("component", "notification_handler"),
	}
}

// ServeWS handles GET /ws.
func (h *NotificationHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("websocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	connID := uuid.NewString()
	log := logger.FromContextOrDefault(r.Context(), h.logger).With(slog.String("connection_id", connID))
	log.Info("notification subscriber connected", slog.String("remote_addr", r.RemoteAddr))

	// The reader must not inherit the request context's cancellation once the
	// handler has hijacked the connection.
	ctx := logger.WithLogger(context.WithoutCancel(r.Context()), log)

	subscribeReq := make(chan struct{}, 1)
	done := make(chan struct{})
	go h.readLoop(ctx, conn, subscribeReq, done, log)

	h.writeLoop(conn, subscribeReq, done, log)

	_ = conn.Close()
	<-done
	log.Info("notification subscriber disconnected")
}

// readLoop consumes client frames until the connection fails. It closes done
// on return.
func (h *NotificationHandler) readLoop(
	ctx context.Context,
	conn *websocket.Conn,
	subscribeReq chan<- struct{},
	done chan<- struct{},
	log *slog.Logger,
) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame ClientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("notification connection read failed", slog.String("error", err.Error()))
			}
			if isTerminalReadError(err) {
				return
			}
			// A malformed frame is skipped.
			log.Debug("ignoring malformed client frame", slog.String("error", err.Error()))
			continue
		}

		switch {
		case frame.Action == ActionSubscribe && frame.Topic == TopicUpdates:
			select {
			case subscribeReq <- struct{}{}:
			default:
			}
		case frame.Action == ActionPublish && frame.Topic == TopicNotify:
			h.hub.Publish(ctx, events.ClientNotice(frame.Message))
		default:
			log.Debug("ignoring client frame",
				slog.String("action", frame.Action),
				slog.String("topic", frame.Topic))
		}
	}
}

// writeLoop owns every write to conn and the connection's subscription.
func (h *NotificationHandler) writeLoop(
	conn *websocket.Conn,
	subscribeReq <-chan struct{},
	done <-chan struct{},
	log *slog.Logger,
) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	var (
		sub  *events.Subscription
		recv <-chan events.Notification
	)
	defer func() {
		if sub != nil {
			sub.Close()
		}
	}()

	for {
		select {
		case <-done:
			return

		case <-subscribeReq:
			if sub != nil {
				continue
			}
			sub = h.hub.Subscribe()
			recv = sub.C()
			log.Info("notification subscriber joined topic", slog.String("topic", TopicUpdates))

		case n, ok := <-recv:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ServerFrame{Message: n.Message}); err != nil {
				log.Warn("notification write failed", slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("notification ping failed", slog.String("error", err.Error()))
				return
			}
		}
	}
}

// isTerminalReadError reports whether err ends the connection. A frame that
// is not valid JSON leaves the connection usable. ReadJSON reports an empty or
// truncated frame as io.ErrUnexpectedEOF after the whole message is consumed;
// a broken connection surfaces on the next read instead.
func isTerminalReadError(err error) bool {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr):
		return false
	}
	return true
}
