// Package ws pushes chat threads to the browser over a websocket.
package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"confernet/internal/delivery/http/helpers"
	"confernet/internal/delivery/http/middleware"
	"confernet/internal/domain"
	"confernet/internal/poller"
)

const writeWait = 10 * time.Second

// ThreadHandler polls the chat history with one partner and writes it to the socket whenever it
// changes. The browser falls back to polling the JSON endpoint when the upgrade fails.
type ThreadHandler struct {
	Logger   *slog.Logger
	Service  domain.MessageService
	Interval time.Duration

	upgrader websocket.Upgrader
}

func NewThreadHandler(logger *slog.Logger, svc domain.MessageService, interval time.Duration, allowedOrigins []string) *ThreadHandler {
	h := &ThreadHandler{Logger: logger, Service: svc, Interval: interval}
	h.upgrader = websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)}
	return h
}

// originChecker accepts same-host requests and the configured CORS origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if slices.Contains(allowed, "*") || slices.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

func (h *ThreadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	partnerID := r.PathValue("partnerID")
	if partnerID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing partnerID")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The browser never sends anything; reading only notices the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
					h.Logger.WarnContext(ctx, "websocket read failed", "user_id", userID, "err", err)
				}
				return
			}
		}
	}()

	var last []byte
	fetch := func(ctx context.Context) ([]*domain.Message, error) {
		return h.Service.History(ctx, userID, partnerID)
	}
	deliver := func(msgs []*domain.Message) {
		if msgs == nil {
			msgs = []*domain.Message{}
		}
		b, err := json.Marshal(msgs)
		if err != nil {
			h.Logger.ErrorContext(ctx, "encode thread failed", "err", err)
			return
		}
		if bytes.Equal(b, last) {
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			h.Logger.WarnContext(ctx, "websocket write failed", "user_id", userID, "err", err)
			cancel()
			return
		}
		last = b
	}

	h.Logger.DebugContext(ctx, "thread stream opened", "user_id", userID, "partner_id", partnerID)
	poller.New("thread", h.Interval, fetch, deliver, h.Logger).Run(ctx)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
}
