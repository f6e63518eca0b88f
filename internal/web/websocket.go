// ===== internal/web/websocket.go =====
package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wifigaze/internal/logging"
)

const closeGracePeriod = time.Second

// wsSubscriber delivers hub messages over one websocket connection
type wsSubscriber struct {
	id          string
	conn        *websocket.Conn
	sendTimeout time.Duration
	closeOnce   sync.Once
	closeErr    error
}

func newWSSubscriber(conn *websocket.Conn, sendTimeout time.Duration) *wsSubscriber {
	return &wsSubscriber{
		id:          uuid.NewString(),
		conn:        conn,
		sendTimeout: sendTimeout,
	}
}

func (s *wsSubscriber) ID() string {
	return s.id
}

// Send writes one text message, bounded by the send timeout
func (s *wsSubscriber) Send(msg string) error {
	if s.sendTimeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.sendTimeout)); err != nil {
			return err
		}
	}
	return s.conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

// Close sends a close frame and drops the connection
func (s *wsSubscriber) Close() error {
	s.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

// handleWebSocket registers the connection with the hub and reads until the
// peer goes away. Inbound messages are ignored.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}

	sub := newWSSubscriber(conn, s.cfg.SendTimeout)
	log := s.logger.With(zap.String("subscriber", sub.ID()), zap.String("remote", r.RemoteAddr))

	if err := s.hub.Register(sub); err != nil {
		log.Warn("subscriber rejected", zap.Error(err))
		sub.Close()
		return
	}
	defer s.hub.Unregister(sub)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("subscriber connection lost", zap.Error(err))
			}
			return
		}
		logging.Trace(log, "ignoring subscriber message", zap.Int("bytes", len(msg)))
	}
}
