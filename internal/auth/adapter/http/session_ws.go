package http

import (
	"context"
	"sync"
	"time"

	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/shared/eventbus"
	"pass-questions/internal/shared/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionMessage is pushed to a browser tab whose session was revoked.
type SessionMessage struct {
	Type    string `json:"type"`
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

type sessionConn struct {
	id        string
	sessionID string
	conn      *websocket.Conn
	mu        sync.Mutex
}

func (sc *sessionConn) send(msg SessionMessage) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	_ = sc.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return sc.conn.WriteJSON(msg)
}

// SessionHub tracks open session sockets per user and tells them when their
// session stops being the active one.
type SessionHub struct {
	mu    sync.RWMutex
	conns map[string]map[string]*sessionConn
	log   logger.Logger
}

func NewSessionHub(log logger.Logger) *SessionHub {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &SessionHub{
		conns: make(map[string]map[string]*sessionConn),
		log:   log.WithComponent("session-hub"),
	}
}

// HandleEvent is the eventbus handler for session.revoked.
func (h *SessionHub) HandleEvent(ctx context.Context, event eventbus.Event) error {
	rev, ok := event.Data().(model.Revocation)
	if !ok {
		return nil
	}
	h.Notify(rev)
	return nil
}

// Notify sends the revocation to every socket of rev.UID bound to
// rev.SessionID, or to all of the user's sockets when SessionID is empty.
func (h *SessionHub) Notify(rev model.Revocation) int {
	h.mu.RLock()
	targets := make([]*sessionConn, 0)
	for _, sc := range h.conns[rev.UID] {
		if rev.SessionID == "" || sc.sessionID == rev.SessionID {
			targets = append(targets, sc)
		}
	}
	h.mu.RUnlock()

	msg := SessionMessage{Type: "session_revoked", Reason: rev.Reason, Message: revocationMessage(rev.Reason)}
	for _, sc := range targets {
		if err := sc.send(msg); err != nil {
			h.log.Debug("Session socket write failed", zap.String("uid", rev.UID), zap.Error(err))
		}
	}
	return len(targets)
}

// Count returns the number of open sockets for uid.
func (h *SessionHub) Count(uid string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[uid])
}

func (h *SessionHub) add(uid string, sc *sessionConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[uid] == nil {
		h.conns[uid] = make(map[string]*sessionConn)
	}
	h.conns[uid][sc.id] = sc
}

func (h *SessionHub) remove(uid, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns[uid], id)
	if len(h.conns[uid]) == 0 {
		delete(h.conns, uid)
	}
}

// RegisterRoutes mounts GET /ws/session on router. The session middleware
// must already have run.
func (h *SessionHub) RegisterRoutes(router fiber.Router) {
	router.Use("/ws/session", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		session := CurrentSession(c)
		if session == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}
		c.Locals("uid", session.UID)
		c.Locals("sid", session.SessionID)
		return c.Next()
	})
	router.Get("/ws/session", websocket.New(h.serve))
}

func (h *SessionHub) serve(conn *websocket.Conn) {
	uid, _ := conn.Locals("uid").(string)
	sid, _ := conn.Locals("sid").(string)
	sc := &sessionConn{id: uuid.NewString(), sessionID: sid, conn: conn}

	h.add(uid, sc)
	defer h.remove(uid, sc.id)

	if err := sc.send(SessionMessage{Type: "connected", Reason: "", Message: "Session active"}); err != nil {
		return
	}

	for {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("Session socket closed", zap.String("uid", uid), zap.Error(err))
			}
			return
		}
	}
}

func revocationMessage(reason string) string {
	switch reason {
	case model.ReasonAnotherLogin:
		return "You have been signed in on another device"
	case model.ReasonExpired:
		return "Your session has expired"
	case model.ReasonLoggedOut:
		return "You have been signed out"
	}
	return "Your session is no longer valid"
}
