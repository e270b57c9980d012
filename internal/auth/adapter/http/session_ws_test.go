package http_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	authhttp "pass-questions/internal/auth/adapter/http"
	"pass-questions/internal/auth/adapter/policy"
	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/testutil"
	"pass-questions/internal/shared/eventbus"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func startSessionSocketServer(t *testing.T, uc *testutil.MockAuthUsecase, hub *authhttp.SessionHub) string {
	t.Helper()
	cfg := testConfig()
	pol, err := policy.NewCELPolicy(cfg)
	require.NoError(t, err)
	mw := authhttp.NewAuthMiddleware(uc, pol, authhttp.NewCookieManager(cfg), nil)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(mw.Session())
	hub.RegisterRoutes(app.Group("/auth"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return fmt.Sprintf("ws://%s/auth/ws/session", ln.Addr().String())
}

func dialSession(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	header.Set("Cookie", "pq_session=tok")
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var hello authhttp.SessionMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, "connected", hello.Type)
	return conn
}

func TestSessionHub_PushesRevocation(t *testing.T) {
	// Arrange
	uc := &testutil.MockAuthUsecase{}
	session := &model.Session{UID: "uid-1", SessionID: "sid-1"}
	uc.On("ParseToken", mock.Anything, "tok").Return(session, nil)
	uc.On("ValidateSession", mock.Anything, session).Return(model.SessionCheck{Valid: true}, nil)

	hub := authhttp.NewSessionHub(nil)
	bus := eventbus.NewEventBus(nil)
	bus.Subscribe(eventbus.EventTypeSessionRevoked, hub.HandleEvent)

	url := startSessionSocketServer(t, uc, hub)
	conn := dialSession(t, url)
	require.Equal(t, 1, hub.Count("uid-1"))

	// Act
	require.NoError(t, bus.Publish(context.Background(), eventbus.NewEvent(eventbus.EventTypeSessionRevoked, "auth",
		model.Revocation{UID: "uid-1", SessionID: "sid-1", Reason: model.ReasonAnotherLogin})))

	// Assert
	var msg authhttp.SessionMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "session_revoked", msg.Type)
	assert.Equal(t, model.ReasonAnotherLogin, msg.Reason)
}

func TestSessionHub_OnlyMatchingSession(t *testing.T) {
	uc := &testutil.MockAuthUsecase{}
	session := &model.Session{UID: "uid-1", SessionID: "sid-new"}
	uc.On("ParseToken", mock.Anything, "tok").Return(session, nil)
	uc.On("ValidateSession", mock.Anything, session).Return(model.SessionCheck{Valid: true}, nil)

	hub := authhttp.NewSessionHub(nil)
	url := startSessionSocketServer(t, uc, hub)
	dialSession(t, url)

	assert.Equal(t, 0, hub.Notify(model.Revocation{UID: "uid-1", SessionID: "sid-old", Reason: model.ReasonAnotherLogin}))
	assert.Equal(t, 1, hub.Notify(model.Revocation{UID: "uid-1", Reason: model.ReasonLoggedOut}))
	assert.Equal(t, 0, hub.Notify(model.Revocation{UID: "uid-2"}))
}

func TestSessionHub_RejectsAnonymous(t *testing.T) {
	hub := authhttp.NewSessionHub(nil)
	url := startSessionSocketServer(t, &testutil.MockAuthUsecase{}, hub)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
