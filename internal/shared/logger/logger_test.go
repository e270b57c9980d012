package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"pass-questions/internal/shared/contextkeys"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func captureJSON(t *testing.T, l Logger) (*LogrusLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	ll := l.(*LogrusLogger)
	ll.entry.Logger.SetOutput(&buf)
	return ll, &buf
}

func TestLoggerInterface_Contract(t *testing.T) {
	var _ Logger = NewLogger()
	var _ Logger = NewLoggerWithConfig("info", "json")
	var _ Logger = NewNopLogger()
}

func TestNewLogger_ReadsEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SERVICE_NAME", "pq-test")

	l := NewLogger().(*LogrusLogger)

	assert.Equal(t, logrus.WarnLevel, l.entry.Logger.GetLevel())
	_, isJSON := l.entry.Logger.Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)
	assert.Equal(t, "pq-test", l.entry.Data["service"])
}

func TestNewLoggerWithConfig_InvalidLevelFallsBackToInfo(t *testing.T) {
	l := NewLoggerWithConfig("nonsense", "text").(*LogrusLogger)
	assert.Equal(t, logrus.InfoLevel, l.entry.Logger.GetLevel())
}

func TestLogrusLogger_WithContext(t *testing.T) {
	l := NewLoggerWithConfig("debug", "text")

	ctx := context.WithValue(context.Background(), contextkeys.UserIDKey, "student-1")
	ctx = context.WithValue(ctx, contextkeys.UserRoleKey, "admin")
	ctx = context.WithValue(ctx, contextkeys.SessionIDKey, "tok")
	ctx = context.WithValue(ctx, contextkeys.RequestIDKey, "")

	withCtx := l.WithContext(ctx).(*LogrusLogger)

	assert.Equal(t, "student-1", withCtx.entry.Data["uid"])
	assert.Equal(t, "admin", withCtx.entry.Data["role"])
	assert.Equal(t, "tok", withCtx.entry.Data["session_id"])
	_, hasRequestID := withCtx.entry.Data["request_id"]
	assert.False(t, hasRequestID, "empty values are not attached")
}

func TestLogrusLogger_WithContextEmptyReturnsSameLogger(t *testing.T) {
	l := NewNopLogger()
	assert.Same(t, l, l.WithContext(context.Background()))
}

func TestLogrusLogger_WithFieldsAndComponent(t *testing.T) {
	l := NewLoggerWithConfig("info", "text")

	withFields := l.WithFields(map[string]interface{}{"exam_id": "x"}).(*LogrusLogger)
	assert.Equal(t, "x", withFields.entry.Data["exam_id"])

	withComponent := l.WithComponent("quiz").(*LogrusLogger)
	assert.Equal(t, "quiz", withComponent.entry.Data["component"])
}

func TestLogrusLogger_ZapFieldsBecomeStructured(t *testing.T) {
	// Arrange
	l, buf := captureJSON(t, NewLoggerWithConfig("info", "json"))

	// Act
	l.Info("exam uploaded", zap.String("exam_id", "BSc-100-1-CSC-1a2b3c4d"), zap.Int("pages", 4), zap.Error(errors.New("boom")))

	// Assert
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "exam uploaded", line["msg"])
	assert.Equal(t, "BSc-100-1-CSC-1a2b3c4d", line["exam_id"])
	assert.Equal(t, float64(4), line["pages"])
	assert.Equal(t, "boom", line["error"])
}

func TestLogrusLogger_LevelFiltersOutput(t *testing.T) {
	l, buf := captureJSON(t, NewLoggerWithConfig("warn", "json"))

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept", zap.String("uid", "student-1"))
	assert.Contains(t, buf.String(), `"uid":"student-1"`)
}
