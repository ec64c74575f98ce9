package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestInitLogger(t *testing.T) {
	previous := GetLogger()
	t.Cleanup(func() { SetLogger(previous) })

	require.NoError(t, InitLogger(&LogConfig{Level: "warn", Environment: "production", ServiceName: "test"}))
	assert.False(t, GetLogger().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, GetLogger().Core().Enabled(zapcore.WarnLevel))
}

func TestAttachAndMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	previous := GetLogger()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(previous) })

	e := echo.New()
	e.Use(Middleware())
	e.GET("/ping", func(c echo.Context) error {
		Attach(c, GetLogger().With(zap.String("request_id", "abc")))
		// services only see the request context
		FromStdContext(c.Request().Context()).Info("from service")
		return c.NoContent(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "from service", entries[0].Message)
	assert.Equal(t, "abc", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "HTTP Request", entries[1].Message)
	assert.Equal(t, "abc", entries[1].ContextMap()["request_id"])
	assert.Equal(t, int64(http.StatusNoContent), entries[1].ContextMap()["status"])
}

func TestFromStdContextFallsBack(t *testing.T) {
	assert.Equal(t, GetLogger(), FromStdContext(context.Background()))
}
