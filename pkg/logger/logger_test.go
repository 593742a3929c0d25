package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"supplier-kpi-service/pkg/config"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func TestGetLoggerBeforeInit(t *testing.T) {
	if GetLogger() == nil {
		t.Fatal("GetLogger must never return nil")
	}
}

func TestInitLogger(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		cfg := &config.Config{
			Server: config.ServerConfig{Env: env, Port: "8085"},
			DB:     config.DBConfig{Driver: config.DriverSQLite, Path: "x.db"},
			Log:    config.LogConfig{Level: "debug"},
		}
		if err := InitLogger(cfg); err != nil {
			t.Fatalf("InitLogger(%s) failed: %v", env, err)
		}
		if GetLogger() != zap.L() {
			t.Errorf("InitLogger(%s) did not replace the global logger", env)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	l := zap.NewNop()
	ctx := WithLogger(context.Background(), l)
	if Ctx(ctx) != l {
		t.Error("Ctx did not return stored logger")
	}
	if Ctx(context.Background()) == nil {
		t.Error("Ctx fallback must not be nil")
	}
}

func TestEchoContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	if FromContext(c) == nil {
		t.Fatal("FromContext fallback must not be nil")
	}

	l := zap.NewNop()
	SetEcho(c, l)
	if FromContext(c) != l {
		t.Error("FromContext did not return the echo logger")
	}
	if Ctx(c.Request().Context()) != l {
		t.Error("SetEcho did not propagate the logger to the request context")
	}
}
