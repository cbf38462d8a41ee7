package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	app "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/config"
	"github.com/okian/gridiron/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewMux(t *testing.T) {
	convey.Convey("Given a started service and the default config", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.WorkerCount = 1

		svc, err := app.FromConfig(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(ctx, cfg, svc)

		convey.Convey("Then the API routes are mounted", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/budget", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then the OpenAPI document is served", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then the MCP endpoint accepts an initialize request", func() {
			body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"t","version":"0"}}}`
			req := httptest.NewRequest(http.MethodPost, cfg.MCPPath, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Accept", "application/json, text/event-stream")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "gridiron")
		})

		convey.Convey("When MCP is disabled", func() {
			cfg.MCPEnabled = false
			mux := newMux(ctx, cfg, svc)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mcp", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metric updaters", t, func() {
		svc := app.New(app.WithWorkerCount(1))
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
		convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		convey.So(metrics.GetRegistry(), convey.ShouldNotBeNil)
	})
}
