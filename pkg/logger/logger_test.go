package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given a logger writing text to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf)), ShouldBeNil)
		defer func() { _ = Init() }()

		Convey("When logging with fields", func() {
			Get().Info(context.Background(), "valuation computed", String("pool_id", "pool-2026"), Int("players", 24))

			Convey("Then the record carries the fields and the caller", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "valuation computed")
				So(out, ShouldContainSubstring, "pool_id=pool-2026")
				So(out, ShouldContainSubstring, "players=24")
				So(out, ShouldContainSubstring, "logger_test.go:")
			})
		})

		Convey("When the level filters a record", func() {
			Get().Debug(context.Background(), "hidden")
			So(buf.String(), ShouldNotContainSubstring, "hidden")

			So(SetLevelString("debug"), ShouldBeNil)
			Get().Debug(context.Background(), "shown")
			So(buf.String(), ShouldContainSubstring, "shown")
		})

		Convey("When the level string is unknown", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a JSON logger", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf), WithFormat("JSON")), ShouldBeNil)
		defer func() { _ = Init() }()

		Named("worker").Warn(context.Background(), "recompute failed",
			Error(errors.New("store down")),
			Bool("retry", true),
			Duration("took", 2*time.Millisecond),
			Float64("share", 0.15),
			Any("ids", []string{"a"}),
		)

		Convey("Then each line is a JSON record with the component", func() {
			var rec map[string]any
			So(json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &rec), ShouldBeNil)
			So(rec["msg"], ShouldEqual, "recompute failed")
			So(rec["component"], ShouldEqual, "worker")
			So(rec["error"], ShouldEqual, "store down")
			So(rec["retry"], ShouldEqual, true)
		})
	})
}

func TestLoggerGetWithoutInit(t *testing.T) {
	Convey("Given no explicit Init", t, func() {
		mu.Lock()
		global = nil
		mu.Unlock()

		So(Get(), ShouldNotBeNil)
		So(Sync(), ShouldBeNil)
	})
}
