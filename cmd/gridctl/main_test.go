package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/gridiron/internal/adapters/csvio"
	"github.com/okian/gridiron/internal/domain/forecast"
	"github.com/okian/gridiron/internal/domain/scenario"
	"github.com/smartystreets/goconvey/convey"
)

// execute runs gridctl with args and returns what it wrote to stdout.
func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestGridctl(t *testing.T) {
	convey.Convey("Given gridctl against the seeded memory store", t, func() {
		dir := t.TempDir()
		t.Setenv("GRIDIRON_ENV_FILE", filepath.Join(dir, "missing.env"))
		t.Setenv("GRIDIRON_LOG_LEVEL", "error")

		convey.Convey("When computing a valuation", func() {
			out, err := execute("value", "--driver", "memory")
			convey.So(err, convey.ShouldBeNil)

			var snap scenario.Snapshot
			convey.So(json.Unmarshal([]byte(out), &snap), convey.ShouldBeNil)
			convey.So(snap.Rows, convey.ShouldHaveLength, 24)
			convey.So(snap.Summary.Allocatable, convey.ShouldEqual, 4_750_000)
		})

		convey.Convey("When forecasting within the horizon", func() {
			out, err := execute("forecast", "--driver", "memory", "--years", "2")
			convey.So(err, convey.ShouldBeNil)

			var years []forecast.Year
			convey.So(json.Unmarshal([]byte(out), &years), convey.ShouldBeNil)
			convey.So(years, convey.ShouldHaveLength, 2)
		})

		convey.Convey("When forecasting past the horizon", func() {
			_, err := execute("forecast", "--driver", "memory", "--years", "9")
			convey.So(errors.Is(err, forecast.ErrInvalidYear), convey.ShouldBeTrue)
		})

		convey.Convey("When running a scenario file", func() {
			path := writeFile(t, dir, "scn.json",
				`{"name":"drop qb","mutations":[{"type":"REMOVE_PLAYER","player_id":"qb1"}]}`)
			out, err := execute("scenario", "run", "--driver", "memory", "--file", path)
			convey.So(err, convey.ShouldBeNil)

			var res scenario.Result
			convey.So(json.Unmarshal([]byte(out), &res), convey.ShouldBeNil)
			convey.So(res.Name, convey.ShouldEqual, "drop qb")
			convey.So(res.Scenario.Summary.TotalPlayers, convey.ShouldEqual, 23)
		})

		convey.Convey("When running a scenario without input", func() {
			_, err := execute("scenario", "run", "--driver", "memory")
			convey.So(errors.Is(err, errNoInput), convey.ShouldBeTrue)
		})

		convey.Convey("When exporting with an unknown format", func() {
			_, err := execute("export", "players", "--driver", "memory")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestGridctlSQLite(t *testing.T) {
	convey.Convey("Given gridctl against a sqlite file", t, func() {
		dir := t.TempDir()
		t.Setenv("GRIDIRON_ENV_FILE", filepath.Join(dir, "missing.env"))
		t.Setenv("GRIDIRON_LOG_LEVEL", "error")
		dsn := filepath.Join(dir, "gridiron.db")
		db := []string{"--driver", "sqlite", "--dsn", dsn}

		roster := writeFile(t, dir, "roster.csv", strings.Join(csvio.RosterHeader, ",")+"\n"+
			"Kyle,Ng,ST,K,SO,70,180,active,ROTATION,1,LOW,K9\n")
		usage := writeFile(t, dir, "usage.csv", strings.Join(csvio.UsageHeader, ",")+"\n"+
			"K9,12,300,0,0,300,40,71\n"+
			"NOPE,1,1,1,0,0,0,50\n")

		convey.Convey("When importing a roster then its usage", func() {
			out, err := execute(append([]string{"import", "roster", "--file", roster}, db...)...)
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, `"players": 1`)

			out, err = execute(append([]string{"import", "usage", "--file", usage}, db...)...)
			convey.So(err, convey.ShouldBeNil)

			var sum importSummary
			convey.So(json.Unmarshal([]byte(out), &sum), convey.ShouldBeNil)
			convey.So(sum.Usage, convey.ShouldEqual, 1)
			convey.So(sum.Warnings, convey.ShouldHaveLength, 1)

			convey.Convey("Then the player is exported and valued", func() {
				out, err := execute(append([]string{"export", "roster"}, db...)...)
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "K9")

				out, err = execute(append([]string{"value"}, db...)...)
				convey.So(err, convey.ShouldBeNil)
				var snap scenario.Snapshot
				convey.So(json.Unmarshal([]byte(out), &snap), convey.ShouldBeNil)
				convey.So(snap.Rows, convey.ShouldHaveLength, 25)
			})
		})

		convey.Convey("When saving then running a scenario by id", func() {
			path := writeFile(t, dir, "scn.json",
				`{"name":"drop qb","mutations":[{"type":"REMOVE_PLAYER","player_id":"qb1"}]}`)
			out, err := execute(append([]string{"scenario", "save", "--file", path}, db...)...)
			convey.So(err, convey.ShouldBeNil)

			var rec struct {
				ID string `json:"id"`
			}
			convey.So(json.Unmarshal([]byte(out), &rec), convey.ShouldBeNil)
			convey.So(rec.ID, convey.ShouldNotBeEmpty)

			out, err = execute(append([]string{"scenario", "run", "--id", rec.ID}, db...)...)
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, `"REMOVED"`)
		})
	})
}
