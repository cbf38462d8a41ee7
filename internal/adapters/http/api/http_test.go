package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/gridiron/internal/adapters/http/api"
	service "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/scenario"
	. "github.com/smartystreets/goconvey/convey"
)

func newMux(t *testing.T) (*http.ServeMux, *service.Service) {
	t.Helper()
	svc := service.New(service.WithWorkerCount(2))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	return mux, svc
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder, dst any) {
	So(json.Unmarshal(w.Body.Bytes(), dst), ShouldBeNil)
}

func TestHealthAndMetrics(t *testing.T) {
	Convey("Given the API server", t, func() {
		mux, svc := newMux(t)
		defer svc.Stop()

		Convey("When GET /healthz", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"ok"`)
		})

		Convey("When GET /metrics after a request", func() {
			do(mux, http.MethodGet, "/healthz", "")
			w := do(mux, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "gridiron_")
		})

		Convey("When GET /stats", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]any
			decode(w, &stats)
			So(stats["started"], ShouldEqual, true)
		})

		Convey("When the method does not match a route", func() {
			w := do(mux, http.MethodDelete, "/budget", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestValuationRoutes(t *testing.T) {
	Convey("Given the API server", t, func() {
		mux, svc := newMux(t)
		defer svc.Stop()

		Convey("When POST /valuations with persist", func() {
			w := do(mux, http.MethodPost, "/valuations", `{"persist":true}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var snap scenario.Snapshot
			decode(w, &snap)
			So(len(snap.Rows), ShouldEqual, 24)
			So(snap.Summary.TopPlayer, ShouldNotBeEmpty)

			Convey("Then GET /valuations returns the stored rows", func() {
				w := do(mux, http.MethodGet, "/valuations", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Rows  []model.SnapshotRecord `json:"rows"`
					Count int                    `json:"count"`
				}
				decode(w, &body)
				So(body.Count, ShouldEqual, 24)
			})
		})

		Convey("When POST /valuations names an unknown pool", func() {
			w := do(mux, http.MethodPost, "/valuations", `{"pool_id":"nope"}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(w.Body.String(), ShouldContainSubstring, `"not_found"`)
		})

		Convey("When POST /valuations has an unknown field", func() {
			w := do(mux, http.MethodPost, "/valuations", `{"pol":"x"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When POST /valuations/jobs is submitted twice", func() {
			w := do(mux, http.MethodPost, "/valuations/jobs", `{"request_id":"abc"}`)
			So(w.Code, ShouldEqual, http.StatusAccepted)
			var first service.JobStatus
			decode(w, &first)

			w = do(mux, http.MethodPost, "/valuations/jobs", `{"request_id":"abc"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			var second service.JobStatus
			decode(w, &second)
			So(second.ID, ShouldEqual, first.ID)
			So(second.Duplicate, ShouldBeTrue)

			Convey("Then GET /valuations/jobs/{id} eventually reports done", func() {
				deadline := time.Now().Add(5 * time.Second)
				var st service.JobStatus
				for time.Now().Before(deadline) {
					w := do(mux, http.MethodGet, "/valuations/jobs/"+first.ID, "")
					So(w.Code, ShouldEqual, http.StatusOK)
					decode(w, &st)
					if st.State == service.JobDone {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				So(st.State, ShouldEqual, service.JobDone)
			})
		})

		Convey("When POST /valuations/jobs lacks a request id", func() {
			w := do(mux, http.MethodPost, "/valuations/jobs", `{}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When GET /valuations/jobs/{id} is unknown", func() {
			w := do(mux, http.MethodGet, "/valuations/jobs/nope", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestScenarioRoutes(t *testing.T) {
	Convey("Given the API server", t, func() {
		mux, svc := newMux(t)
		defer svc.Stop()

		Convey("When a scenario is saved and run", func() {
			w := do(mux, http.MethodPost, "/scenarios",
				`{"name":"drop qb","mutations":[{"type":"REMOVE_PLAYER","player_id":"qb1"}]}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			var rec model.ScenarioRecord
			decode(w, &rec)
			So(rec.ID, ShouldNotBeEmpty)

			w = do(mux, http.MethodPost, "/scenarios/"+rec.ID+"/run", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var res scenario.Result
			decode(w, &res)
			So(res.ScenarioID, ShouldEqual, rec.ID)
			So(res.Scenario.Summary.TotalPlayers, ShouldEqual, 23)
		})

		Convey("When a scenario is previewed with a pool override", func() {
			w := do(mux, http.MethodPost, "/scenarios/preview",
				`{"mutations":[],"pool":{"id":"tmp","pool_amount":1000000,"reserved_amount":0}}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			var res scenario.Result
			decode(w, &res)
			So(res.Scenario.Summary.Allocatable, ShouldEqual, 1_000_000)
			So(res.Baseline.Summary.Allocatable, ShouldEqual, 4_750_000)
		})

		Convey("When a mutation is malformed", func() {
			w := do(mux, http.MethodPost, "/scenarios/preview", `{"mutations":[{"type":"NOPE"}]}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a scenario has no name", func() {
			w := do(mux, http.MethodPost, "/scenarios", `{"mutations":[]}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When running an unknown scenario", func() {
			w := do(mux, http.MethodPost, "/scenarios/missing/run", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPlanningRoutes(t *testing.T) {
	Convey("Given the API server", t, func() {
		mux, svc := newMux(t)
		defer svc.Stop()

		Convey("When GET /budget", func() {
			w := do(mux, http.MethodGet, "/budget", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"guardrail"`)
		})

		Convey("When GET /forecast with the default horizon", func() {
			w := do(mux, http.MethodGet, "/forecast", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body struct {
				Years []json.RawMessage `json:"years"`
			}
			decode(w, &body)
			So(len(body.Years), ShouldEqual, 3)
		})

		Convey("When GET /forecast is out of range", func() {
			So(do(mux, http.MethodGet, "/forecast?years=9", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/forecast?years=x", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When GET /replacement for the OL group", func() {
			w := do(mux, http.MethodGet, "/replacement?group=OL", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var p model.RosterPlayer
			decode(w, &p)
			So(p.ID, ShouldEqual, "ol4")
		})

		Convey("When GET /replacement for a group with no candidates", func() {
			w := do(mux, http.MethodGet, "/replacement?group=XX", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When POST /what-if", func() {
			w := do(mux, http.MethodPost, "/what-if", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"verdict"`)
		})
	})
}

func TestErrorMapping(t *testing.T) {
	Convey("Given a service that is not started", t, func() {
		svc := service.New()
		mux := http.NewServeMux()
		api.NewServer(svc).Register(context.Background(), mux)

		Convey("Then requests are reported unavailable", func() {
			w := do(mux, http.MethodGet, "/budget", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(w.Body.String(), ShouldContainSubstring, `"unavailable"`)
		})
	})
}
