package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/mergington/internal/adapters/mq/sink"
	"github.com/okian/mergington/internal/config"
	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/internal/domain/seed"
	"github.com/okian/mergington/pkg/logger"
	"github.com/okian/mergington/pkg/metrics"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestNewSink(t *testing.T) {
	convey.Convey("Given configuration without brokers", t, func() {
		cfg := config.New()

		convey.Convey("Then roster changes go to the log", func() {
			snk, err := newSink(cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			convey.So(snk, convey.ShouldHaveSameTypeAs, &sink.LogSink{})
		})
	})

	convey.Convey("Given configuration with brokers", t, func() {
		cfg := config.New()
		cfg.KafkaBrokers = "localhost:9092"

		convey.Convey("Then roster changes go to kafka", func() {
			snk, err := newSink(cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			ks, ok := snk.(*sink.KafkaSink)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(ks.Close(), convey.ShouldBeNil)
		})

		convey.Convey("And a blank topic is refused", func() {
			cfg.KafkaTopic = ""
			_, err := newSink(cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

type closingSink struct {
	closed int
	err    error
}

func (*closingSink) Deliver(context.Context, model.RosterChange) error { return nil }

func (s *closingSink) Close() error {
	s.closed++
	return s.err
}

func TestCloseSink(t *testing.T) {
	convey.Convey("Given a sink that holds a connection", t, func() {
		ctx := context.Background()
		snk := &closingSink{}

		convey.Convey("When the service stops", func() {
			svc, err := newService(ctx, config.New(), snk, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			svc.Stop()

			convey.Convey("Then the sink stays open until closeSink runs", func() {
				convey.So(snk.closed, convey.ShouldEqual, 0)
				closeSink(ctx, snk, logger.Get())
				convey.So(snk.closed, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When closing fails", func() {
			snk.err = errors.New("broker gone")

			convey.Convey("Then the error is logged, not raised", func() {
				convey.So(func() { closeSink(ctx, snk, logger.Get()) }, convey.ShouldNotPanic)
				convey.So(snk.closed, convey.ShouldEqual, 1)
			})
		})
	})

	convey.Convey("Given the log sink", t, func() {
		convey.Convey("Then there is nothing to close", func() {
			convey.So(func() { closeSink(context.Background(), sink.NewLogSink(logger.Get()), logger.Get()) }, convey.ShouldNotPanic)
		})
	})
}

func TestNewService(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("Then the service holds the built-in activities", func() {
			svc, err := newService(ctx, cfg, sink.NewLogSink(logger.Get()), logger.Get())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.List(ctx), convey.ShouldHaveLength, len(seed.Default()))
		})
	})

	convey.Convey("Given a seed file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "activities.yaml")
		err := os.WriteFile(path, []byte(`
activities:
  Robotics Club:
    description: Build and program robots
    schedule: Thursdays, 3:30 PM - 5:00 PM
    max_participants: 8
    participants: [ada@mergington.edu]
`), 0o600)
		convey.So(err, convey.ShouldBeNil)

		cfg := config.New()
		cfg.SeedFile = path

		convey.Convey("Then the service holds only the seeded activities", func() {
			svc, err := newService(ctx, cfg, sink.NewLogSink(logger.Get()), logger.Get())
			convey.So(err, convey.ShouldBeNil)
			dir := svc.List(ctx)
			convey.So(dir, convey.ShouldHaveLength, 1)
			convey.So(dir["Robotics Club"].Participants, convey.ShouldResemble, []string{"ada@mergington.edu"})
		})

		convey.Convey("And a missing seed file fails startup", func() {
			cfg.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")
			svc, err := newService(ctx, cfg, sink.NewLogSink(logger.Get()), logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(svc, convey.ShouldBeNil)
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given the assembled handler", t, func() {
		ctx := context.Background()
		svc, err := newService(ctx, config.New(), sink.NewLogSink(logger.Get()), logger.Get())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newHandler(ctx, svc))
		defer srv.Close()

		client := srv.Client()
		client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

		send := func(method, path string) *http.Response {
			req, err := http.NewRequestWithContext(ctx, method, srv.URL+path, http.NoBody)
			convey.So(err, convey.ShouldBeNil)
			resp, err := client.Do(req)
			convey.So(err, convey.ShouldBeNil)
			return resp
		}

		convey.Convey("Then a signup round trip works over the wire", func() {
			resp := send(http.MethodPost, "/activities/Chess%20Club/signup?email=emma@mergington.edu")
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			var body map[string]string
			convey.So(json.NewDecoder(resp.Body).Decode(&body), convey.ShouldBeNil)
			convey.So(body["message"], convey.ShouldEqual, "Signed up emma@mergington.edu for Chess Club")
		})

		convey.Convey("And root redirects to the signup page", func() {
			resp := send(http.MethodGet, "/")
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusTemporaryRedirect)
			convey.So(resp.Header.Get("Location"), convey.ShouldEqual, "/static/")
		})

		convey.Convey("And docs, stats and metrics are served", func() {
			for _, path := range []string{"/api-docs", "/openapi.yaml", "/stats", "/healthz", "/static/"} {
				resp := send(http.MethodGet, path)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			}
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		svc, err := newService(context.Background(), config.New(), sink.NewLogSink(logger.Get()), logger.Get())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then one-off updates do not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(context.Background(), svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("And the loops return when the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("And a separate manager can use its own registry", func() {
			manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
			convey.So(manager.Enabled(), convey.ShouldBeTrue)
		})
	})
}
