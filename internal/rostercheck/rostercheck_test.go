package rostercheck_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/mergington/internal/adapters/http/api"
	service "github.com/okian/mergington/internal/app"
	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/internal/rostercheck"
	"github.com/okian/mergington/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newServer(deps api.Dependencies) *httptest.Server {
	mux := http.NewServeMux()
	svc := service.New()
	api.NewServer(deps, svc).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

// leakyDeps accepts every signup, duplicates included.
type leakyDeps struct {
	mu  sync.Mutex
	dir model.Directory
}

func (d *leakyDeps) List(context.Context) model.Directory {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dir.Clone()
}

func (d *leakyDeps) Enroll(_ context.Context, activity, email string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a := d.dir[activity]
	a.Participants = append(a.Participants, email)
	d.dir[activity] = a
	return "ok", nil
}

func (d *leakyDeps) Withdraw(context.Context, string, string) (string, error) {
	return "", errors.New("not supported")
}

func TestRun(t *testing.T) {
	Convey("Given a running activity server", t, func() {
		srv := newServer(service.New())
		defer srv.Close()

		cfg := &rostercheck.Config{
			BaseURL:  srv.URL,
			Students: 24,
			Racers:   4,
			Workers:  8,
			Timeout:  5 * time.Second,
			Cleanup:  true,
		}

		Convey("When racing signups for new students", func() {
			stats, err := rostercheck.Run(context.Background(), cfg)

			Convey("Then exactly one attempt per student wins and cleanup restores the rosters", func() {
				So(err, ShouldBeNil)
				So(stats.Attempts, ShouldEqual, 96)
				So(stats.Enrolled, ShouldEqual, 24)
				So(stats.Rejected, ShouldEqual, 72)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Unregistered, ShouldEqual, 24)
			})
		})
	})

	Convey("Given a server that lets duplicates through", t, func() {
		deps := &leakyDeps{dir: model.Directory{
			"Chess Club": {Description: "d", Schedule: "s", MaxParticipants: 10, Participants: []string{}},
		}}
		srv := newServer(deps)
		defer srv.Close()

		cfg := &rostercheck.Config{BaseURL: srv.URL, Students: 3, Racers: 2, Workers: 2, Timeout: 5 * time.Second}

		Convey("When the check runs", func() {
			_, err := rostercheck.Run(context.Background(), cfg)

			Convey("Then verification fails", func() {
				So(errors.Is(err, rostercheck.ErrVerification), ShouldBeTrue)
			})
		})
	})

	Convey("Given no server", t, func() {
		cfg := &rostercheck.Config{BaseURL: "http://127.0.0.1:1", Students: 1, Racers: 1, Workers: 1, Timeout: time.Second}

		Convey("Then the health check fails", func() {
			_, err := rostercheck.Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})
}
