package session_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/internal/domain/session"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func params() model.Parameters {
	return model.Parameters{Location: "Poland", MinMatch: 70, MaxAgeDays: 14, IncludeRemote: true, ScraperMode: model.ModeBasic}
}

func TestSessionLifecycle(t *testing.T) {
	Convey("Given a new session", t, func() {
		s := session.New(params(), now)

		Convey("Then it is pending with a UUID and empty results", func() {
			So(s.Status, ShouldEqual, session.StatusPending)
			_, err := uuid.Parse(s.ID)
			So(err, ShouldBeNil)
			So(s.Results, ShouldNotBeNil)
			So(s.Status.Terminal(), ShouldBeFalse)
		})

		Convey("When it runs to completion", func() {
			So(s.Start(now), ShouldBeNil)
			So(s.Plan(3), ShouldBeNil)
			So(s.RecordTask("linkedin", 4, nil), ShouldBeNil)
			So(s.RecordTask("linkedin", 0, []model.Diagnostic{{Source: "linkedin", Strategy: "guest-api", Reason: "timeout"}}), ShouldBeNil)
			So(s.RecordTask("pracuj", 0, nil), ShouldBeNil)
			results := []model.ScoredPosting{{MatchScore: 88}}
			So(s.Complete(results, false, now.Add(time.Minute)), ShouldBeNil)

			Convey("Then counts, progress and results are frozen", func() {
				So(s.Status, ShouldEqual, session.StatusCompleted)
				So(s.Status.Terminal(), ShouldBeTrue)
				So(s.Progress, ShouldResemble, session.Progress{Done: 3, Total: 3})
				So(s.Sources["linkedin"], ShouldResemble, model.SourceStats{Tasks: 2, Fetched: 4, Empty: 1, Failed: 1})
				So(s.Sources["pracuj"], ShouldResemble, model.SourceStats{Tasks: 1, Empty: 1})
				So(s.Diagnostics, ShouldHaveLength, 1)
				So(s.Results, ShouldResemble, results)
				So(*s.FinishedAt, ShouldEqual, now.Add(time.Minute))
			})

			Convey("Then no further transition is allowed", func() {
				So(errors.Is(s.Fail("late", now), session.ErrInvalidTransition), ShouldBeTrue)
				So(errors.Is(s.RecordTask("x", 1, nil), session.ErrInvalidTransition), ShouldBeTrue)
				So(errors.Is(s.Start(now), session.ErrInvalidTransition), ShouldBeTrue)
			})
		})

		Convey("When it completes with nothing", func() {
			So(s.Start(now), ShouldBeNil)
			So(s.Complete(nil, true, now), ShouldBeNil)

			Convey("Then results are an empty list and the run is marked cancelled", func() {
				So(s.Results, ShouldNotBeNil)
				So(s.Results, ShouldBeEmpty)
				So(s.Cancelled, ShouldBeTrue)
			})
		})

		Convey("When profile extraction fails", func() {
			So(s.Start(now), ShouldBeNil)
			So(s.Fail("resume text empty", now), ShouldBeNil)

			Convey("Then it is failed with a cause", func() {
				So(s.Status, ShouldEqual, session.StatusFailed)
				So(s.Cause, ShouldEqual, "resume text empty")
				So(s.Results, ShouldBeEmpty)
			})
		})

		Convey("When it is completed before starting", func() {
			err := s.Complete(nil, false, now)

			Convey("Then the transition is rejected", func() {
				So(errors.Is(err, session.ErrInvalidTransition), ShouldBeTrue)
				So(s.Status, ShouldEqual, session.StatusPending)
			})
		})
	})
}

func TestSessionClone(t *testing.T) {
	Convey("Given a running session", t, func() {
		s := session.New(params(), now)
		So(s.Start(now), ShouldBeNil)
		So(s.RecordTask("indeed", 2, nil), ShouldBeNil)

		Convey("When the clone is mutated", func() {
			c := s.Clone()
			c.Sources["indeed"] = model.SourceStats{}
			c.AddDiagnostic(model.Diagnostic{Source: "x"})
			*c.StartedAt = now.Add(time.Hour)

			Convey("Then the original is untouched", func() {
				So(s.Sources["indeed"].Fetched, ShouldEqual, 2)
				So(s.Diagnostics, ShouldBeEmpty)
				So(*s.StartedAt, ShouldEqual, now)
			})
		})

		Convey("When it is encoded", func() {
			raw, err := json.Marshal(s)
			So(err, ShouldBeNil)
			var back session.Session
			So(json.Unmarshal(raw, &back), ShouldBeNil)

			Convey("Then the snapshot survives", func() {
				So(back.ID, ShouldEqual, s.ID)
				So(back.Status, ShouldEqual, session.StatusRunning)
				So(back.Params, ShouldResemble, s.Params)
			})
		})
	})
}
