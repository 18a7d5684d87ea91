package report

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/dfbnet-assist/internal/logger"
	"github.com/pfrederiksen/dfbnet-assist/internal/match"
	"github.com/pfrederiksen/dfbnet-assist/internal/referee"
)

type staticResolver []referee.Name

func (r staticResolver) ForContext(referee.MatchContext) []referee.Name { return r }

var twoReferees = staticResolver{{"Paul", "Ziske"}, {"Gregor", "Aschenbroich"}}

func newTestProcessor(r Resolver, clock *fakeClock, metrics *logger.Metrics) *Processor {
	return NewProcessor(r, Options{
		Context: referee.DefaultTargetContext(),
		Timeouts: Timeouts{
			Load:   50 * time.Millisecond,
			Detail: 20 * time.Millisecond,
			Click:  20 * time.Millisecond,
		},
		Logger:  logger.Discard(),
		Metrics: metrics,
		Sleep:   clock.Sleep,
		Now:     clock.Now,
	})
}

func readyFrame() *fakeFrame {
	return newFakeFrame("report", AddRefereeText, referee.DefaultTargetContext().DetailText())
}

func TestProcess_FillsInOrder(t *testing.T) {
	frame := readyFrame()
	page := &fakePage{fakeFrame: newFakeFrame("main"), frames: []Frame{newFakeFrame("nav"), frame}}
	metrics := logger.NewMetrics()

	rep := newTestProcessor(twoReferees, &fakeClock{}, metrics).Process(context.Background(), page)

	if rep.Abandoned != nil {
		t.Fatalf("Abandoned = %v", rep.Abandoned)
	}
	if rep.Filled() != 2 || rep.Skipped() != 0 {
		t.Errorf("filled=%d skipped=%d, want 2/0", rep.Filled(), rep.Skipped())
	}

	want := []string{
		"click " + AddRefereeText, "fill Vorname=Paul", "fill Nachname=Ziske",
		"click Hinzufügen", "click Speichern", "click OK",
		"click " + AddRefereeText, "fill Vorname=Gregor", "fill Nachname=Aschenbroich",
		"click Hinzufügen", "click Speichern", "click OK",
		"click Mannschaften", "click Öffnen", "click Laden",
	}
	if !reflect.DeepEqual(frame.actions, want) {
		t.Errorf("actions =\n%v\nwant\n%v", frame.actions, want)
	}
	if metrics.Counter("report.referees_filled") != 2 {
		t.Errorf("filled counter = %d", metrics.Counter("report.referees_filled"))
	}
}

func TestProcess_SkipsFailedReferee(t *testing.T) {
	tests := []struct {
		name     string
		failing  Locator
		failedIn State
	}{
		{"add button", Text(AddRefereeText), StateOpeningForm},
		{"last name", Textbox("Nachname"), StateFilling},
		{"confirm", Button("OK"), StateConfirming},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := readyFrame()
			frame.failOn(tt.failing, 1)
			page := &fakePage{fakeFrame: newFakeFrame("main"), frames: []Frame{frame}}
			metrics := logger.NewMetrics()

			rep := newTestProcessor(twoReferees, &fakeClock{}, metrics).Process(context.Background(), page)

			if len(rep.Outcomes) != 2 {
				t.Fatalf("Outcomes = %v", rep.Outcomes)
			}
			first, second := rep.Outcomes[0], rep.Outcomes[1]
			if first.State != StateSkipped || first.FailedIn != tt.failedIn {
				t.Errorf("first = %v, want skipped in %s", first, tt.failedIn)
			}
			if !errors.Is(first.Err, errNotVisible) {
				t.Errorf("first.Err = %v, want wrapped errNotVisible", first.Err)
			}
			if second.State != StateDone {
				t.Errorf("second = %v, want done (loop continues)", second)
			}
			if metrics.Counter("report.referees_skipped") != 1 {
				t.Errorf("skipped counter = %d", metrics.Counter("report.referees_skipped"))
			}
		})
	}
}

func TestProcess_Abandoned(t *testing.T) {
	t.Run("page not loaded", func(t *testing.T) {
		page := &fakePage{fakeFrame: newFakeFrame("main"), loadErr: context.DeadlineExceeded}
		rep := newTestProcessor(twoReferees, &fakeClock{}, logger.NewMetrics()).Process(context.Background(), page)
		if !errors.Is(rep.Abandoned, ErrPageNotLoaded) {
			t.Errorf("Abandoned = %v, want ErrPageNotLoaded", rep.Abandoned)
		}
	})

	t.Run("frame never appears", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)}
		page := &fakePage{fakeFrame: newFakeFrame("main"), frames: []Frame{newFakeFrame("nav")}}
		rep := newTestProcessor(twoReferees, clock, logger.NewMetrics()).Process(context.Background(), page)

		if !errors.Is(rep.Abandoned, ErrFrameNotFound) {
			t.Errorf("Abandoned = %v, want ErrFrameNotFound", rep.Abandoned)
		}
		// 5s in 250ms steps, checked at t=0 and after each step.
		if page.polls != 21 {
			t.Errorf("polled %d times, want 21", page.polls)
		}
		if clock.slept < 5*time.Second {
			t.Errorf("slept %v, want at least 5s", clock.slept)
		}
	})

	t.Run("context mismatch", func(t *testing.T) {
		frame := newFakeFrame("report", AddRefereeText)
		page := &fakePage{fakeFrame: newFakeFrame("main"), frames: []Frame{frame}}
		rep := newTestProcessor(twoReferees, &fakeClock{}, logger.NewMetrics()).Process(context.Background(), page)

		if !errors.Is(rep.Abandoned, ErrContextMismatch) {
			t.Errorf("Abandoned = %v, want ErrContextMismatch", rep.Abandoned)
		}
		if len(frame.actions) != 0 {
			t.Errorf("actions = %v, want none", frame.actions)
		}
	})
}

func TestProcess_FrameAppearsLate(t *testing.T) {
	frame := readyFrame()
	page := &fakePage{fakeFrame: newFakeFrame("main")}
	page.frameAdd = func(poll int) []Frame {
		if poll < 4 {
			return nil
		}
		return []Frame{frame}
	}
	rep := newTestProcessor(staticResolver{{"Paul", "Ziske"}}, &fakeClock{}, logger.NewMetrics()).Process(context.Background(), page)
	if rep.Abandoned != nil || rep.Filled() != 1 {
		t.Errorf("report = %+v, want one filled", rep)
	}
}

func TestProcess_NoReferees(t *testing.T) {
	frame := readyFrame()
	page := &fakePage{fakeFrame: newFakeFrame("main"), frames: []Frame{frame}}
	rep := newTestProcessor(staticResolver{}, &fakeClock{}, logger.NewMetrics()).Process(context.Background(), page)

	if rep.Abandoned != nil || rep.Outcomes == nil || len(rep.Outcomes) != 0 {
		t.Errorf("report = %+v, want empty outcomes", rep)
	}
	if len(frame.actions) != 0 {
		t.Errorf("actions = %v, want no fill actions", frame.actions)
	}
}

func TestProcess_FollowUpFailure(t *testing.T) {
	var buf bytes.Buffer
	frame := readyFrame()
	frame.failOn(Title("Öffnen"), -1)
	page := &fakePage{fakeFrame: newFakeFrame("main"), frames: []Frame{frame}}
	clock := &fakeClock{}
	p := NewProcessor(staticResolver{{"Paul", "Ziske"}}, Options{
		Logger:  logger.New(logger.LevelWarn, &buf),
		Metrics: logger.NewMetrics(),
		Sleep:   clock.Sleep,
		Now:     clock.Now,
	})

	rep := p.Process(context.Background(), page)
	if rep.Filled() != 1 {
		t.Errorf("Filled() = %d, want 1", rep.Filled())
	}
	if !errors.Is(rep.FollowUp, errNotVisible) {
		t.Errorf("FollowUp = %v", rep.FollowUp)
	}
	if !strings.Contains(buf.String(), "Mannschaften sequence") {
		t.Errorf("log = %s", buf.String())
	}
	last := frame.actions[len(frame.actions)-1]
	if last != "click Öffnen" {
		t.Errorf("last action = %q, want sequence stopped at Öffnen", last)
	}
}

func TestOpen(t *testing.T) {
	t.Run("relative link", func(t *testing.T) {
		frame := readyFrame()
		page := &fakePage{fakeFrame: newFakeFrame("main", privacyAcceptID), frames: []Frame{frame}}
		p := newTestProcessor(twoReferees, &fakeClock{}, logger.NewMetrics())

		got, rep, err := p.Open(context.Background(), &fakeBrowser{page: page}, match.UpcomingGame{ReportLink: "/spielbericht/match-report?id=1"})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if got != Page(page) || page.closed {
			t.Error("Open() should return the open page")
		}
		if page.visited[0] != "https://www.dfbnet.org/spielbericht/match-report?id=1" {
			t.Errorf("visited %v", page.visited)
		}
		if page.fakeFrame.actions[0] != "click "+privacyAcceptID {
			t.Errorf("privacy banner not accepted: %v", page.fakeFrame.actions)
		}
		if rep.Filled() != 2 {
			t.Errorf("Filled() = %d", rep.Filled())
		}
	})

	t.Run("no link", func(t *testing.T) {
		p := newTestProcessor(twoReferees, &fakeClock{}, logger.NewMetrics())
		_, _, err := p.Open(context.Background(), &fakeBrowser{}, match.UpcomingGame{})
		if !errors.Is(err, ErrNoReportLink) {
			t.Errorf("err = %v, want ErrNoReportLink", err)
		}
	})

	t.Run("navigation fails", func(t *testing.T) {
		page := &fakePage{fakeFrame: newFakeFrame("main"), gotoErr: errors.New("net::ERR_ABORTED")}
		p := newTestProcessor(twoReferees, &fakeClock{}, logger.NewMetrics())
		_, _, err := p.Open(context.Background(), &fakeBrowser{page: page}, match.UpcomingGame{ReportLink: "https://x/match-report"})
		if err == nil || !page.closed {
			t.Errorf("err = %v closed = %v, want error and closed page", err, page.closed)
		}
	})
}

func TestDryRun(t *testing.T) {
	var buf bytes.Buffer
	clock := &fakeClock{}
	p := NewProcessor(staticResolver{{"Paul", "Ziske"}}, Options{
		Logger: logger.Discard(), Metrics: logger.NewMetrics(), Sleep: clock.Sleep, Now: clock.Now,
	})

	page, rep, err := p.Open(context.Background(), NewDryRun(&buf), match.UpcomingGame{ReportLink: "/match-report/1"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_ = page.Close()

	if rep.Filled() != 1 {
		t.Errorf("Filled() = %d, want 1", rep.Filled())
	}
	out := buf.String()
	for _, want := range []string{
		"page 1: goto https://www.dfbnet.org/match-report/1",
		`page 1 frame: fill textbox="Vorname" with "Paul"`,
		`page 1 frame: click text="Speichern" (exact)`,
		"page 1: close",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dry run output missing %q:\n%s", want, out)
		}
	}
}
