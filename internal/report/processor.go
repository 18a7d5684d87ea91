package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/dfbnet-assist/internal/logger"
	"github.com/pfrederiksen/dfbnet-assist/internal/match"
	"github.com/pfrederiksen/dfbnet-assist/internal/referee"
)

// AddRefereeText labels the button that opens the referee form. The frame holding
// it is the one the Processor works in.
const AddRefereeText = "Schiedsrichter hinzufügen"

// privacyAcceptID is the consent banner's accept-all button.
const privacyAcceptID = "uc-accept-all-button"

var (
	// ErrPageNotLoaded means the report page did not reach DOMContentLoaded in time.
	ErrPageNotLoaded = errors.New("match report page did not finish loading in time")
	// ErrFrameNotFound means no frame offered the add-referee action.
	ErrFrameNotFound = errors.New("could not locate frame containing '" + AddRefereeText + "'")
	// ErrContextMismatch means the frame did not show the expected match details.
	ErrContextMismatch = errors.New("expected match detail text not found in frame")
)

// Resolver returns the referees to enter for a match context. *referee.Matcher
// implements it.
type Resolver interface {
	ForContext(ctx referee.MatchContext) []referee.Name
}

// Timeouts bounds every wait. Pauses give the portal's scripts time to settle
// between clicks.
type Timeouts struct {
	Load       time.Duration
	FrameWait  time.Duration
	FramePoll  time.Duration
	Detail     time.Duration
	Click      time.Duration
	Privacy    time.Duration
	AfterOpen  time.Duration
	AfterStep  time.Duration
	FollowUp   time.Duration
	AfterFinal time.Duration
}

// DefaultTimeouts returns the timings the portal is known to work with.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Load:       15 * time.Second,
		FrameWait:  5 * time.Second,
		FramePoll:  250 * time.Millisecond,
		Detail:     5 * time.Second,
		Click:      5 * time.Second,
		Privacy:    5 * time.Second,
		AfterOpen:  500 * time.Millisecond,
		AfterStep:  200 * time.Millisecond,
		FollowUp:   300 * time.Millisecond,
		AfterFinal: 500 * time.Millisecond,
	}
}

// Options configures a Processor.
type Options struct {
	// Context is the match context the report page must show.
	Context  referee.MatchContext
	BaseURL  string
	Timeouts Timeouts
	Logger   *logger.Logger
	Metrics  *logger.Metrics
	// Sleep pauses for d or until ctx is done. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error
	// Now defaults to time.Now.
	Now func() time.Time
}

// Processor drives the referee fill on match-report pages.
type Processor struct {
	resolver Resolver
	opts     Options
	log      *logger.Logger
}

// NewProcessor creates a Processor. Zero Timeouts fields take their defaults.
func NewProcessor(resolver Resolver, opts Options) *Processor {
	opts.Timeouts = mergeTimeouts(opts.Timeouts, DefaultTimeouts())
	if opts.Context.IsZero() {
		opts.Context = referee.DefaultTargetContext()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = logger.DefaultMetrics()
	}
	if opts.Sleep == nil {
		opts.Sleep = sleep
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Processor{
		resolver: resolver,
		opts:     opts,
		log:      opts.Logger.With(logger.Fields{"component": "report"}),
	}
}

// Open navigates a new page to the game's report link, dismisses the privacy
// banner and processes the page. The page is returned open for the user to
// review; it is closed only when navigation fails.
func (p *Processor) Open(ctx context.Context, b Browser, game match.UpcomingGame) (Page, Report, error) {
	url, err := ReportURL(game.ReportLink, p.opts.BaseURL)
	if err != nil {
		return nil, Report{}, err
	}

	page, err := b.NewPage(ctx)
	if err != nil {
		return nil, Report{}, fmt.Errorf("opening page: %w", err)
	}
	if err := page.Goto(ctx, url); err != nil {
		_ = page.Close()
		return nil, Report{}, fmt.Errorf("navigating to %s: %w", url, err)
	}

	p.dismissPrivacy(ctx, page)
	return page, p.Process(ctx, page), nil
}

func (p *Processor) dismissPrivacy(ctx context.Context, page Page) {
	accept := TestID(privacyAcceptID)
	if err := p.withTimeout(ctx, p.opts.Timeouts.Privacy, func(ctx context.Context) error {
		if err := page.WaitFor(ctx, accept); err != nil {
			return err
		}
		return page.Click(ctx, accept)
	}); err != nil {
		p.log.Debug("Privacy popup not shown", nil)
	}
}

// Process fills the referees on an already opened report page. Step failures are
// logged and recorded in the Report; Process itself never fails.
func (p *Processor) Process(ctx context.Context, page Page) Report {
	start := p.opts.Now()
	defer func() { p.opts.Metrics.RecordTiming("report.process", p.opts.Now().Sub(start)) }()

	if err := p.withTimeout(ctx, p.opts.Timeouts.Load, page.WaitForDOMContentLoaded); err != nil {
		p.log.Warn(ErrPageNotLoaded.Error(), logger.Fields{"cause": err.Error()})
		return Report{Abandoned: ErrPageNotLoaded}
	}

	frame, ok := p.findFrame(ctx, page)
	if !ok {
		p.log.Warn(ErrFrameNotFound.Error(), nil)
		return Report{Abandoned: ErrFrameNotFound}
	}

	detail := p.opts.Context.DetailText()
	if err := p.withTimeout(ctx, p.opts.Timeouts.Detail, func(ctx context.Context) error {
		return frame.WaitFor(ctx, Text(detail))
	}); err != nil {
		p.log.Warn("Expected match detail text not found in frame; skipping referee autofill", logger.Fields{
			"detail": detail,
		})
		return Report{Abandoned: ErrContextMismatch}
	}

	names := p.resolver.ForContext(p.opts.Context)
	if len(names) == 0 {
		p.log.Info("No referee entry found for this match context", logger.Fields{"context": p.opts.Context.Key()})
		return Report{Outcomes: []Outcome{}}
	}

	rep := Report{Outcomes: make([]Outcome, 0, len(names))}
	for _, name := range names {
		out := p.fillOne(ctx, frame, name)
		rep.Outcomes = append(rep.Outcomes, out)
		if out.State == StateDone {
			p.opts.Metrics.IncrCounter("report.referees_filled")
			p.log.Info("Referee information filled", logger.Fields{"first_name": name.First(), "last_name": name.Last()})
		} else {
			p.opts.Metrics.IncrCounter("report.referees_skipped")
			p.log.Warn("Could not complete referee entry", logger.Fields{
				"first_name": name.First(),
				"last_name":  name.Last(),
				"state":      out.FailedIn.String(),
				"cause":      fmt.Sprint(out.Err),
			})
		}
	}

	if err := p.followUp(ctx, frame); err != nil {
		p.log.Warn("Could not complete Mannschaften sequence", logger.Fields{"cause": err.Error()})
		rep.FollowUp = err
	}
	return rep
}

// findFrame polls every frame for the add-referee text until one has it or
// FrameWait elapses.
func (p *Processor) findFrame(ctx context.Context, page Page) (Frame, bool) {
	deadline := p.opts.Now().Add(p.opts.Timeouts.FrameWait)
	marker := Text(AddRefereeText)
	for !p.opts.Now().After(deadline) {
		for _, f := range page.Frames() {
			if n, err := f.Count(ctx, marker); err == nil && n > 0 {
				return f, true
			}
		}
		if err := p.opts.Sleep(ctx, p.opts.Timeouts.FramePoll); err != nil {
			return nil, false
		}
	}
	return nil, false
}

// fillOne runs one referee through the state machine.
func (p *Processor) fillOne(ctx context.Context, frame Frame, name referee.Name) Outcome {
	state := StateIdle
	for !state.Terminal() {
		next, err := p.step(ctx, frame, state, name)
		if err != nil {
			return Outcome{Referee: name, State: StateSkipped, FailedIn: state, Err: err}
		}
		state = next
	}
	return Outcome{Referee: name, State: state}
}

// step performs the action of state and returns the state that follows it.
func (p *Processor) step(ctx context.Context, frame Frame, state State, name referee.Name) (State, error) {
	t := p.opts.Timeouts
	switch state {
	case StateIdle:
		return StateOpeningForm, nil

	case StateOpeningForm:
		err := p.withTimeout(ctx, t.Click, func(ctx context.Context) error {
			return frame.Click(ctx, Text(AddRefereeText))
		})
		if err != nil {
			return state, fmt.Errorf("clicking %q: %w", AddRefereeText, err)
		}
		return StateFilling, p.opts.Sleep(ctx, t.AfterOpen)

	case StateFilling:
		if err := p.run(ctx, frame,
			fill(Textbox("Vorname"), name.First()),
			fill(Textbox("Nachname"), name.Last()),
		); err != nil {
			return state, err
		}
		return StateConfirming, nil

	case StateConfirming:
		if err := p.run(ctx, frame,
			click(Text("Hinzufügen")),
			click(ExactText("Speichern")),
			click(Button("OK")),
		); err != nil {
			return state, err
		}
		return StateDone, nil
	}
	return state, fmt.Errorf("no transition from %s", state)
}

// followUp opens the Mannschaften tab and reloads the team lineup.
func (p *Processor) followUp(ctx context.Context, frame Frame) error {
	t := p.opts.Timeouts
	steps := []struct {
		target Locator
		pause  time.Duration
	}{
		{Text("Mannschaften"), t.FollowUp},
		{Title("Öffnen"), t.FollowUp},
		{ExactText("Laden"), t.AfterFinal},
	}
	for _, s := range steps {
		target := s.target
		if err := p.withTimeout(ctx, t.Click, func(ctx context.Context) error {
			return frame.Click(ctx, target)
		}); err != nil {
			return fmt.Errorf("clicking %s: %w", target, err)
		}
		if err := p.opts.Sleep(ctx, s.pause); err != nil {
			return err
		}
	}
	return nil
}

type action struct {
	target Locator
	value  string
	fill   bool
}

func fill(l Locator, value string) action { return action{target: l, value: value, fill: true} }

func click(l Locator) action { return action{target: l} }

// run performs actions in order with the step pause after each one.
func (p *Processor) run(ctx context.Context, frame Frame, actions ...action) error {
	for _, a := range actions {
		var err error
		if a.fill {
			err = frame.Fill(ctx, a.target, a.value)
		} else {
			err = frame.Click(ctx, a.target)
		}
		if err != nil {
			verb := "clicking"
			if a.fill {
				verb = "filling"
			}
			return fmt.Errorf("%s %s: %w", verb, a.target, err)
		}
		if err := p.opts.Sleep(ctx, p.opts.Timeouts.AfterStep); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) withTimeout(ctx context.Context, d time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func mergeTimeouts(t, def Timeouts) Timeouts {
	pick := func(v, d time.Duration) time.Duration {
		if v > 0 {
			return v
		}
		return d
	}
	return Timeouts{
		Load:       pick(t.Load, def.Load),
		FrameWait:  pick(t.FrameWait, def.FrameWait),
		FramePoll:  pick(t.FramePoll, def.FramePoll),
		Detail:     pick(t.Detail, def.Detail),
		Click:      pick(t.Click, def.Click),
		Privacy:    pick(t.Privacy, def.Privacy),
		AfterOpen:  pick(t.AfterOpen, def.AfterOpen),
		AfterStep:  pick(t.AfterStep, def.AfterStep),
		FollowUp:   pick(t.FollowUp, def.FollowUp),
		AfterFinal: pick(t.AfterFinal, def.AfterFinal),
	}
}
