package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var errNotVisible = errors.New("element not visible")

// fakeFrame records actions and fails those listed in fail. Failures listed with
// a count fail only that many times.
type fakeFrame struct {
	mu      sync.Mutex
	name    string
	present map[string]bool
	fail    map[string]int
	actions []string
}

func newFakeFrame(name string, present ...string) *fakeFrame {
	f := &fakeFrame{name: name, present: make(map[string]bool), fail: make(map[string]int)}
	for _, p := range present {
		f.present[p] = true
	}
	return f
}

func (f *fakeFrame) failOn(l Locator, times int) {
	f.fail[l.String()] = times
}

func (f *fakeFrame) record(verb string, l Locator, extra string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, fmt.Sprintf("%s %s%s", verb, l.Value, extra))
	if n, ok := f.fail[l.String()]; ok && n != 0 {
		f.fail[l.String()] = n - 1
		return errNotVisible
	}
	return nil
}

func (f *fakeFrame) Count(ctx context.Context, l Locator) (int, error) {
	if f.present[l.Value] {
		return 1, nil
	}
	return 0, nil
}

func (f *fakeFrame) WaitFor(ctx context.Context, l Locator) error {
	if !f.present[l.Value] {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (f *fakeFrame) Click(ctx context.Context, l Locator) error {
	return f.record("click", l, "")
}

func (f *fakeFrame) Fill(ctx context.Context, l Locator, value string) error {
	return f.record("fill", l, "="+value)
}

type fakePage struct {
	*fakeFrame
	frames   []Frame
	loadErr  error
	gotoErr  error
	visited  []string
	closed   bool
	frameAdd func(poll int) []Frame
	polls    int
}

func (p *fakePage) Goto(ctx context.Context, url string) error {
	p.visited = append(p.visited, url)
	return p.gotoErr
}

func (p *fakePage) WaitForDOMContentLoaded(ctx context.Context) error {
	return p.loadErr
}

func (p *fakePage) Frames() []Frame {
	p.polls++
	if p.frameAdd != nil {
		return p.frameAdd(p.polls)
	}
	return p.frames
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

type fakeBrowser struct {
	page *fakePage
	err  error
}

func (b *fakeBrowser) NewPage(ctx context.Context) (Page, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.page, nil
}

// fakeClock advances only when the processor sleeps.
type fakeClock struct {
	now    time.Time
	slept  time.Duration
	sleeps int
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	c.slept += d
	c.sleeps++
	return ctx.Err()
}
