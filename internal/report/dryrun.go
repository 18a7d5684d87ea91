package report

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// DryRun is a Browser that prints every action instead of performing it. Every
// element exists and every action succeeds, so a Processor run against it shows
// the full sequence it would perform on a real page.
type DryRun struct {
	mu    sync.Mutex
	out   io.Writer
	pages int
}

// NewDryRun creates a dry-run browser writing to out.
func NewDryRun(out io.Writer) *DryRun {
	return &DryRun{out: out}
}

// NewPage opens a numbered dry-run page.
func (d *DryRun) NewPage(ctx context.Context) (Page, error) {
	d.mu.Lock()
	d.pages++
	n := d.pages
	d.mu.Unlock()
	d.printf("page %d: open", n)
	return &dryRunPage{dryRunFrame: dryRunFrame{browser: d, name: fmt.Sprintf("page %d", n)}}, nil
}

func (d *DryRun) printf(format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.out, format+"\n", args...)
}

type dryRunFrame struct {
	browser *DryRun
	name    string
}

func (f *dryRunFrame) Count(ctx context.Context, l Locator) (int, error) {
	return 1, ctx.Err()
}

func (f *dryRunFrame) WaitFor(ctx context.Context, l Locator) error {
	f.browser.printf("%s: wait for %s", f.name, l)
	return ctx.Err()
}

func (f *dryRunFrame) Click(ctx context.Context, l Locator) error {
	f.browser.printf("%s: click %s", f.name, l)
	return ctx.Err()
}

func (f *dryRunFrame) Fill(ctx context.Context, l Locator, value string) error {
	f.browser.printf("%s: fill %s with %q", f.name, l, value)
	return ctx.Err()
}

type dryRunPage struct {
	dryRunFrame
}

func (p *dryRunPage) Goto(ctx context.Context, url string) error {
	p.browser.printf("%s: goto %s", p.name, url)
	return ctx.Err()
}

func (p *dryRunPage) WaitForDOMContentLoaded(ctx context.Context) error {
	return ctx.Err()
}

func (p *dryRunPage) Frames() []Frame {
	return []Frame{&dryRunFrame{browser: p.browser, name: p.name + " frame"}}
}

func (p *dryRunPage) Close() error {
	p.browser.printf("%s: close", p.name)
	return nil
}
