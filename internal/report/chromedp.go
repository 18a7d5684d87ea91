package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/pfrederiksen/dfbnet-assist/internal/logger"
)

// chromePollInterval is how often WaitFor re-checks the document.
const chromePollInterval = 100 * time.Millisecond

// chromeRun is chromedp.Run, replaced in tests.
var chromeRun = chromedp.Run

// ChromeOptions configures NewChrome.
type ChromeOptions struct {
	// RemoteURL is the DevTools websocket URL of a running Chrome, for example
	// one where the portal login already happened. Empty launches a local Chrome.
	RemoteURL string
	// Headless applies to a launched Chrome only.
	Headless bool
	// UserDataDir keeps cookies of a launched Chrome between runs.
	UserDataDir string
	Logger      *logger.Logger
}

// Chrome is a Browser driving Chrome over the DevTools protocol.
type Chrome struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *logger.Logger
}

// NewChrome starts or attaches to Chrome. Close releases it.
func NewChrome(ctx context.Context, opts ChromeOptions) (*Chrome, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.Fields{"browser": "chrome"})

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, opts.RemoteURL)
	} else {
		flags := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", opts.Headless))
		if opts.UserDataDir != "" {
			flags = append(flags, chromedp.UserDataDir(opts.UserDataDir))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, flags...)
	}

	bctx, bcancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			log.Debug(fmt.Sprintf(format, args...), nil)
		}),
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			log.Warn(fmt.Sprintf(format, args...), nil)
		}),
	)
	if err := chromeRun(bctx); err != nil {
		bcancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	log.Info("Chrome ready", logger.Fields{"remote": opts.RemoteURL != ""})

	return &Chrome{
		ctx: bctx,
		cancel: func() {
			bcancel()
			allocCancel()
		},
		log: log,
	}, nil
}

// NewPage opens a tab.
func (c *Chrome) NewPage(ctx context.Context) (Page, error) {
	tab, cancel := chromedp.NewContext(c.ctx)
	// The first Run on a tab starts its event loop, which stops with the
	// context that Run was given. It must be tab itself, not a child of it.
	stop := context.AfterFunc(ctx, cancel)
	err := chromeRun(tab)
	if !stop() {
		err = ctx.Err()
	}
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	return &chromePage{chromeFrame: chromeFrame{tab: tab, doc: mainDocument}, cancel: cancel}, nil
}

// Close shuts down a launched Chrome or detaches from a remote one.
func (c *Chrome) Close() error {
	c.cancel()
	return nil
}

// runIn runs actions on tab until they finish or ctx is done. Cancelling ctx
// stops the actions but leaves the tab open.
func runIn(ctx, tab context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromeRun(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

const mainDocument = "document"

// iframeDocument is the document of the i-th iframe of the main document. It is
// null for cross-origin frames.
func iframeDocument(i int) string {
	return fmt.Sprintf(`document.querySelectorAll("iframe")[%d].contentDocument`, i)
}

type chromeFrame struct {
	tab context.Context
	// doc is a JS expression for the frame's document.
	doc string
}

func (f *chromeFrame) Count(ctx context.Context, l Locator) (int, error) {
	var n int
	err := runIn(ctx, f.tab, chromedp.Evaluate(f.script(l, "0", `return r.snapshotLength;`), &n))
	return n, err
}

func (f *chromeFrame) WaitFor(ctx context.Context, l Locator) error {
	return f.poll(ctx, f.script(l, "false", firstVisible+`return e !== null;`))
}

func (f *chromeFrame) Click(ctx context.Context, l Locator) error {
	return f.act(ctx, l, firstVisible+`if (e === null) return false;
e.scrollIntoView({block: "center"});
e.click();
return true;`)
}

func (f *chromeFrame) Fill(ctx context.Context, l Locator, value string) error {
	return f.act(ctx, l, firstVisible+`if (e === null) return false;
e.focus();
e.value = `+jsString(value)+`;
e.dispatchEvent(new Event("input", {bubbles: true}));
e.dispatchEvent(new Event("change", {bubbles: true}));
return true;`)
}

// act waits for l and runs body on its first visible match.
func (f *chromeFrame) act(ctx context.Context, l Locator, body string) error {
	if err := f.WaitFor(ctx, l); err != nil {
		return err
	}
	var ok bool
	if err := runIn(ctx, f.tab, chromedp.Evaluate(f.script(l, "false", body), &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no visible element for %s", l)
	}
	return nil
}

// poll evaluates a boolean expression until it is true or ctx is done.
func (f *chromeFrame) poll(ctx context.Context, expr string) error {
	ticker := time.NewTicker(chromePollInterval)
	defer ticker.Stop()
	for {
		var ok bool
		if err := runIn(ctx, f.tab, chromedp.Evaluate(expr, &ok)); err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// firstVisible sets e to the first rendered match of r, or null.
const firstVisible = `let e = null;
for (let i = 0; i < r.snapshotLength; i++) {
	const n = r.snapshotItem(i);
	if (n.getClientRects().length > 0) { e = n; break; }
}
`

// script wraps body so it runs with r holding the matches of l in the frame's
// document. It returns empty when the document is not reachable.
func (f *chromeFrame) script(l Locator, empty, body string) string {
	return `(() => {
const d = ` + f.doc + `;
if (!d) return ` + empty + `;
const r = d.evaluate(` + jsString(xpath(l)) + `, d, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
` + body + `
})()`
}

type chromePage struct {
	chromeFrame
	cancel context.CancelFunc
}

func (p *chromePage) Goto(ctx context.Context, url string) error {
	return runIn(ctx, p.tab, chromedp.Navigate(url))
}

func (p *chromePage) WaitForDOMContentLoaded(ctx context.Context) error {
	return p.poll(ctx, `document.readyState !== "loading"`)
}

// Frames returns the main document and every top-level iframe.
func (p *chromePage) Frames() []Frame {
	frames := []Frame{&p.chromeFrame}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var n int
	if err := runIn(ctx, p.tab, chromedp.Evaluate(`document.querySelectorAll("iframe").length`, &n)); err != nil {
		return frames
	}
	for i := 0; i < n; i++ {
		frames = append(frames, &chromeFrame{tab: p.tab, doc: iframeDocument(i)})
	}
	return frames
}

// Close closes the tab.
func (p *chromePage) Close() error {
	p.cancel()
	return nil
}

const (
	xpathUpper = "ABCDEFGHIJKLMNOPQRSTUVWXYZÄÖÜ"
	xpathLower = "abcdefghijklmnopqrstuvwxyzäöü"
)

// xpath translates a Locator into an XPath 1.0 expression. Text, textbox and
// button names match case-insensitively as substrings; exact text, titles and
// test ids match whole values.
func xpath(l Locator) string {
	v := xpathLiteral(l.Value)
	lv := xpathLiteral(strings.ToLower(l.Value))
	switch l.By {
	case ByText:
		if l.Exact {
			return `//*[not(self::script or self::style)][normalize-space(.)=` + v + `]`
		}
		return `//*[not(self::script or self::style)][text()[contains(` + lowered("normalize-space(.)") + `, ` + lv + `)]]`
	case ByTextbox:
		return `//*[(self::input[not(@type) or @type="text" or @type="search" or @type="email" or @type="password"] or self::textarea) and (` +
			`contains(` + lowered("@aria-label") + `, ` + lv + `) or ` +
			`contains(` + lowered("@placeholder") + `, ` + lv + `) or ` +
			`contains(` + lowered("@name") + `, ` + lv + `) or ` +
			`@id=//label[contains(` + lowered("normalize-space(.)") + `, ` + lv + `)]/@for)]`
	case ByButton:
		return `//*[(self::button or @role="button" or self::input[@type="submit" or @type="button"]) and (` +
			`contains(` + lowered("normalize-space(.)") + `, ` + lv + `) or ` +
			`contains(` + lowered("@value") + `, ` + lv + `) or ` +
			`contains(` + lowered("@aria-label") + `, ` + lv + `))]`
	case ByTitle:
		return `//*[@title=` + v + `]`
	case ByTestID:
		return `//*[@data-testid=` + v + `]`
	default:
		return `//*[false()]`
	}
}

func lowered(expr string) string {
	return `translate(` + expr + `, "` + xpathUpper + `", "` + xpathLower + `")`
}

// xpathLiteral quotes s for XPath 1.0, which has no escapes: strings holding
// both quote kinds are built with concat.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, `'`) {
		return `'` + s + `'`
	}
	parts := strings.Split(s, `"`)
	args := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			args = append(args, `'"'`)
		}
		if p != "" {
			args = append(args, `"`+p+`"`)
		}
	}
	return "concat(" + strings.Join(args, ", ") + ")"
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
