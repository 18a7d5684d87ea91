package report

import (
	"context"
	"fmt"
)

// By selects how a Locator finds an element.
type By int

const (
	// ByText matches visible text. Substring unless Exact.
	ByText By = iota
	// ByTextbox matches a text input by its accessible name, case-insensitive substring.
	ByTextbox
	// ByButton matches a button by its accessible name.
	ByButton
	// ByTitle matches the title attribute.
	ByTitle
	// ByTestID matches the data-testid attribute.
	ByTestID
)

func (b By) String() string {
	switch b {
	case ByText:
		return "text"
	case ByTextbox:
		return "textbox"
	case ByButton:
		return "button"
	case ByTitle:
		return "title"
	case ByTestID:
		return "testid"
	default:
		return fmt.Sprintf("By(%d)", int(b))
	}
}

// Locator identifies an element inside a page or frame.
type Locator struct {
	By    By
	Value string
	Exact bool
}

func (l Locator) String() string {
	if l.Exact {
		return fmt.Sprintf("%s=%q (exact)", l.By, l.Value)
	}
	return fmt.Sprintf("%s=%q", l.By, l.Value)
}

// Text locates an element containing text.
func Text(text string) Locator { return Locator{By: ByText, Value: text} }

// ExactText locates an element whose whole text is text.
func ExactText(text string) Locator { return Locator{By: ByText, Value: text, Exact: true} }

// Textbox locates a text input by accessible name.
func Textbox(name string) Locator { return Locator{By: ByTextbox, Value: name} }

// Button locates a button by accessible name.
func Button(name string) Locator { return Locator{By: ByButton, Value: name} }

// Title locates an element by its title attribute.
func Title(title string) Locator { return Locator{By: ByTitle, Value: title} }

// TestID locates an element by its data-testid attribute.
func TestID(id string) Locator { return Locator{By: ByTestID, Value: id} }

// Frame is a document the driver can act on: the main page or an iframe.
// Blocking calls give up when ctx is done.
type Frame interface {
	// Count returns how many elements match l right now, without waiting.
	Count(ctx context.Context, l Locator) (int, error)
	// WaitFor blocks until an element matching l is visible.
	WaitFor(ctx context.Context, l Locator) error
	Click(ctx context.Context, l Locator) error
	Fill(ctx context.Context, l Locator, value string) error
}

// Page is one browser tab. Its own methods act on the main document.
type Page interface {
	Frame
	Goto(ctx context.Context, url string) error
	WaitForDOMContentLoaded(ctx context.Context) error
	// Frames returns the main frame and every iframe currently attached.
	Frames() []Frame
	Close() error
}

// Browser opens pages in a logged-in session.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
}
