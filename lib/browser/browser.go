// Package browser drives a page either through a real Chromium instance
// (RodSession, go-rod over the devtools protocol) or through a static HTML
// snapshot (Snapshot, goquery). Both implement Page so callers never know
// which one they hold.
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTimeout is returned when a bounded wait expires before the element
	// satisfies the wait condition.
	ErrTimeout = errors.New("timed out waiting for element")
	// ErrNotFound is returned by Find when no element matches.
	ErrNotFound = errors.New("element not found")
	// ErrClosed is returned by every operation on a released session.
	ErrClosed = errors.New("browser session closed")
)

// Element is a handle to a single node on the page.
type Element interface {
	// Input types `text` into the element, appending to its current value.
	Input(ctx context.Context, text string) error
	Click(ctx context.Context) error
	// Attribute returns the raw attribute value and whether it is present.
	Attribute(ctx context.Context, name string) (string, bool, error)
}

// Page is the set of page interactions the rest of the module depends on.
type Page interface {
	Navigate(ctx context.Context, url string) error
	// WaitVisible waits up to `timeout` for an element matching `sel` to be
	// present and visible.
	WaitVisible(ctx context.Context, sel Selector, timeout time.Duration) (Element, error)
	// WaitPresent waits up to `timeout` for an element matching `sel` to be
	// present in the DOM, visible or not.
	WaitPresent(ctx context.Context, sel Selector, timeout time.Duration) (Element, error)
	// Find returns the first element matching `sel` without waiting.
	Find(ctx context.Context, sel Selector) (Element, error)
}

// Session is a Page that owns a resource which must be released.
type Session interface {
	Page
	Close() error
}

var (
	_ Session = (*RodSession)(nil)
	_ Session = (*Snapshot)(nil)
)
