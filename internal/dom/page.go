// Package dom defines the live document the extraction engine probes and the
// helpers used to read text and node addresses out of document snapshots
package dom

import (
	"context"
	"errors"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrNotInteractive is returned by pages that cannot simulate user actions
	ErrNotInteractive = errors.New("page does not support interaction")
	// ErrNoHistory is returned by Back when there is no previous entry to return to
	ErrNoHistory = errors.New("no previous page in history")
	// ErrElementNotFound is returned by Click when the selector matches nothing
	ErrElementNotFound = errors.New("element not found")
)

// Page is a scriptable, navigable document. Implementations are not safe for
// concurrent use; a single engine run drives a page sequentially
type Page interface {
	// Snapshot parses the current document into a queryable tree
	Snapshot(ctx context.Context) (*goquery.Document, error)
	// Location returns the current document URL
	Location(ctx context.Context) (string, error)
	// Navigate loads url in the page
	Navigate(ctx context.Context, url string) error
	// Click simulates activation of the first element matching selector
	Click(ctx context.Context, selector string) error
	// Back returns to the previous history entry
	Back(ctx context.Context) error
	// ReadyState reports document.readyState ("loading", "interactive", "complete")
	ReadyState(ctx context.Context) (string, error)
	// Interactive reports whether Click and Back can change the document
	Interactive() bool
}

// Screenshotter is implemented by pages that can capture an image of the viewport
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}
