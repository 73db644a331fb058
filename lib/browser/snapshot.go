package browser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"llreminder/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Snapshot is a Page over static HTML. Since a snapshot never changes, waits
// resolve immediately: an element that is not there now never will be, so
// the wait reports ErrTimeout without sleeping.
//
// Navigating to a url registered with Route swaps the document, navigating
// anywhere else keeps the current one. Clicking an element registered with
// RouteClick does the same, which stands in for a form submission.
type Snapshot struct {
	mu          sync.Mutex
	doc         *goquery.Document
	routes      map[string]string
	clickRoutes map[string]string
	visited     []string
	clicks      []string
	closed      bool
}

// NewSnapshot parses `r` as the initial document.
func NewSnapshot(r io.Reader) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &Snapshot{
		doc:         doc,
		routes:      map[string]string{},
		clickRoutes: map[string]string{},
	}, nil
}

// NewSnapshotString is NewSnapshot over a string.
func NewSnapshotString(src string) (*Snapshot, error) {
	return NewSnapshot(strings.NewReader(src))
}

// LoadSnapshot reads a saved html page from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(bytes.NewReader(contents))
}

// Route makes a later Navigate(url) load `src` as the document.
func (s *Snapshot) Route(url, src string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[url] = src
}

// RouteClick makes a later click on the element matched by `sel` load `src`
// as the document.
func (s *Snapshot) RouteClick(sel Selector, src string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clickRoutes[sel.String()] = src
}

func (s *Snapshot) load(src string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return err
	}
	s.doc = doc
	return nil
}

func (s *Snapshot) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.visited = append(s.visited, url)
	src, ok := s.routes[url]
	if !ok {
		return nil
	}
	err := s.load(src)
	if err != nil {
		return fmt.Errorf("parse route %s: %w", url, err)
	}
	return nil
}

func (s *Snapshot) match(sel Selector) *goquery.Selection {
	if css, ok := sel.CSS(); ok {
		return s.doc.Find(css).First()
	}
	tag := sel.Tag
	if tag == "" {
		tag = "*"
	}
	return s.doc.Find(tag).FilterFunction(func(_ int, candidate *goquery.Selection) bool {
		return htmlutil.HasOwnText(candidate.Nodes[0], sel.Value)
	}).First()
}

func (s *Snapshot) lookup(ctx context.Context, sel Selector) (*html.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	found := s.match(sel)
	if found.Length() == 0 {
		return nil, nil
	}
	return found.Nodes[0], nil
}

func (s *Snapshot) WaitPresent(ctx context.Context, sel Selector, timeout time.Duration) (Element, error) {
	node, err := s.lookup(ctx, sel)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, sel, timeout)
	}
	return snapshotElement{snapshot: s, node: node, sel: sel}, nil
}

func (s *Snapshot) WaitVisible(ctx context.Context, sel Selector, timeout time.Duration) (Element, error) {
	node, err := s.lookup(ctx, sel)
	if err != nil {
		return nil, err
	}
	if node == nil || !visible(node) {
		return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, sel, timeout)
	}
	return snapshotElement{snapshot: s, node: node, sel: sel}, nil
}

func (s *Snapshot) Find(ctx context.Context, sel Selector) (Element, error) {
	node, err := s.lookup(ctx, sel)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sel)
	}
	return snapshotElement{snapshot: s, node: node, sel: sel}, nil
}

func (s *Snapshot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *Snapshot) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Visited returns every url passed to Navigate in order.
func (s *Snapshot) Visited() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visited...)
}

// Clicks returns the selectors of every clicked element in order.
func (s *Snapshot) Clicks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.clicks...)
}

// Value returns the value attribute of the first element matching `sel`.
func (s *Snapshot) Value(sel Selector) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := s.match(sel)
	if found.Length() == 0 {
		return ""
	}
	value, _ := htmlutil.Attr(found.Nodes[0], "value")
	return value
}

// visible approximates computed visibility for static markup: hidden
// inputs, the hidden attribute and inline display:none / visibility:hidden
// on the node or any ancestor all hide it.
func visible(node *html.Node) bool {
	if node.Data == "input" {
		if kind, _ := htmlutil.Attr(node, "type"); strings.EqualFold(kind, "hidden") {
			return false
		}
	}
	for n := node; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if _, hidden := htmlutil.Attr(n, "hidden"); hidden {
			return false
		}
		style, _ := htmlutil.Attr(n, "style")
		style = strings.ToLower(strings.ReplaceAll(style, " ", ""))
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

type snapshotElement struct {
	snapshot *Snapshot
	node     *html.Node
	sel      Selector
}

func (e snapshotElement) Input(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.snapshot.mu.Lock()
	defer e.snapshot.mu.Unlock()
	if e.snapshot.closed {
		return ErrClosed
	}
	current, _ := htmlutil.Attr(e.node, "value")
	htmlutil.SetAttr(e.node, "value", current+text)
	return nil
}

func (e snapshotElement) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.snapshot.mu.Lock()
	defer e.snapshot.mu.Unlock()
	if e.snapshot.closed {
		return ErrClosed
	}
	e.snapshot.clicks = append(e.snapshot.clicks, e.sel.String())
	src, ok := e.snapshot.clickRoutes[e.sel.String()]
	if !ok {
		return nil
	}
	err := e.snapshot.load(src)
	if err != nil {
		return fmt.Errorf("parse click route %s: %w", e.sel, err)
	}
	return nil
}

func (e snapshotElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	e.snapshot.mu.Lock()
	defer e.snapshot.mu.Unlock()
	if e.snapshot.closed {
		return "", false, ErrClosed
	}
	value, ok := htmlutil.Attr(e.node, name)
	return value, ok, nil
}
