package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"llreminder/lib/telemetry"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_session_launch = "session.launch"
	report_session_close  = "session.close"
	report_session_reaped = "session.reaped"
)

var tracer = telemetry.Tracer("llreminder.lib.browser")

type Options struct {
	// Headless runs chromium without a window.
	Headless bool
	// NoSandbox disables the chromium sandbox, required when running as root
	// inside containers.
	NoSandbox bool
	// Bin is the path to a chromium binary, when empty rod looks one up and
	// downloads it if needed.
	Bin string
}

// RodSession is a live chromium instance with a single tab, driven over the
// devtools protocol.
type RodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	tel      telemetry.API

	mu        sync.Mutex
	closed    bool
	closeErr  error
	closeOnce sync.Once
}

// Launch starts chromium and opens a blank tab. The returned session must be
// closed, which is the only way the browser process is released.
func Launch(ctx context.Context, opts Options, tel telemetry.API) (*RodSession, error) {
	ctx, span := tracer.Start(ctx, "Launch")
	defer span.End()

	span.SetAttributes(attribute.Bool("headless", opts.Headless))

	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		Leakless(true)
	if opts.NoSandbox {
		l = l.NoSandbox(true)
	}
	if opts.Headless {
		l = l.Set("disable-gpu")
	}
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		l.Kill()
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to launch browser")
		tel.ReportBroken(report_session_launch, err)
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	s := &RodSession{launcher: l, tel: tel}

	b := rod.New().ControlURL(controlURL)
	err = b.Connect()
	if err != nil {
		s.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to connect to browser")
		tel.ReportBroken(report_session_launch, err)
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	s.browser = b

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		s.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open page")
		tel.ReportBroken(report_session_launch, err)
		return nil, fmt.Errorf("open page: %w", err)
	}
	s.page = page

	tel.ReportDebug("browser launched", l.PID(), opts.Headless)
	return s, nil
}

func (s *RodSession) activePage() (*rod.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.page == nil {
		return nil, ErrClosed
	}
	return s.page, nil
}

func (s *RodSession) Navigate(ctx context.Context, url string) error {
	page, err := s.activePage()
	if err != nil {
		return err
	}
	p := page.Context(ctx)
	err = p.Navigate(url)
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	err = p.WaitLoad()
	if err != nil {
		return fmt.Errorf("wait for %s to load: %w", url, err)
	}
	return nil
}

func lookup(p *rod.Page, sel Selector) (*rod.Element, error) {
	if css, ok := sel.CSS(); ok {
		return p.Element(css)
	}
	return p.ElementX(sel.XPath())
}

// classify maps rod's errors onto the package sentinels while keeping the
// original error in the chain.
func classify(sel Selector, err error) error {
	var notFound *rod.ElementNotFoundError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %w", ErrTimeout, sel, err)
	case errors.As(err, &notFound):
		return fmt.Errorf("%w: %s", ErrNotFound, sel)
	}
	return fmt.Errorf("%s: %w", sel, err)
}

func (s *RodSession) WaitPresent(ctx context.Context, sel Selector, timeout time.Duration) (Element, error) {
	page, err := s.activePage()
	if err != nil {
		return nil, err
	}
	p := page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	el, err := lookup(p, sel)
	if err != nil {
		return nil, classify(sel, err)
	}
	return rodElement{el: el}, nil
}

func (s *RodSession) WaitVisible(ctx context.Context, sel Selector, timeout time.Duration) (Element, error) {
	page, err := s.activePage()
	if err != nil {
		return nil, err
	}
	p := page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	el, err := lookup(p, sel)
	if err != nil {
		return nil, classify(sel, err)
	}
	err = el.WaitVisible()
	if err != nil {
		return nil, classify(sel, err)
	}
	return rodElement{el: el}, nil
}

func (s *RodSession) Find(ctx context.Context, sel Selector) (Element, error) {
	page, err := s.activePage()
	if err != nil {
		return nil, err
	}
	el, err := lookup(page.Context(ctx).Sleeper(rod.NotFoundSleeper), sel)
	if err != nil {
		return nil, classify(sel, err)
	}
	return rodElement{el: el}, nil
}

// Close quits the browser, kills the launcher and reaps any chromium child
// process that outlived its parent. It is safe to call more than once.
func (s *RodSession) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		pid := s.launcher.PID()
		tree := snapshotTree(ctx, pid)

		var errlist []error
		if s.browser != nil {
			err := s.browser.Close()
			if err != nil {
				errlist = append(errlist, fmt.Errorf("close browser: %w", err))
			}
		}
		s.launcher.Kill()
		s.launcher.Cleanup()

		reaped, err := tree.reap(ctx)
		if err != nil {
			errlist = append(errlist, err)
		}
		if reaped > 0 {
			s.tel.ReportWarning(report_session_close, "reaped orphaned browser processes", reaped)
		}
		s.tel.ReportCount(report_session_reaped, int64(reaped))

		s.closeErr = errors.Join(errlist...)
		if s.closeErr != nil {
			s.tel.ReportBroken(report_session_close, s.closeErr)
		}
	})
	return s.closeErr
}

type rodElement struct {
	el *rod.Element
}

func (e rodElement) Input(ctx context.Context, text string) error {
	return e.el.Context(ctx).Input(text)
}

func (e rodElement) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (e rodElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	value, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if value == nil {
		return "", false, nil
	}
	return *value, true, nil
}
