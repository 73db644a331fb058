// Package reminder runs the daily check end to end: open a browser session,
// log in, inspect the dashboard and deliver the resulting message. The
// session is released on every exit path.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"llreminder/internal/config"
	"llreminder/internal/notify"
	"llreminder/internal/site"
	"llreminder/lib/browser"
	"llreminder/lib/telemetry"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

const (
	report_bootstrap = "bootstrap"
	report_access    = "access"
	report_login     = "login"
	report_release   = "release"
)

var (
	tracer        = telemetry.Tracer("llreminder.internal.reminder")
	meter         = telemetry.Meter("llreminder.internal.reminder")
	runCounter, _ = meter.Int64Counter(
		"llreminder.runs",
		metric.WithDescription("Completed one-shot runs by outcome."),
	)
)

// ErrNoStatus is returned by Notify before any Check has run.
var ErrNoStatus = errors.New("no submission check has run yet")

// Launcher opens a new browser session.
type Launcher func(ctx context.Context) (browser.Session, error)

// RodLauncher launches chromium with the configured binary and sandbox
// settings.
func RodLauncher(cfg config.BrowserConfig, headless bool, tel telemetry.API) Launcher {
	return func(ctx context.Context) (browser.Session, error) {
		session, err := browser.Launch(ctx, browser.Options{
			Headless:  headless,
			NoSandbox: cfg.NoSandbox,
			Bin:       cfg.Bin,
		}, telemetry.NewScopedAPI("browser", tel))
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}

type Options struct {
	Config   config.Config
	Launch   Launcher
	Notifier notify.Notifier
	Tel      telemetry.API
}

// Reminder owns at most one browser session at a time.
type Reminder struct {
	cfg      config.Config
	launch   Launcher
	notifier notify.Notifier
	tel      telemetry.API

	mu      sync.Mutex
	session browser.Session
	last    *site.Status
}

func New(opts Options) *Reminder {
	return &Reminder{
		cfg:      opts.Config,
		launch:   opts.Launch,
		notifier: opts.Notifier,
		tel:      telemetry.NewScopedAPI("reminder", opts.Tel),
	}
}

// page returns the live session, launching one when there is none.
func (r *Reminder) page(ctx context.Context) (browser.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session != nil {
		return r.session, nil
	}
	session, err := r.launch(ctx)
	if err != nil {
		r.tel.ReportBroken(report_bootstrap, err)
		return nil, &BootstrapError{Err: err}
	}
	r.session = session
	return session, nil
}

// BootstrapError marks a failure to start the browser session.
type BootstrapError struct {
	Err error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("start browser session: %s", e.Err)
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}

// Access opens the target site.
func (r *Reminder) Access(ctx context.Context) error {
	page, err := r.page(ctx)
	if err != nil {
		return err
	}
	err = page.Navigate(ctx, r.cfg.Site.Url)
	if err != nil {
		r.tel.ReportBroken(report_access, err, r.cfg.Site.Url)
		return err
	}
	r.tel.ReportDebug("accessed site", r.cfg.Site.Url)
	return nil
}

// Login submits the configured credentials, see site.Login.
func (r *Reminder) Login(ctx context.Context) (bool, error) {
	page, err := r.page(ctx)
	if err != nil {
		return false, err
	}
	ok, err := site.Login(ctx, page, r.cfg.Credentials, r.cfg.LoginWait(), telemetry.NewScopedAPI("site", r.tel))
	if err != nil {
		r.tel.ReportBroken(report_login, err)
	}
	return ok, err
}

// Check inspects the dashboard and remembers the result for Notify. Only a
// failure to start the session is returned, every page fault is folded into
// the status.
func (r *Reminder) Check(ctx context.Context) (site.Status, error) {
	page, err := r.page(ctx)
	if err != nil {
		return site.Status{}, err
	}
	status := site.Inspect(ctx, page, r.cfg.Site.Marker, r.cfg.MarkerWait(), telemetry.NewScopedAPI("site", r.tel))

	r.mu.Lock()
	r.last = &status
	r.mu.Unlock()
	return status, nil
}

// Notify delivers the message for the last checked status.
func (r *Reminder) Notify(ctx context.Context) (notify.Delivery, error) {
	r.mu.Lock()
	last := r.last
	r.mu.Unlock()
	if last == nil {
		return notify.Delivery{}, ErrNoStatus
	}
	return notify.Deliver(ctx, r.notifier, last.Submitted, telemetry.NewScopedAPI("notify", r.tel)), nil
}

// Close releases the session if one is open. It can be called any number of
// times and a later step opens a fresh session.
func (r *Reminder) Close() error {
	r.mu.Lock()
	session := r.session
	r.session = nil
	r.mu.Unlock()

	if session == nil {
		return nil
	}
	err := session.Close()
	if err != nil {
		r.tel.ReportBroken(report_release, err)
		return err
	}
	r.tel.ReportDebug("browser session released")
	return nil
}

type Outcome int

const (
	OutcomeBootstrapFailed Outcome = iota
	OutcomeAccessFailed
	OutcomeLoginFailed
	OutcomeSubmitted
	OutcomeReminded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBootstrapFailed:
		return "bootstrap_failed"
	case OutcomeAccessFailed:
		return "access_failed"
	case OutcomeLoginFailed:
		return "login_failed"
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeReminded:
		return "reminded"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result describes one Run.
type Result struct {
	RunID   string
	Outcome Outcome
	Status  site.Status
	// Delivery is nil when the run stopped before notifying.
	Delivery *notify.Delivery
	// Err is the fault that stopped the run early, if any.
	Err error
}

// Run performs one full check. It never panics on page faults and always
// releases the session before returning.
func (r *Reminder) Run(ctx context.Context) (res Result) {
	res.RunID = uuid.NewString()

	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", res.RunID))

	defer func() {
		span.SetAttributes(attribute.String("outcome", res.Outcome.String()))
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Outcome.String())
		}
		runCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", res.Outcome.String())))
	}()
	defer func() {
		err := r.Close()
		if err != nil {
			res.Err = errors.Join(res.Err, err)
		}
	}()

	err := r.Access(ctx)
	if err != nil {
		res.Err = err
		res.Outcome = OutcomeAccessFailed
		var bootstrapErr *BootstrapError
		if errors.As(err, &bootstrapErr) {
			res.Outcome = OutcomeBootstrapFailed
		}
		return res
	}

	ok, err := r.Login(ctx)
	if !ok {
		res.Err = err
		res.Outcome = OutcomeLoginFailed
		r.tel.ReportWarning(report_login, "login failed or page did not load properly", res.RunID)
		return res
	}

	status, err := r.Check(ctx)
	if err != nil {
		res.Err = err
		res.Outcome = OutcomeBootstrapFailed
		return res
	}
	res.Status = status
	res.Outcome = OutcomeReminded
	if status.Submitted {
		res.Outcome = OutcomeSubmitted
	}

	delivery, err := r.Notify(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	res.Delivery = &delivery
	return res
}
