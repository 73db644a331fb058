package site

import (
	"context"
	"fmt"
	"time"

	"llreminder/lib/browser"
	"llreminder/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const report_inspect = "inspect"

// Observation is what a clean read of the status element produced.
type Observation struct {
	Style    string
	HasStyle bool
}

// Status is the outcome of inspecting the dashboard.
type Status struct {
	Submitted bool
	// Fault is the error that made the inspection fall back to Submitted,
	// nil when the page was read cleanly.
	Fault error
}

// SubmittedFromStyle decides from the status element's inline style: only
// the exact hidden style means the answers are in.
func SubmittedFromStyle(style string, present bool) bool {
	return present && style == HiddenStyle
}

// FailQuiet maps a read of the status element to a Status. Any fault counts
// as submitted so an unreachable page never produces a reminder.
func FailQuiet(obs Observation, err error) Status {
	if err != nil {
		return Status{Submitted: true, Fault: err}
	}
	return Status{Submitted: SubmittedFromStyle(obs.Style, obs.HasStyle)}
}

// observe waits for the marker, then reads the status element's style.
func observe(ctx context.Context, page browser.Page, marker string, timeout time.Duration) (Observation, error) {
	_, err := page.WaitPresent(ctx, Marker(marker), timeout)
	if err != nil {
		return Observation{}, fmt.Errorf("wait for marker %q: %w", marker, err)
	}
	status, err := page.Find(ctx, StatusElement)
	if err != nil {
		return Observation{}, fmt.Errorf("locate status element: %w", err)
	}
	style, ok, err := status.Attribute(ctx, "style")
	if err != nil {
		return Observation{}, fmt.Errorf("read status style: %w", err)
	}
	return Observation{Style: style, HasStyle: ok}, nil
}

// Inspect reports whether today's answers have been submitted. It never
// fails, faults are folded in by FailQuiet.
func Inspect(ctx context.Context, page browser.Page, marker string, timeout time.Duration, tel telemetry.API) (status Status) {
	ctx, span := tracer.Start(ctx, "Inspect")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			status = FailQuiet(Observation{}, fmt.Errorf("inspection panicked: %v", r))
			span.SetStatus(codes.Error, "inspection panicked")
			tel.ReportBroken(report_inspect, status.Fault)
		}
	}()

	obs, err := observe(ctx, page, marker, timeout)
	status = FailQuiet(obs, err)

	span.SetAttributes(
		attribute.Bool("submitted", status.Submitted),
		attribute.String("style", obs.Style),
	)
	if status.Fault != nil {
		span.RecordError(status.Fault)
		span.SetStatus(codes.Error, "inspection failed, assuming submitted")
		tel.ReportWarning(report_inspect, "inspection failed, assuming submitted", status.Fault)
	}
	return status
}
