package site

import (
	"context"
	"errors"
	"fmt"
	"time"

	"llreminder/internal/config"
	"llreminder/lib/browser"
	"llreminder/lib/telemetry"

	"go.opentelemetry.io/otel/codes"
)

const report_login = "login"

// Login fills the login form and submits it.
//
// It returns false with a nil error when the form does not show up within
// `timeout`, and false with an error for any other fault. All three fields
// are located before anything is typed so a partial form is never touched.
func Login(ctx context.Context, page browser.Page, creds config.Credentials, timeout time.Duration, tel telemetry.API) (bool, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	username, err := page.WaitVisible(ctx, UsernameField, timeout)
	if errors.Is(err, browser.ErrTimeout) {
		span.SetStatus(codes.Error, "timed out waiting for login form")
		tel.ReportWarning(report_login, "timed out waiting for login elements to appear", timeout.String())
		return false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to locate username field")
		return false, fmt.Errorf("locate username field: %w", err)
	}

	password, err := page.Find(ctx, PasswordField)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to locate password field")
		return false, fmt.Errorf("locate password field: %w", err)
	}
	submit, err := page.Find(ctx, LoginButton)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to locate login button")
		return false, fmt.Errorf("locate login button: %w", err)
	}

	err = username.Input(ctx, creds.Username)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to type username")
		return false, fmt.Errorf("type username: %w", err)
	}
	err = password.Input(ctx, creds.Password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to type password")
		return false, fmt.Errorf("type password: %w", err)
	}
	err = submit.Click(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit login form")
		return false, fmt.Errorf("submit login form: %w", err)
	}

	tel.ReportDebug("login submitted", creds.Username)
	return true, nil
}
