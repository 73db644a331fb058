// Package notify turns a submission status into one of two fixed messages
// and hands it to the configured transport.
package notify

import (
	"context"
	"fmt"
	"path/filepath"

	"llreminder/internal/config"
	"llreminder/lib/restyutil"
	"llreminder/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	MessageSubmitted = "You've submitted LL"
	MessageReminder  = "🚨 Please submit LL today :)"
)

const report_deliver = "deliver"

var tracer = telemetry.Tracer("llreminder.internal.notify")

// Message picks the text for a status, no other text is ever sent.
func Message(submitted bool) string {
	if submitted {
		return MessageSubmitted
	}
	return MessageReminder
}

// Notifier is a single delivery channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, message string) error
}

// New builds the notifier selected by cfg.Transport.
func New(cfg config.NotifyConfig, tel telemetry.API) (Notifier, error) {
	switch cfg.Transport {
	case "", config.TransportNone:
		return NewLogNotifier(tel), nil
	case config.TransportTwilio:
		n := NewTwilio(cfg.Twilio, tel)
		record(n.http, cfg.RecordDir, config.TransportTwilio, tel)
		return n, nil
	case config.TransportSNS:
		n, err := NewSNS(cfg.SNS)
		if err != nil {
			return nil, err
		}
		return n, nil
	case config.TransportGroupMe:
		n := NewGroupMe(cfg.GroupMe, tel)
		record(n.http, cfg.RecordDir, config.TransportGroupMe, tel)
		return n, nil
	case config.TransportEmail:
		return NewEmail(cfg.Email), nil
	}
	return nil, fmt.Errorf("%w: %q", config.ErrUnknownTransport, cfg.Transport)
}

// record saves transcripts of the client's exchanges under dir/transport.
func record(client *resty.Client, dir, transport string, tel telemetry.API) {
	if dir == "" {
		return
	}
	out, err := restyutil.NewFilesystemOutput(filepath.Join(dir, transport))
	if err != nil {
		tel.ReportWarning("record", err)
		return
	}
	restyutil.Record(client, out, tel)
}

// Delivery is the result of a single Deliver call.
type Delivery struct {
	Transport string
	Message   string
	Err       error
}

// Deliver sends the message for `submitted` over `n`. A failed send is
// reported and recorded in the result, it is never returned as an error.
func Deliver(ctx context.Context, n Notifier, submitted bool, tel telemetry.API) Delivery {
	ctx, span := tracer.Start(ctx, "Deliver")
	defer span.End()

	d := Delivery{Transport: n.Name(), Message: Message(submitted)}
	span.SetAttributes(
		attribute.String("transport", d.Transport),
		attribute.Bool("submitted", submitted),
	)

	d.Err = n.Send(ctx, d.Message)
	if d.Err != nil {
		span.RecordError(d.Err)
		span.SetStatus(codes.Error, "failed to deliver notification")
		tel.ReportBroken(report_deliver, d.Err, d.Transport)
		return d
	}

	tel.ReportDebug("notification delivered", d.Transport, d.Message)
	return d
}

// LogNotifier only logs the message, it is used when no transport is
// configured.
type LogNotifier struct {
	tel telemetry.API
}

func NewLogNotifier(tel telemetry.API) LogNotifier {
	return LogNotifier{tel: tel}
}

func (LogNotifier) Name() string {
	return config.TransportNone
}

func (n LogNotifier) Send(ctx context.Context, message string) error {
	n.tel.ReportWarning("log.send", "no notification transport configured, message not sent", message)
	return nil
}
