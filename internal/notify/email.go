package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"llreminder/internal/config"

	"github.com/jordan-wright/email"
)

// Email sends the message over smtp.
type Email struct {
	cfg config.EmailConfig
}

func NewEmail(cfg config.EmailConfig) Email {
	return Email{cfg: cfg}
}

func (Email) Name() string {
	return config.TransportEmail
}

// Send delivers the message over a single smtp conversation. The connection
// is closed as soon as ctx is done, so a stalled server cannot outlive it.
func (e Email) Send(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("LL Reminder <%s>", e.cfg.EmailAddress)
	mail.To = e.cfg.To
	mail.Subject = message
	mail.Text = []byte(message)
	raw, err := mail.Bytes()
	if err != nil {
		return fmt.Errorf("email: compose: %w", err)
	}

	addr := net.JoinHostPort(e.cfg.Server, strconv.Itoa(e.cfg.Port))
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("email: dial %s: %w", addr, err)
	}
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	err = e.converse(conn, raw)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("email: send: %w", ctxErr)
		}
		return fmt.Errorf("email: send: %w", err)
	}
	return nil
}

func (e Email) converse(conn net.Conn, raw []byte) error {
	client, err := smtp.NewClient(conn, e.cfg.Server)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		err = client.StartTLS(&tls.Config{ServerName: e.cfg.Server})
		if err != nil {
			return err
		}
	}
	// servers without AUTH take the message unauthenticated
	if ok, _ := client.Extension("AUTH"); ok {
		err = client.Auth(smtp.PlainAuth("", e.cfg.EmailAddress, e.cfg.Password, e.cfg.Server))
		if err != nil {
			return err
		}
	}

	err = client.Mail(e.cfg.EmailAddress)
	if err != nil {
		return err
	}
	for _, to := range e.cfg.To {
		err = client.Rcpt(to)
		if err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	if err != nil {
		return err
	}
	err = w.Close()
	if err != nil {
		return err
	}
	return client.Quit()
}
