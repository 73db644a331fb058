// Package console drives the reminder steps one at a time from a numbered
// menu.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"llreminder/internal/notify"
	"llreminder/internal/site"
	"llreminder/lib/telemetry"

	"github.com/jedib0t/go-pretty/v6/table"
)

const report_console = "console"

// Steps are the individual pipeline steps the menu exposes, implemented by
// *reminder.Reminder.
type Steps interface {
	Access(ctx context.Context) error
	Login(ctx context.Context) (bool, error)
	Check(ctx context.Context) (site.Status, error)
	Notify(ctx context.Context) (notify.Delivery, error)
	Close() error
}

type choice struct {
	key    string
	action string
}

var choices = []choice{
	{key: "1", action: "Access site"},
	{key: "2", action: "Login"},
	{key: "3", action: "Check submission and notify"},
	{key: "4", action: "Send notification again"},
	{key: "0", action: "Quit"},
}

type Console struct {
	steps Steps
	in    io.Reader
	out   io.Writer
	tel   telemetry.API
}

func New(steps Steps, in io.Reader, out io.Writer, tel telemetry.API) *Console {
	return &Console{
		steps: steps,
		in:    in,
		out:   out,
		tel:   telemetry.NewScopedAPI("console", tel),
	}
}

func (c *Console) printMenu() {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(c.out)
	t.AppendHeader(table.Row{"Choice", "Action"})
	for _, ch := range choices {
		t.AppendRow(table.Row{ch.key, ch.action})
	}
	t.Render()
	fmt.Fprint(c.out, "Enter your choice: ")
}

// readLines feeds input lines to the returned channel until the reader is
// exhausted or done is closed. A read that blocks forever keeps its
// goroutine alive, which only happens for stdin at process exit.
func (c *Console) readLines(done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			c.tel.ReportWarning(report_console, fmt.Errorf("read input: %w", err))
		}
	}()
	return lines
}

// Run shows the menu until the user quits, input ends or ctx is canceled.
// The browser session is released on every one of those paths.
func (c *Console) Run(ctx context.Context) error {
	defer func() {
		err := c.steps.Close()
		if err != nil {
			fmt.Fprintln(c.out, "Failed to close browser:", err)
		}
	}()

	done := make(chan struct{})
	defer close(done)
	lines := c.readLines(done)
	for {
		c.printMenu()

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(c.out)
			return nil
		}

		quit := c.handle(ctx, strings.TrimSpace(line))
		if quit {
			return nil
		}
	}
}

func (c *Console) handle(ctx context.Context, key string) (quit bool) {
	switch key {
	case "1":
		err := c.steps.Access(ctx)
		if err != nil {
			fmt.Fprintln(c.out, "Failed to access site:", err)
			return false
		}
		fmt.Fprintln(c.out, "Site loaded.")
	case "2":
		ok, err := c.steps.Login(ctx)
		switch {
		case err != nil:
			fmt.Fprintln(c.out, "Login failed:", err)
		case !ok:
			fmt.Fprintln(c.out, "Login failed or page did not load properly.")
		default:
			fmt.Fprintln(c.out, "Logged in.")
		}
	case "3":
		status, err := c.steps.Check(ctx)
		if err != nil {
			fmt.Fprintln(c.out, "Check failed:", err)
			return false
		}
		if status.Fault != nil {
			fmt.Fprintln(c.out, "Could not read submission status, assuming submitted:", status.Fault)
		}
		fmt.Fprintln(c.out, "Submitted:", status.Submitted)
		c.deliver(ctx)
	case "4":
		c.deliver(ctx)
	case "0":
		return true
	default:
		fmt.Fprintln(c.out, "Invalid choice")
	}
	return false
}

func (c *Console) deliver(ctx context.Context) {
	d, err := c.steps.Notify(ctx)
	if err != nil {
		fmt.Fprintln(c.out, "Nothing to send:", err)
		return
	}
	if d.Err != nil {
		fmt.Fprintf(c.out, "Failed to send %q via %s: %s\n", d.Message, d.Transport, d.Err)
		return
	}
	fmt.Fprintf(c.out, "Sent %q via %s.\n", d.Message, d.Transport)
}
