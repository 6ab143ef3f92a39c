// internal/app/dispatcher.go
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"deadline_notifier/internal/domain/mail"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Transport failure classification, matched against the lower-cased error
// text. Unmatched errors count as retryable: one extra retry beats silently
// dropping a message.
var permanentErrorPatterns = []string{
	"authentication failed",
	"invalid login",
	"invalid credentials",
	"username and password not accepted",
	"mailbox unavailable",
	"user unknown",
	"relay access denied",
}

var retryableErrorPatterns = []string{
	"timeout",
	"timed out",
	"connection refused",
	"connection reset",
	"temporarily unavailable",
	"too many connections",
	"server busy",
	"try again later",
}

// closedConnectionPatterns mark a transport connection that died mid-run; the
// dispatcher re-dials before the next attempt instead of aborting the
// remaining targets.
var closedConnectionPatterns = []string{
	"use of closed network connection",
	"connection closed",
	"broken pipe",
	"eof",
}

// ErrNotConnected signals a programming-contract violation: Send was called
// without an open transport connection. Unlike delivery failures, this
// escalates to the caller.
var ErrNotConnected = fmt.Errorf("dispatcher has no open transport connection")

// DispatchConfig is the per-run send pacing, built from the organization's
// e-mail settings.
type DispatchConfig struct {
	DelaySeconds float64
	MaxRetries   int
}

// SendResult reports the outcome of one Send call.
type SendResult struct {
	OK           bool
	Attempts     int
	ErrorMessage string // last transport error when OK is false
}

// Dispatcher delivers rendered messages over a single pooled transport
// connection, serializing all sends of a run at a minimum interval and
// retrying transient failures with exponential backoff. It knows nothing
// about runs or targets; it returns a plain per-send result.
type Dispatcher struct {
	transport  mail.Transport
	limiter    *rate.Limiter
	maxRetries int
	logger     *logrus.Logger

	sender mail.Sender
	sleep  func(time.Duration) // swapped in tests

	sent    int
	failed  int
	retries int
}

func NewDispatcher(transport mail.Transport, cfg DispatchConfig, logger *logrus.Logger) *Dispatcher {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if interval := time.Duration(cfg.DelaySeconds * float64(time.Second)); interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return &Dispatcher{
		transport:  transport,
		limiter:    limiter,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// Open dials the transport connection shared by every send of the run.
func (d *Dispatcher) Open() error {
	sender, err := d.transport.Connect()
	if err != nil {
		return fmt.Errorf("failed to open transport connection: %w", err)
	}
	d.sender = sender
	d.logger.Info("Transport connection opened.")
	return nil
}

// Close releases the connection and logs run totals. Safe to call on every
// exit path, including after a failed Open.
func (d *Dispatcher) Close() {
	if d.sender == nil {
		return
	}
	if err := d.sender.Close(); err != nil {
		d.logger.Warnf("Error closing transport connection: %v", err)
	}
	d.sender = nil
	d.logger.Infof("Transport connection closed. Totals: sent=%d, failed=%d, retries=%d.",
		d.sent, d.failed, d.retries)
}

// Stats returns the send totals accumulated over the run.
func (d *Dispatcher) Stats() (sent, failed, retries int) {
	return d.sent, d.failed, d.retries
}

// Send delivers one message. The first attempt waits out the configured
// minimum interval since the previous send; retries pace themselves with
// 2^attempt seconds of backoff instead. Permanent errors fail immediately.
func (d *Dispatcher) Send(ctx context.Context, msg *mail.Message) (SendResult, error) {
	if d.sender == nil {
		return SendResult{}, ErrNotConnected
	}

	recipients := strings.Join(msg.To, ", ")
	attempts := 0
	for {
		if attempts == 0 {
			if err := d.limiter.Wait(ctx); err != nil {
				return SendResult{ErrorMessage: err.Error()}, fmt.Errorf("rate limit wait aborted: %w", err)
			}
		}
		attempts++

		err := d.sender.Send(msg)
		if err == nil {
			d.sent++
			if attempts > 1 {
				d.logger.Infof("Delivery to %s succeeded after %d attempt(s).", recipients, attempts)
			}
			return SendResult{OK: true, Attempts: attempts}, nil
		}

		if !isRetryableTransportError(err) || attempts > d.maxRetries {
			d.failed++
			d.logger.Errorf("Delivery to %s failed after %d attempt(s): %v", recipients, attempts, err)
			return SendResult{Attempts: attempts, ErrorMessage: err.Error()}, nil
		}

		if isClosedConnectionError(err) {
			d.reconnect()
		}

		backoff := time.Duration(1<<uint(attempts)) * time.Second
		d.logger.Warnf("Transient delivery error for %s (attempt %d/%d): %v. Retrying in %s.",
			recipients, attempts, d.maxRetries+1, err, backoff)
		d.sleep(backoff)
		d.retries++
	}
}

// reconnect re-dials the transport after a mid-run connection death.
// Best-effort: when the dial fails, the next attempt reuses the dead sender
// and surfaces the resulting error through the normal retry path.
func (d *Dispatcher) reconnect() {
	if d.sender != nil {
		_ = d.sender.Close()
	}
	sender, err := d.transport.Connect()
	if err != nil {
		d.logger.Warnf("Could not reopen transport connection: %v", err)
		return
	}
	d.sender = sender
	d.logger.Info("Transport connection reopened.")
}

func isRetryableTransportError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range permanentErrorPatterns {
		if strings.Contains(msg, pattern) {
			return false
		}
	}
	for _, pattern := range retryableErrorPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return true
}

func isClosedConnectionError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range closedConnectionPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
