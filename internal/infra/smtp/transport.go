// internal/infra/smtp/transport.go
package smtp

import (
	"crypto/tls"
	"fmt"
	"io"
	"time"

	"deadline_notifier/internal/domain/mail"

	gomail "gopkg.in/gomail.v2"
)

// Transport dials one SMTP server per organization, configured from the
// organization's e-mail settings.
type Transport struct {
	settings *mail.Settings
}

func NewTransport(settings *mail.Settings) mail.Transport {
	return &Transport{settings: settings}
}

// Connect opens one authenticated SMTP connection. The returned sender is
// shared by every message of a run.
func (t *Transport) Connect() (mail.Sender, error) {
	d := gomail.NewDialer(t.settings.Host, t.settings.Port, t.settings.Username, t.settings.Password)
	d.SSL = t.settings.UseSSL
	if t.settings.UseTLS {
		// STARTTLS upgrade on a plain connection.
		d.TLSConfig = &tls.Config{ServerName: t.settings.Host}
	}

	sc, err := t.dial(d)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server %s:%d: %w", t.settings.Host, t.settings.Port, err)
	}
	return &sender{sc: sc}, nil
}

// dial enforces the configured connection timeout; gomail itself has no
// dial-timeout knob.
func (t *Transport) dial(d *gomail.Dialer) (gomail.SendCloser, error) {
	if t.settings.ConnectionTimeout <= 0 {
		return d.Dial()
	}

	type dialResult struct {
		sc  gomail.SendCloser
		err error
	}
	ch := make(chan dialResult, 1)
	go func() {
		sc, err := d.Dial()
		ch <- dialResult{sc: sc, err: err}
	}()

	select {
	case res := <-ch:
		return res.sc, res.err
	case <-time.After(t.settings.ConnectionTimeout):
		// The dial goroutine closes the late connection if it ever lands.
		go func() {
			if res := <-ch; res.sc != nil {
				_ = res.sc.Close()
			}
		}()
		return nil, fmt.Errorf("connection timed out after %s", t.settings.ConnectionTimeout)
	}
}

type sender struct {
	sc gomail.SendCloser
}

func (s *sender) Send(msg *mail.Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.BodyText)
	if msg.BodyHTML != "" {
		m.AddAlternative("text/html", msg.BodyHTML)
	}
	if att := msg.Attachment; att != nil {
		m.Attach(att.Name,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(att.Content)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {att.MIMEType}}),
		)
	}
	return gomail.Send(s.sc, m)
}

func (s *sender) Close() error {
	return s.sc.Close()
}
