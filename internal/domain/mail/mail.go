// internal/domain/mail/mail.go
package mail

// Message is one rendered outbound e-mail.
type Message struct {
	From       string
	To         []string
	Subject    string
	BodyText   string
	BodyHTML   string // optional alternative part
	Attachment *Attachment
}

// Attachment is an optional generated document attached to a message.
type Attachment struct {
	Name     string
	Content  []byte
	MIMEType string
}

// Sender is one open transport connection. A single Sender is shared by every
// message of a notification run and must be closed on all exit paths.
type Sender interface {
	Send(msg *Message) error
	Close() error
}

// Transport dials the outbound channel. This decouples the dispatch logic
// from the concrete SMTP implementation.
type Transport interface {
	Connect() (Sender, error)
}
