package notify

import (
	"context"
	"fmt"

	"github.com/playwatch/platform/internal/domain"
	"gopkg.in/gomail.v2"
)

// Mailer delivers alerts over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer creates an SMTP alert dispatcher.
func NewMailer(host string, port int, user, password, from string) *Mailer {
	if from == "" {
		from = user
	}
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (m *Mailer) Name() string { return "email" }

// Dispatch sends the alert email if the contact has an email address.
func (m *Mailer) Dispatch(ctx context.Context, contact domain.Contact, alert Alert) (bool, error) {
	if contact.Email == "" {
		return false, nil
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, "Steam Playtime Monitor")
	msg.SetHeader("To", contact.Email)
	msg.SetHeader("Subject", alertSubject())
	msg.SetBody("text/html", fmt.Sprintf(`
		<p>Dear guardian,</p>
		<p>%s</p>
		<p><b>Total playtime:</b> %.2f hours (%d minutes)</p>
		<p>This message was sent by your playtime monitor.</p>
	`, alertText(alert), alert.TotalHours(), alert.TotalMinutes))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return true, fmt.Errorf("send notification email: %w", err)
	}
	return true, nil
}
