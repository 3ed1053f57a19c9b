package accounts

import "context"

// MailKind selects the template the delivery collaborator renders.
type MailKind string

const (
	// MailActivation carries the account activation link
	MailActivation MailKind = "activation"
	// MailPasswordReset carries the password reset link
	MailPasswordReset MailKind = "reset"
)

// Mailer is the external delivery collaborator. Senders treat failure as
// recoverable: the triggering operation logs and proceeds.
type Mailer interface {
	Send(ctx context.Context, kind MailKind, user *User, token string) error
}

// LogMailer is the no-infrastructure fallback: it writes the notification to
// the logger instead of delivering mail. Useful in development and tests.
type LogMailer struct {
	Logger Logger
}

func (m LogMailer) logger() Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return defLogger{}
}

// Send implements Mailer.
func (m LogMailer) Send(ctx context.Context, kind MailKind, user *User, token string) error {
	m.logger().Info("====== SENDING EMAIL NOTIFICATION =======")
	m.logger().Info("to: %s", user.Email)
	switch kind {
	case MailActivation:
		m.logger().Info("link: /account-activation/%s?email=%s", token, user.Email)
	case MailPasswordReset:
		m.logger().Info("link: /password-reset/%s?email=%s", token, user.Email)
	}
	return nil
}
