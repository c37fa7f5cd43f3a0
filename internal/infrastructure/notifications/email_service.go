package notifications

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/you/accountsvc/domain"
)

// EmailServiceImpl implements domain.Mailer over SMTP
type EmailServiceImpl struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewEmailService creates a new SMTP mailer
func NewEmailService(host string, port int, username, password, from string) domain.Mailer {
	return &EmailServiceImpl{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// SendOTPCode implements domain.Mailer. With no SMTP host configured the code
// is logged instead of sent, which is how dev and test environments run.
func (e *EmailServiceImpl) SendOTPCode(to, code string, purpose domain.OTPPurpose) error {
	subject := "Your login code"
	if purpose == domain.PurposeRegister {
		subject = "Your registration code"
	}

	if e.host == "" {
		log.Info().Str("to", to).Str("code", code).Str("purpose", string(purpose)).
			Msg("smtp not configured, logging verification code")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", e.body(to, code, purpose))

	d := gomail.NewDialer(e.host, e.port, e.username, e.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification mail: %w", err)
	}
	return nil
}

func (e *EmailServiceImpl) body(to, code string, purpose domain.OTPPurpose) string {
	action := "log in"
	if purpose == domain.PurposeRegister {
		action = "register"
	}
	return fmt.Sprintf(
		`<p>You are using <strong>%s</strong> to %s.</p>
<p>Your verification code is:</p>
<p style="font-size:32px;font-weight:bold;letter-spacing:8px;">%s</p>
<p>The code is valid for 10 minutes. Do not share it with anyone.
If this was not you, ignore this mail.</p>`,
		to, action, code,
	)
}
