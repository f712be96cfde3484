package notification

import (
	"gopkg.in/gomail.v2"
)

// SMTPConfig configures the email gateway.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailGateway sends plain-text notification mail.
type EmailGateway struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailGateway(cfg SMTPConfig) *EmailGateway {
	return &EmailGateway{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (g *EmailGateway) Send(recipient, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", g.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return g.dialer.DialAndSend(m)
}
