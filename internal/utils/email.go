package utils

import (
	"log"
	"os"
	"strconv"

	"github.com/wneessen/go-mail"
)

// SMTPMailer envoie les e-mails transactionnels via SMTP.
// Les échecs d'envoi ne doivent jamais faire échouer la mutation
// principale : les appelants traitent l'e-mail en best-effort.
type SMTPMailer struct {
	Host string
	Port int
	From string
}

func NewSMTPMailer() *SMTPMailer {
	port := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			port = p
		}
	}
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "ssl0.ovh.net"
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@velora.shop"
	}
	return &SMTPMailer{Host: host, Port: port, From: from}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := mail.NewMsg()

	if err := msg.From(m.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(m.Host,
		mail.WithPort(m.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}
