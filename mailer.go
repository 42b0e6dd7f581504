package main

import (
	"fmt"
	"log"

	gomail "gopkg.in/gomail.v2"
)

// MailSender delivers a price-drop alert to one recipient. Delivery is
// best effort; callers isolate per-recipient failures.
type MailSender interface {
	Send(to string) error
}

const alertSubject = "Price Drop Alert!"

const alertBody = `Hey there,

Good news!

One of the products you're tracking has just dropped in price. Check your dashboard to see the updated price.

Don't miss out on this great deal!

Best regards,
TrackIT Team`

// SMTPMailer sends alerts through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, from, password string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, from, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", alertSubject)
	msg.SetBody("text/plain", alertBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %v", to, err)
	}
	return nil
}

// LogMailer stands in when no SMTP relay is configured; alerts are
// only logged.
type LogMailer struct{}

func (LogMailer) Send(to string) error {
	log.Printf("[Mailer] (dry run) price drop alert for %s", to)
	return nil
}
