// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify sends operational failure mail to the configured
// operator address. Notification is best-effort: a mail failure is
// logged by the caller, never escalated.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/NationalGenomicsInfrastructure/LIMS2DB/pkg/types"
)

const subjectPrefix = "LIMS2DB notification - "

// Mailer sends notification mail over a plain SMTP relay.
type Mailer struct {
	cfg types.NotifyConfig

	// send is swapped out in tests.
	send func(addr, from string, to []string, msg []byte) error
}

// NewMailer builds a Mailer from configuration.
func NewMailer(cfg types.NotifyConfig) *Mailer {
	if cfg.SMTPAddr == "" {
		cfg.SMTPAddr = "localhost:25"
	}
	return &Mailer{
		cfg: cfg,
		send: func(addr, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}
}

// Enabled reports whether a receiver is configured.
func (m *Mailer) Enabled() bool {
	return m.cfg.Receiver != ""
}

// Failure mails the operator about a failed project update. A disabled
// mailer drops the message silently.
func (m *Mailer) Failure(projectID string, cause error) error {
	subject := subjectPrefix + "project " + projectID + " failed"
	body := fmt.Sprintf("Updating project %s failed:\n\n%v\n", projectID, cause)
	return m.mail(subject, body)
}

// RunSummary mails the operator the outcome counts of a full run.
func (m *Mailer) RunSummary(done, failed, skipped int) error {
	subject := subjectPrefix + "run finished"
	body := fmt.Sprintf("done: %d\nfailed: %d\nskipped: %d\n", done, failed, skipped)
	return m.mail(subject, body)
}

func (m *Mailer) mail(subject, body string) error {
	if !m.Enabled() {
		return nil
	}
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", m.cfg.Receiver)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := m.send(m.cfg.SMTPAddr, m.cfg.From, []string{m.cfg.Receiver}, []byte(msg.String())); err != nil {
		return fmt.Errorf("sending mail via %s: %w", m.cfg.SMTPAddr, err)
	}
	return nil
}
