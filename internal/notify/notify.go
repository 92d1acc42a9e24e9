// Package notify sends an optional mail report when an attempt reaches a
// terminal state.
package notify

import (
	"crypto/tls"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"sftpgrab/internal/config"
	"sftpgrab/internal/models"
)

// SendTransferReport mails a plain-text summary of one finished attempt.
func SendTransferReport(smtp config.SMTP, entry models.HistoryEntry, res models.Result) error {
	m := gomail.NewMessage()
	m.SetHeader("From", smtp.From)
	m.SetHeader("To", smtp.To)
	m.SetHeader("Subject", fmt.Sprintf("sftpgrab: %s of %s %s", entry.Type, entry.File, entry.Status))

	body := fmt.Sprintf("Date:   %s\nType:   %s\nFile:   %s\nStatus: %s\n",
		entry.Date, entry.Type, entry.File, entry.Status)
	if res.EffectivePath != "" {
		body += fmt.Sprintf("Path:   %s\n", res.EffectivePath)
	}
	if res.Err != nil {
		body += fmt.Sprintf("Error:  %v\n", res.Err)
	}
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(smtp.Host, smtp.Port, smtp.From, smtp.Pass)
	// STARTTLS on the submission port.
	d.TLSConfig = &tls.Config{ServerName: smtp.Host}

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send transfer report: %w", err)
	}
	return nil
}
