package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/thumbsmith/thumbsmith/internal/config"
)

// Mailer sends best-effort notification emails. Missing SMTP configuration
// is a silent no-op; delivery failures are logged and swallowed.
type Mailer struct {
	host         string
	port         int
	username     string
	password     string
	from         string
	dashboardURL string
	log          *slog.Logger
}

func New(cfg config.Config, log *slog.Logger) *Mailer {
	return &Mailer{
		host:         cfg.SMTPHost,
		port:         cfg.SMTPPort,
		username:     cfg.SMTPUser,
		password:     cfg.SMTPPass,
		from:         cfg.SMTPFrom,
		dashboardURL: cfg.DashboardURL,
		log:          log,
	}
}

func (m *Mailer) SendThumbnailReady(to, name, prompt, imageURL string) {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour thumbnail for %q is ready.\n\nImage: %s\n",
		name, prompt, imageURL,
	)
	if m.dashboardURL != "" {
		body += fmt.Sprintf("\nView it on your dashboard: %s\n", m.dashboardURL)
	}
	m.send(to, "Your thumbnail is ready", body)
}

func (m *Mailer) SendPremiumActivated(to, name string) {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour payment was successful and your account has been upgraded to Premium. "+
			"You now have unlimited thumbnail generations.\n",
		name,
	)
	if m.dashboardURL != "" {
		body += fmt.Sprintf("\nGo to your dashboard: %s\n", m.dashboardURL)
	}
	m.send(to, "Premium activated", body)
}

func (m *Mailer) send(to, subject, body string) {
	if m.host == "" || m.username == "" {
		m.log.Debug("smtp not configured, skipping email", "to", to, "subject", subject)
		return
	}

	msg := strings.Join([]string{
		"From: Thumbsmith <" + m.from + ">",
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		m.log.Error("send email failed", "to", to, "subject", subject, "err", err)
		return
	}
	m.log.Info("email sent", "to", to, "subject", subject)
}
