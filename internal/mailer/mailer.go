package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/smtp"
	"time"

	"vinestore-be/internal/apperr"
	"vinestore-be/internal/config"
	"vinestore-be/internal/logger"
	"vinestore-be/internal/metrics"

	"go.uber.org/zap"
)

const resendAPIURL = "https://api.resend.com/emails"

// Mailer delivers transactional mail through the Resend HTTP API, falling
// back to plain SMTP when no API key is configured.
type Mailer struct {
	apiKey     string
	apiURL     string
	fromEmail  string
	adminEmail string
	baseURL    string

	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string

	client  *http.Client
	metrics *metrics.Registry
}

func New(cfg *config.Config, reg *metrics.Registry) *Mailer {
	return &Mailer{
		apiKey:     cfg.ResendAPIKey,
		apiURL:     resendAPIURL,
		fromEmail:  cfg.FromEmail,
		adminEmail: cfg.AdminEmail,
		baseURL:    cfg.BaseURL,
		smtpHost:   cfg.SMTPHost,
		smtpPort:   cfg.SMTPPort,
		smtpUser:   cfg.SMTPUser,
		smtpPass:   cfg.SMTPPass,
		client:     &http.Client{Timeout: 10 * time.Second},
		metrics:    reg,
	}
}

// WithAPIURL points the client at a different endpoint. Test hook.
func (m *Mailer) WithAPIURL(url string) *Mailer {
	m.apiURL = url
	return m
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (m *Mailer) send(ctx context.Context, to, subject, html string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "mailer"),
		zap.String("to", to),
		zap.String("subject", subject),
	)

	var err error
	if m.apiKey != "" {
		err = m.sendViaResend(ctx, to, subject, html)
	} else if m.smtpHost != "" {
		err = m.sendViaSMTP(to, subject, html)
	} else {
		err = apperr.New(apperr.Upstream, "no mail transport configured")
	}

	if err != nil {
		m.metrics.EmailsFailed.Inc()
		log.Error("email delivery failed", zap.Error(err))
		return err
	}

	m.metrics.EmailsSent.Inc()
	log.Info("email delivered")
	return nil
}

func (m *Mailer) sendViaResend(ctx context.Context, to, subject, html string) error {
	body, err := json.Marshal(resendRequest{
		From:    m.fromEmail,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return apperr.Wrap(apperr.Upstream, "failed to encode email", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(body))
	if err != nil {
		return apperr.Wrap(apperr.Upstream, "failed to build email request", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.Upstream, "email provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperr.Newf(apperr.Upstream, "email provider returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}

func (m *Mailer) sendViaSMTP(to, subject, html string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		m.fromEmail, to, subject, html,
	)

	var auth smtp.Auth
	if m.smtpUser != "" {
		auth = smtp.PlainAuth("", m.smtpUser, m.smtpPass, m.smtpHost)
	}

	addr := m.smtpHost + ":" + m.smtpPort
	if err := smtp.SendMail(addr, auth, m.fromEmail, []string{to}, []byte(msg)); err != nil {
		return apperr.Wrap(apperr.Upstream, "smtp delivery failed", err)
	}
	return nil
}

// SendAccessRequestNotification tells the admin someone asked for access.
func (m *Mailer) SendAccessRequestNotification(ctx context.Context, requesterEmail, fullName, reason string) error {
	html := accessRequestNotificationHTML(requesterEmail, fullName, reason, m.baseURL)
	return m.send(ctx, m.adminEmail, "New access request", html)
}

// SendCredentials mails the approved requester their temporary password.
func (m *Mailer) SendCredentials(ctx context.Context, to, temporaryPassword string) error {
	html := credentialsHTML(to, temporaryPassword, m.baseURL)
	return m.send(ctx, to, "Your store account is ready", html)
}

// SendRejection tells the requester their request was declined.
func (m *Mailer) SendRejection(ctx context.Context, to string) error {
	return m.send(ctx, to, "Access request update", rejectionHTML())
}
