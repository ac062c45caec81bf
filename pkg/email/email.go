package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"

	"github.com/rilesCL/Projet-Leandrose-sub000/config"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
)

// Sender delivers one HTML message. Tests swap it out.
type Sender func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService notifies agreement parties over SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	appURL    string
	send      Sender
}

// NewEmailService creates a new email service from SMTP configuration
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
		appURL:    cfg.FrontendURL,
		send:      smtp.SendMail,
	}
}

// WithSender replaces the SMTP transport.
func (s *EmailService) WithSender(send Sender) *EmailService {
	s.send = send
	return s
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}

type agreementEmailData struct {
	RecipientName string
	AgreementID   int64
	OfferTitle    string
	Headline      string
	Body          string
	Link          string
}

const agreementEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Headline}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1e3a5f; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>{{.Headline}}</h1></div>
        <div class="content">
            <p>Bonjour {{.RecipientName}},</p>
            <p>{{.Body}}</p>
            <p>Entente n° {{.AgreementID}}{{if .OfferTitle}} : {{.OfferTitle}}{{end}}</p>
            <p><a href="{{.Link}}">Consulter l'entente</a></p>
        </div>
        <div class="footer"><p>Message automatique du service des stages.</p></div>
    </div>
</body>
</html>`

var agreementTmpl = template.Must(template.New("agreement").Parse(agreementEmailTemplate))

// AgreementAwaitingSignatures asks every recipient to sign.
func (s *EmailService) AgreementAwaitingSignatures(ctx context.Context, ag *domain.Agreement, recipients []domain.User) error {
	return s.sendAgreementMail(ctx, ag, recipients,
		"Entente de stage à signer",
		"Une entente de stage est prête et attend votre signature.")
}

// AgreementValidated tells every recipient the agreement is fully signed.
func (s *EmailService) AgreementValidated(ctx context.Context, ag *domain.Agreement, recipients []domain.User) error {
	return s.sendAgreementMail(ctx, ag, recipients,
		"Entente de stage validée",
		"Toutes les parties ont signé l'entente de stage. Elle est maintenant validée.")
}

func (s *EmailService) sendAgreementMail(ctx context.Context, ag *domain.Agreement, recipients []domain.User, headline, body string) error {
	if !s.IsConfigured() {
		return nil
	}
	offerTitle := ""
	if ag.OfferTitle != nil {
		offerTitle = *ag.OfferTitle
	}

	var failed []string
	for _, r := range recipients {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.Email == "" {
			continue
		}
		var buf bytes.Buffer
		err := agreementTmpl.Execute(&buf, agreementEmailData{
			RecipientName: r.FullName(),
			AgreementID:   ag.ID,
			OfferTitle:    offerTitle,
			Headline:      headline,
			Body:          body,
			Link:          fmt.Sprintf("%s/agreements/%d", s.appURL, ag.ID),
		})
		if err != nil {
			return fmt.Errorf("failed to execute email template: %w", err)
		}
		if err := s.deliver(r.Email, headline, buf.String()); err != nil {
			failed = append(failed, r.Email)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to send email to %s", strings.Join(failed, ", "))
	}
	return nil
}

func (s *EmailService) deliver(to, subject, html string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail, to, mime.QEncoding.Encode("utf-8", subject), html,
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.send(addr, auth, s.fromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
