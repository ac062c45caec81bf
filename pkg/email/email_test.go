package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rilesCL/Projet-Leandrose-sub000/config"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
)

type outbox struct {
	mu   sync.Mutex
	to   []string
	msgs []string
	fail map[string]bool
}

func (o *outbox) send(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail[to[0]] {
		return errors.New("mailbox unavailable")
	}
	o.to = append(o.to, to...)
	o.msgs = append(o.msgs, string(msg))
	return nil
}

func configured() *config.Config {
	return &config.Config{
		SMTPHost:      "smtp.example.com",
		SMTPPort:      "587",
		SMTPUsername:  "user",
		SMTPPassword:  "pass",
		SMTPFromEmail: "stages@example.com",
		FrontendURL:   "https://stages.example.com",
	}
}

func recipients() []domain.User {
	return []domain.User{
		{ID: 1, Email: "lea@example.com", FirstName: "Léa", LastName: "Tremblay"},
		{ID: 2, Email: "rh@acme.example", FirstName: "Marc"},
		{ID: 3}, // no address
	}
}

func TestAgreementAwaitingSignatures(t *testing.T) {
	box := &outbox{}
	svc := NewEmailService(configured()).WithSender(box.send)
	title := "Développeur backend"

	err := svc.AgreementAwaitingSignatures(context.Background(), &domain.Agreement{ID: 7, OfferTitle: &title}, recipients())
	require.NoError(t, err)

	assert.Equal(t, []string{"lea@example.com", "rh@acme.example"}, box.to)
	require.Len(t, box.msgs, 2)
	assert.Contains(t, box.msgs[0], "Bonjour Léa Tremblay")
	assert.Contains(t, box.msgs[0], "https://stages.example.com/agreements/7")
	assert.Contains(t, box.msgs[0], "Subject: =?utf-8?q?")
}

func TestAgreementValidatedReportsFailedRecipients(t *testing.T) {
	box := &outbox{fail: map[string]bool{"rh@acme.example": true}}
	svc := NewEmailService(configured()).WithSender(box.send)

	err := svc.AgreementValidated(context.Background(), &domain.Agreement{ID: 7}, recipients())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rh@acme.example")
	// The other parties are still notified.
	assert.Equal(t, []string{"lea@example.com"}, box.to)
	assert.True(t, strings.Contains(box.msgs[0], "validée"))
}

func TestUnconfiguredServiceSendsNothing(t *testing.T) {
	box := &outbox{}
	svc := NewEmailService(&config.Config{}).WithSender(box.send)

	assert.False(t, svc.IsConfigured())
	require.NoError(t, svc.AgreementValidated(context.Background(), &domain.Agreement{ID: 1}, recipients()))
	assert.Empty(t, box.to)
}
