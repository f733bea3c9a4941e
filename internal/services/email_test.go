package services

import (
	"context"
	"errors"
	"testing"

	"confernet/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	to, subject string
	err         error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	f.to, f.subject = to, subject
	return f.err
}

type fakeRenderer struct {
	err error
}

func (f fakeRenderer) Render(name string, data any) (string, string, string, error) {
	return "Welcome to ConferNet", "<p>hi</p>", "hi", f.err
}

func TestEmailService_SendWelcomeMessage(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewEmailService(mailer, fakeRenderer{}, discardLogger())

	err := svc.SendWelcomeMessage(context.Background(), &domain.WelcomeMessageEmailData{Email: "ada@example.com", Role: "speaker"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", mailer.to)
	assert.Equal(t, "Welcome to ConferNet", mailer.subject)

	require.Error(t, svc.SendWelcomeMessage(context.Background(), nil))

	svc = NewEmailService(mailer, fakeRenderer{err: errors.New("missing template")}, discardLogger())
	err = svc.SendWelcomeMessage(context.Background(), &domain.WelcomeMessageEmailData{Email: "x@example.com"})
	require.ErrorContains(t, err, "missing template")

	svc = NewEmailService(&fakeMailer{err: errors.New("throttled")}, fakeRenderer{}, discardLogger())
	err = svc.SendWelcomeMessage(context.Background(), &domain.WelcomeMessageEmailData{Email: "x@example.com"})
	require.ErrorContains(t, err, "throttled")
}
