package service

import (
	"context"
	"testing"

	"sales-assistant-be/internal/dto"
	"sales-assistant-be/internal/entity"
	"sales-assistant-be/internal/pkg/serverutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeadRepo struct {
	created []*entity.Lead
}

func (r *fakeLeadRepo) Create(ctx context.Context, lead *entity.Lead) error {
	r.created = append(r.created, lead)
	return nil
}

func (r *fakeLeadRepo) FindAll(ctx context.Context) ([]*entity.Lead, error) {
	return r.created, nil
}

type fakeEmailService struct {
	sent int
}

func (s *fakeEmailService) SendLeadNotification(toEmail, name, email, company, projectIdea string) error {
	s.sent++
	return nil
}

func TestCaptureFromConversation(t *testing.T) {
	repo := &fakeLeadRepo{}
	mail := &fakeEmailService{}
	svc := NewLeadService(repo, mail, nil, "sales@example.com", nopLogger{})

	err := svc.CaptureFromConversation(context.Background(), "session-1", dto.CaptureLeadRequest{
		Name:        "Ada Lovelace",
		Email:       "ada@example.com",
		Company:     "Analytical Engines Ltd",
		ProjectIdea: "A chatbot for our storefront",
	})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, "session-1", repo.created[0].SessionId)
	assert.Equal(t, "ada@example.com", repo.created[0].Email)
	assert.Equal(t, 1, mail.sent)
}

func TestCaptureFromConversationRejectsInvalidEmail(t *testing.T) {
	repo := &fakeLeadRepo{}
	svc := NewLeadService(repo, &fakeEmailService{}, nil, "sales@example.com", nopLogger{})

	err := svc.CaptureFromConversation(context.Background(), "session-1", dto.CaptureLeadRequest{
		Name:  "Ada",
		Email: "not-an-email",
	})

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Empty(t, repo.created)
}

func TestCaptureWithoutSalesInboxSkipsEmail(t *testing.T) {
	repo := &fakeLeadRepo{}
	mail := &fakeEmailService{}
	svc := NewLeadService(repo, mail, nil, "", nopLogger{})

	err := svc.CaptureFromConversation(context.Background(), "session-1", dto.CaptureLeadRequest{
		Name:  "Ada",
		Email: "ada@example.com",
	})
	require.NoError(t, err)
	assert.Len(t, repo.created, 1)
	assert.Zero(t, mail.sent)
}

func TestLeadList(t *testing.T) {
	repo := &fakeLeadRepo{}
	svc := NewLeadService(repo, &fakeEmailService{}, nil, "", nopLogger{})

	require.NoError(t, svc.CaptureFromConversation(context.Background(), "s1", dto.CaptureLeadRequest{
		Name:  "Ada",
		Email: "ada@example.com",
	}))

	leads, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Ada", leads[0].Name)
	assert.Equal(t, "s1", leads[0].SessionId)
}
