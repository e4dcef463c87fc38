package contact

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/storefront/internal/notify"
	domain "github.com/donaldgifford/storefront/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockPoster struct {
	mock.Mock
}

func (m *mockPoster) SubmitContact(ctx context.Context, path string, req *domain.ContactRequest) error {
	return m.Called(ctx, path, req).Error(0)
}

func validRequest() *domain.ContactRequest {
	return &domain.ContactRequest{
		Nom:       "Awa Diop",
		Email:     "awa@example.com",
		Telephone: "+221 77 000 00 00",
		Message:   "Je souhaite un devis pour 200 sacs de ciment",
		Type:      "devis",
		ServiceID: "svc-42",
	}
}

func TestValidator(t *testing.T) {
	t.Parallel()

	v := NewValidator()
	require.NoError(t, v.Validate(validRequest()))

	err := v.Validate(&domain.ContactRequest{Email: "not-an-email"})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{
		"nom":     "is required",
		"email":   "must be a valid email address",
		"message": "is required",
		"type":    "is required",
	}, verr.Fields)
	assert.Equal(t,
		"validation failed: email: must be a valid email address; message: is required; nom: is required; type: is required",
		err.Error(),
	)
}

func TestSubmitter_Success(t *testing.T) {
	t.Parallel()

	req := validRequest()
	p := &mockPoster{}
	p.On("SubmitContact", mock.Anything, DefaultPath, req).Return(nil).Once()

	rec := &notify.Recorder{}
	ops := &notify.Recorder{}
	s := NewSubmitter(p, rec, quietLogger(), WithOpsNotifier(ops))

	assert.True(t, s.Submit(context.Background(), req))
	p.AssertExpectations(t)
	assert.Equal(t, []notify.Notification{notify.Success(MsgSent)}, rec.All())

	require.Len(t, ops.All(), 1)
	assert.Equal(t, notify.LevelInfo, ops.All()[0].Level)
	assert.Equal(t, "New devis request", ops.All()[0].Title)
	assert.Contains(t, ops.All()[0].Message, "awa@example.com")
}

func TestSubmitter_InvalidRequestIsNotSent(t *testing.T) {
	t.Parallel()

	p := &mockPoster{}
	rec := &notify.Recorder{}
	s := NewSubmitter(p, rec, quietLogger())

	assert.False(t, s.Submit(context.Background(), &domain.ContactRequest{Nom: "Awa"}))
	p.AssertNotCalled(t, "SubmitContact", mock.Anything, mock.Anything, mock.Anything)
	require.Len(t, rec.All(), 1)
	assert.Equal(t, notify.LevelError, rec.All()[0].Level)
	assert.Contains(t, rec.All()[0].Message, "email: is required")
}

func TestSubmitter_BackendError(t *testing.T) {
	t.Parallel()

	p := &mockPoster{}
	p.On("SubmitContact", mock.Anything, "/contact", mock.Anything).
		Return(errors.New("API error (HTTP 503)")).Once()

	rec := &notify.Recorder{}
	ops := &notify.Recorder{}
	s := NewSubmitter(p, rec, quietLogger(), WithPath("/contact"), WithOpsNotifier(ops))

	assert.False(t, s.Submit(context.Background(), validRequest()))
	assert.Equal(t, []notify.Notification{notify.Error(MsgFailed)}, rec.All())
	assert.Empty(t, ops.All())
	p.AssertExpectations(t)
}

func TestWithPath_EmptyKeepsDefault(t *testing.T) {
	t.Parallel()

	s := NewSubmitter(&mockPoster{}, &notify.Recorder{}, quietLogger(), WithPath(""))
	assert.Equal(t, DefaultPath, s.path)
}
