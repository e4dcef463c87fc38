package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/storefront/internal/api/handlers"
	"github.com/donaldgifford/storefront/internal/contact"
	"github.com/donaldgifford/storefront/internal/notify"
	domain "github.com/donaldgifford/storefront/pkg/types"
)

func TestContactHandler_Submit(t *testing.T) {
	t.Parallel()

	valid := map[string]any{
		"nom":       "Awa Diop",
		"email":     "awa@example.com",
		"telephone": "+221 77 000 00 00",
		"message":   "Devis pour 40 sacs de ciment",
		"type":      "devis",
		"serviceId": "svc-9",
	}

	tests := []struct {
		name       string
		body       map[string]any
		setupMock  func(*mockBackend)
		wantStatus int
		wantBody   []string
	}{
		{
			name: "sent",
			body: valid,
			setupMock: func(m *mockBackend) {
				m.On("SubmitContact", mock.Anything, contact.DefaultPath,
					mock.MatchedBy(func(r *domain.ContactRequest) bool {
						return r.Type == "devis" && r.ServiceID == "svc-9"
					})).
					Return(nil).Once()
			},
			wantStatus: http.StatusCreated,
			wantBody:   []string{`"sent":true`, contact.MsgSent},
		},
		{
			name:       "missing fields",
			body:       map[string]any{"nom": "", "email": "not-an-email"},
			setupMock:  func(*mockBackend) {},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody: []string{
				`"location":"body.email"`,
				`must be a valid email address`,
				`"location":"body.message"`,
				`"location":"body.nom"`,
			},
		},
		{
			name: "backend rejects",
			body: valid,
			setupMock: func(m *mockBackend) {
				m.On("SubmitContact", mock.Anything, contact.DefaultPath, mock.Anything).
					Return(errors.New("HTTP 500")).Once()
			},
			wantStatus: http.StatusBadGateway,
			wantBody:   []string{contact.MsgFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mb := &mockBackend{}
			tt.setupMock(mb)

			ops := &notify.Recorder{}
			s := contact.NewSubmitter(mb, notify.NewNoOpNotifier(quietLogger()), quietLogger(),
				contact.WithOpsNotifier(ops))

			_, api := humatest.New(t)
			handlers.RegisterContactRoutes(api, handlers.NewContactHandler(s))

			resp := api.Post("/api/v1/contact", tt.body)
			require.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			for _, want := range tt.wantBody {
				assert.Contains(t, resp.Body.String(), want)
			}
			mb.AssertExpectations(t)

			if tt.wantStatus == http.StatusCreated {
				require.Len(t, ops.All(), 1)
				assert.Equal(t, "New devis request", ops.All()[0].Title)
			} else {
				assert.Empty(t, ops.All())
			}
		})
	}
}
