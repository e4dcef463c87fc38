package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/url"

	"github.com/stretchr/testify/mock"

	domain "github.com/donaldgifford/storefront/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockBackend stands in for *client.Client.
type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) List(
	ctx context.Context,
	path string,
	envelope domain.Envelope,
	params url.Values,
) (*domain.RawPage, error) {
	args := m.Called(ctx, path, envelope, params)
	page, _ := args.Get(0).(*domain.RawPage)
	return page, args.Error(1)
}

func (m *mockBackend) GetItem(ctx context.Context, path, id string) (json.RawMessage, error) {
	args := m.Called(ctx, path, id)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *mockBackend) Ping(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *mockBackend) Categories(ctx context.Context, path string) ([]domain.Category, error) {
	args := m.Called(ctx, path)
	cats, _ := args.Get(0).([]domain.Category)
	return cats, args.Error(1)
}

func (m *mockBackend) SubmitContact(ctx context.Context, path string, req *domain.ContactRequest) error {
	return m.Called(ctx, path, req).Error(0)
}

func testVerticals() map[string]domain.Vertical {
	return map[string]domain.Vertical{
		"materials": {
			Title:      "Matériaux",
			Endpoint:   "/products/all",
			Envelope:   domain.EnvelopeProducts,
			Categories: "/products/categories",
			Params:     map[string]string{"productType": "materiau", "status": "active"},
			PageSize:   12,
		},
		"tourism": {
			Title:    "Tourisme",
			Endpoint: "/experiences",
			Envelope: domain.EnvelopeData,
			PageSize: 12,
		},
	}
}

func raw(s string) json.RawMessage {
	return json.RawMessage(s)
}
