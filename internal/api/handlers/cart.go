package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/storefront/internal/cart"
	"github.com/donaldgifford/storefront/internal/notify"
	domain "github.com/donaldgifford/storefront/pkg/types"
)

// CartHandler exposes the add-to-cart side effect to signed-in users. The
// user is taken from the X-User-ID header set by the auth proxy.
type CartHandler struct {
	items     ItemGetter
	service   cart.Service
	verticals map[string]domain.Vertical
	log       *slog.Logger
	opts      []cart.HandlerOption
}

// NewCartHandler creates a CartHandler. opts are applied to the per-request
// cart.Handler.
func NewCartHandler(
	items ItemGetter,
	service cart.Service,
	verticals map[string]domain.Vertical,
	log *slog.Logger,
	opts ...cart.HandlerOption,
) *CartHandler {
	return &CartHandler{
		items:     items,
		service:   service,
		verticals: verticals,
		log:       log,
		opts:      opts,
	}
}

// --- Input/Output types ---

// AddToCartInput is the input for adding an item to the cart.
type AddToCartInput struct {
	UserID string `header:"X-User-ID" doc:"Signed-in user ID"`
	Body   struct {
		Vertical string `json:"vertical" doc:"Vertical the item belongs to" minLength:"1"`
		ItemID   string `json:"item_id"  doc:"Item ID"                      minLength:"1"`
	}
}

// AddToCartOutput is the response for adding an item to the cart.
type AddToCartOutput struct {
	Body struct {
		Entry         domain.CartEntry      `json:"entry"`
		Notifications []notify.Notification `json:"notifications"`
	}
}

// CartOwnerInput identifies the cart owner.
type CartOwnerInput struct {
	UserID string `header:"X-User-ID" doc:"Signed-in user ID" required:"true" minLength:"1"`
}

// GetCartOutput is the response for reading the cart.
type GetCartOutput struct {
	Body struct {
		Entries []domain.CartEntry `json:"entries"`
		Count   int                `json:"count"`
	}
}

// --- Handlers ---

// Add loads the item from the backend and adds one unit of it to the
// caller's cart.
func (h *CartHandler) Add(
	ctx context.Context,
	input *AddToCartInput,
) (*AddToCartOutput, error) {
	if input.UserID == "" {
		return nil, huma.Error401Unauthorized(cart.MsgSignInRequired)
	}

	v, ok := h.verticals[input.Body.Vertical]
	if !ok {
		return nil, huma.Error404NotFound("unknown vertical " + strconv.Quote(input.Body.Vertical))
	}

	it, err := fetchItem(ctx, h.items, v, input.Body.ItemID)
	if err != nil {
		return nil, err
	}

	rec := &notify.Recorder{}
	session := cart.StaticSession{User: &domain.User{ID: input.UserID}}
	if !cart.NewHandler(session, h.service, rec, h.log, h.opts...).Add(ctx, it) {
		return nil, huma.Error502BadGateway(cart.MsgAddFailed)
	}

	resp := &AddToCartOutput{}
	resp.Body.Entry = cart.ToEntry(it)
	resp.Body.Notifications = rec.All()
	return resp, nil
}

// Get returns the caller's cart entries.
func (h *CartHandler) Get(
	ctx context.Context,
	input *CartOwnerInput,
) (*GetCartOutput, error) {
	entries, err := h.service.Entries(ctx, input.UserID)
	if err != nil {
		return nil, huma.Error500InternalServerError("reading cart failed", err)
	}
	if entries == nil {
		entries = []domain.CartEntry{}
	}

	resp := &GetCartOutput{}
	resp.Body.Entries = entries
	for _, e := range entries {
		resp.Body.Count += e.Quantity
	}
	return resp, nil
}

// Clear empties the caller's cart.
func (h *CartHandler) Clear(
	ctx context.Context,
	input *CartOwnerInput,
) (*struct{}, error) {
	if err := h.service.Clear(ctx, input.UserID); err != nil {
		return nil, huma.Error500InternalServerError("clearing cart failed", err)
	}
	return nil, nil
}

// RegisterCartRoutes registers cart endpoints with the Huma API.
func RegisterCartRoutes(api huma.API, h *CartHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "add-to-cart",
		Method:        http.MethodPost,
		Path:          "/api/v1/cart",
		Summary:       "Add an item to the cart",
		Description:   "Adds one unit of a catalog item to the signed-in user's cart.",
		Tags:          []string{"cart"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusUnauthorized, http.StatusNotFound, http.StatusBadGateway},
	}, h.Add)

	huma.Register(api, huma.Operation{
		OperationID: "get-cart",
		Method:      http.MethodGet,
		Path:        "/api/v1/cart",
		Summary:     "Get the cart",
		Description: "Returns the signed-in user's cart entries.",
		Tags:        []string{"cart"},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID:   "clear-cart",
		Method:        http.MethodDelete,
		Path:          "/api/v1/cart",
		Summary:       "Clear the cart",
		Description:   "Removes every entry from the signed-in user's cart.",
		Tags:          []string{"cart"},
		DefaultStatus: http.StatusNoContent,
	}, h.Clear)
}
