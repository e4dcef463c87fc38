// Package cart forwards "add to cart" actions to a cart service on behalf of
// the current session user.
package cart

import (
	"context"

	domain "github.com/donaldgifford/storefront/pkg/types"
)

// PlaceholderImage is used for items that have no image.
const PlaceholderImage = "/placeholder.svg"

// Session exposes the currently authenticated user, if any.
type Session interface {
	CurrentUser() (*domain.User, bool)
}

// StaticSession is a Session with a fixed user. A nil User means nobody is
// signed in.
type StaticSession struct {
	User *domain.User
}

// CurrentUser implements Session.
func (s StaticSession) CurrentUser() (*domain.User, bool) {
	if s.User == nil || s.User.ID == "" {
		return nil, false
	}
	return s.User, true
}

// Service is the cart collaborator. Carts are keyed by owner (the user ID).
type Service interface {
	AddToCart(ctx context.Context, owner string, entry domain.CartEntry) error
	Entries(ctx context.Context, owner string) ([]domain.CartEntry, error)
	Clear(ctx context.Context, owner string) error
}

// ToEntry converts an item into the fixed cart entry shape. Missing prices
// become 0, missing images the placeholder, and quantity is always 1.
func ToEntry(it domain.Item) domain.CartEntry {
	e := domain.CartEntry{
		ID:          it.ID,
		Name:        it.Name,
		Image:       it.FirstImage(),
		Category:    it.Category,
		Quantity:    1,
		Description: it.Description,
		Vendor:      it.Vendor,
		SKU:         it.SKU,
		Unit:        it.Unit,
	}
	if it.Price != nil {
		e.Price = *it.Price
	}
	if e.Image == "" {
		e.Image = PlaceholderImage
	}
	return e
}
