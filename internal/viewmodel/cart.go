package viewmodel

import (
	"context"
	"strconv"

	"github.com/fjod/matule/internal/domain"
	"github.com/fjod/matule/internal/repository"
	"github.com/sirupsen/logrus"
)

// CartViewModel keeps the cart locally and mirrors every change to the
// backend when a user is signed in. Local changes are never rolled back.
type CartViewModel struct {
	repo  repository.CartRepository
	users UserIDSource
	log   logrus.FieldLogger

	Items  *State[[]domain.CartItem]
	Status *State[Status]
}

func NewCartViewModel(repo repository.CartRepository, users UserIDSource, log logrus.FieldLogger) *CartViewModel {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CartViewModel{
		repo:   repo,
		users:  users,
		log:    log.WithField("component", "cart"),
		Items:  NewState[[]domain.CartItem](nil),
		Status: NewState(StatusIdle),
	}
}

// AddToCart bumps the quantity of p, adding it with quantity 1 when absent,
// then creates a backend cart record for one unit.
func (vm *CartViewModel) AddToCart(ctx context.Context, p domain.Product) {
	vm.Items.Update(func(items []domain.CartItem) []domain.CartItem {
		out := make([]domain.CartItem, 0, len(items)+1)
		found := false
		for _, it := range items {
			if it.Product.ID == p.ID {
				it.Quantity++
				found = true
			}
			out = append(out, it)
		}
		if !found {
			out = append(out, domain.CartItem{Product: p, Quantity: 1})
		}
		return out
	})

	userID, ok := vm.syncTarget()
	if !ok {
		return
	}
	result := vm.repo.AddToCart(ctx, userID, strconv.Itoa(p.ID), 1)
	if msg, failed := result.ErrorMessage(); failed {
		vm.log.WithField("product_id", p.ID).Warnf("Cart sync failed: %s", msg)
		vm.Status.Set(StatusError(msg))
		return
	}
	record, ok := result.Data()
	if !ok {
		return
	}
	vm.Items.Update(func(items []domain.CartItem) []domain.CartItem {
		out := make([]domain.CartItem, len(items))
		copy(out, items)
		for i := range out {
			if out[i].Product.ID == p.ID && !out[i].Synced() {
				out[i].CartItemID = record.ID
				break
			}
		}
		return out
	})
}

// RemoveFromCart drops the product. A synced item is zeroed on the backend.
func (vm *CartViewModel) RemoveFromCart(ctx context.Context, p domain.Product) {
	item, found := vm.find(p.ID)
	vm.Items.Update(func(items []domain.CartItem) []domain.CartItem {
		out := make([]domain.CartItem, 0, len(items))
		for _, it := range items {
			if it.Product.ID != p.ID {
				out = append(out, it)
			}
		}
		return out
	})
	if found && item.Synced() {
		vm.syncUpdate(ctx, item.CartItemID, p, 0)
	}
}

func (vm *CartViewModel) IncreaseQuantity(ctx context.Context, p domain.Product) {
	item, found := vm.find(p.ID)
	newQuantity := item.Quantity + 1
	vm.setQuantity(p.ID, newQuantity)
	if found && item.Synced() {
		vm.syncUpdate(ctx, item.CartItemID, p, newQuantity)
	}
}

// DecreaseQuantity lowers the quantity and drops the item at zero.
func (vm *CartViewModel) DecreaseQuantity(ctx context.Context, p domain.Product) {
	item, found := vm.find(p.ID)
	newQuantity := max(0, item.Quantity-1)
	vm.setQuantity(p.ID, newQuantity)
	if found && item.Synced() {
		vm.syncUpdate(ctx, item.CartItemID, p, newQuantity)
	}
}

func (vm *CartViewModel) setQuantity(productID, quantity int) {
	vm.Items.Update(func(items []domain.CartItem) []domain.CartItem {
		out := make([]domain.CartItem, 0, len(items))
		for _, it := range items {
			if it.Product.ID == productID {
				it.Quantity = quantity
			}
			if it.Quantity > 0 {
				out = append(out, it)
			}
		}
		return out
	})
}

func (vm *CartViewModel) syncUpdate(ctx context.Context, cartItemID string, p domain.Product, count int) {
	userID, ok := vm.syncTarget()
	if !ok {
		return
	}
	result := vm.repo.UpdateCartItem(ctx, cartItemID, userID, strconv.Itoa(p.ID), count)
	if msg, failed := result.ErrorMessage(); failed {
		vm.log.WithField("cart_item_id", cartItemID).Warnf("Cart update failed: %s", msg)
		vm.Status.Set(StatusError(msg))
		return
	}
	vm.Status.Set(StatusSuccess)
}

func (vm *CartViewModel) syncTarget() (string, bool) {
	if vm.repo == nil || vm.users == nil {
		return "", false
	}
	userID := vm.users.UserID()
	return userID, userID != ""
}

func (vm *CartViewModel) find(productID int) (domain.CartItem, bool) {
	for _, it := range vm.Items.Value() {
		if it.Product.ID == productID {
			return it, true
		}
	}
	return domain.CartItem{}, false
}

func (vm *CartViewModel) ClearCart() {
	vm.Items.Set(nil)
	vm.Status.Set(StatusSuccess)
}

func (vm *CartViewModel) Total() int {
	total := 0
	for _, it := range vm.Items.Value() {
		total += it.Product.Price * it.Quantity
	}
	return total
}

func (vm *CartViewModel) IsInCart(productID int) bool {
	_, ok := vm.find(productID)
	return ok
}

func (vm *CartViewModel) Quantity(productID int) int {
	it, _ := vm.find(productID)
	return it.Quantity
}

func (vm *CartViewModel) ResetState() {
	vm.Status.Set(StatusIdle)
}
