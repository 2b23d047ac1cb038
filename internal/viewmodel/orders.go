package viewmodel

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/matule/internal/domain"
	"github.com/fjod/matule/internal/repository"
	"github.com/fjod/matule/internal/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	ordersNamespace = "orders_prefs"
	ordersKey       = "orders_list"
	orderDateLayout = "02.01.2006"
)

// OrdersViewModel keeps the local order history and places each order on
// the backend, one record per cart line.
type OrdersViewModel struct {
	prefs *storage.Prefs
	repo  repository.OrderRepository
	users UserIDSource
	log   logrus.FieldLogger
	now   func() time.Time

	Orders *State[[]domain.Order]
	Status *State[Status]
}

// NewOrdersViewModel loads the saved history. A corrupt history starts empty.
func NewOrdersViewModel(ctx context.Context, store storage.Store, repo repository.OrderRepository, users UserIDSource, log logrus.FieldLogger) (*OrdersViewModel, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	vm := &OrdersViewModel{
		prefs:  storage.NewPrefs(store, ordersNamespace),
		repo:   repo,
		users:  users,
		log:    log.WithField("component", "orders"),
		now:    time.Now,
		Orders: NewState[[]domain.Order](nil),
		Status: NewState(StatusIdle),
	}

	var saved []domain.Order
	if _, err := vm.prefs.GetJSON(ctx, ordersKey, &saved); err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	vm.Orders.Set(saved)
	return vm, nil
}

// AddOrder records the order locally with status Processing and then syncs
// it. The returned order reflects the status after the sync.
func (vm *OrdersViewModel) AddOrder(ctx context.Context, items []domain.CartItem, total int) domain.Order {
	order := domain.Order{
		ID:         newOrderID(),
		Date:       vm.now().Format(orderDateLayout),
		TotalPrice: FormatPrice(total),
		Status:     domain.OrderStatusProcessing,
		Items:      append([]domain.CartItem(nil), items...),
	}
	vm.Orders.Update(func(orders []domain.Order) []domain.Order {
		return append([]domain.Order{order}, orders...)
	})
	vm.save(ctx)

	return vm.syncOrder(ctx, order)
}

func (vm *OrdersViewModel) syncOrder(ctx context.Context, order domain.Order) domain.Order {
	if vm.repo == nil || vm.users == nil {
		return order
	}
	userID := vm.users.UserID()
	if userID == "" {
		return order
	}

	vm.Status.Set(StatusLoading)
	var (
		serverIDs []string
		lastError string
	)
	for _, item := range order.Items {
		result := vm.repo.CreateOrder(ctx, userID, strconv.Itoa(item.Product.ID), item.Quantity)
		if msg, failed := result.ErrorMessage(); failed {
			vm.log.WithFields(logrus.Fields{
				"order_id":   order.ID,
				"product_id": item.Product.ID,
			}).Warnf("Order sync failed: %s", msg)
			lastError = msg
			continue
		}
		if rec, ok := result.Data(); ok {
			serverIDs = append(serverIDs, rec.ID)
		}
	}

	if len(serverIDs) > 0 {
		order.ServerIDs = serverIDs
		order.Status = domain.OrderStatusPlaced
		if len(serverIDs) < len(order.Items) {
			order.Status = domain.OrderStatusPartiallyPlaced
		}
		vm.Orders.Update(func(orders []domain.Order) []domain.Order {
			out := make([]domain.Order, len(orders))
			copy(out, orders)
			for i := range out {
				if out[i].ID == order.ID {
					out[i] = order
				}
			}
			return out
		})
		vm.save(ctx)
	}

	if lastError != "" {
		vm.Status.Set(StatusError(lastError))
	} else {
		vm.Status.Set(StatusSuccess)
	}
	return order
}

func (vm *OrdersViewModel) RemoveOrder(ctx context.Context, orderID string) {
	vm.Orders.Update(func(orders []domain.Order) []domain.Order {
		out := make([]domain.Order, 0, len(orders))
		for _, o := range orders {
			if o.ID != orderID {
				out = append(out, o)
			}
		}
		return out
	})
	vm.save(ctx)
}

func (vm *OrdersViewModel) OrderByID(orderID string) (domain.Order, bool) {
	for _, o := range vm.Orders.Value() {
		if o.ID == orderID {
			return o, true
		}
	}
	return domain.Order{}, false
}

func (vm *OrdersViewModel) ResetState() {
	vm.Status.Set(StatusIdle)
}

func (vm *OrdersViewModel) save(ctx context.Context) {
	if err := vm.prefs.SetJSON(ctx, ordersKey, vm.Orders.Value()); err != nil {
		vm.log.WithError(err).Error("Failed to save orders")
	}
}

func newOrderID() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

// FormatPrice renders an amount in rubles with spaces between thousands,
// e.g. 12500 becomes "12 500 ₽".
func FormatPrice(amount int) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.Itoa(amount)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + " ₽"
}
