package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaytau/shop-api/internal/dto"
	"github.com/snaytau/shop-api/internal/model"
	"github.com/snaytau/shop-api/internal/repository"
)

// fakeOrderRepo mirrors the real repository's all-or-nothing checkout: the
// order and every decrement land together, or nothing changes.
type fakeOrderRepo struct {
	products *fakeProductRepo
	orders   map[uuid.UUID]*model.Order

	// raceDecrement simulates a concurrent checkout landing between the
	// service's stock pre-check and the transaction: stock for the given
	// product is shrunk just before Create applies its decrements.
	raceDecrement map[uuid.UUID]int
}

func newFakeOrderRepo(products *fakeProductRepo) *fakeOrderRepo {
	return &fakeOrderRepo{products: products, orders: make(map[uuid.UUID]*model.Order)}
}

func (f *fakeOrderRepo) Create(_ context.Context, order *model.Order) error {
	for id, qty := range f.raceDecrement {
		f.products.products[id].Stock -= qty
	}
	f.raceDecrement = nil
	for _, item := range order.Items {
		p, ok := f.products.products[item.ProductID]
		if !ok || p.Stock < item.Quantity {
			return &repository.InsufficientStockError{ProductID: item.ProductID}
		}
	}
	for _, item := range order.Items {
		f.products.products[item.ProductID].Stock -= item.Quantity
	}
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	cp := *order
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) ListByUserID(_ context.Context, userID uuid.UUID) ([]model.Order, error) {
	var out []model.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) ListAll(_ context.Context) ([]model.Order, error) {
	var out []model.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrderRepo) ListRecent(_ context.Context, limit int) ([]model.Order, error) {
	all, _ := f.ListAll(context.Background())
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) error {
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrderRepo) Count(_ context.Context) (int, error) { return len(f.orders), nil }

func (f *fakeOrderRepo) TotalRevenue(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, o := range f.orders {
		total = total.Add(o.TotalPrice)
	}
	return total, nil
}

func (f *fakeOrderRepo) DailyRevenue(_ context.Context, _ time.Time) ([]model.DailyRevenue, error) {
	return nil, nil
}

func validOrderRequest(items ...dto.OrderItemRequest) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		Name:          "Jane Doe",
		Address:       "1 Main St",
		City:          "Springfield",
		PostalCode:    "12345",
		Country:       "US",
		PaymentMethod: "card",
		Items:         items,
		ShippingFee:   decimal.NewFromInt(50),
	}
}

func TestOrderService_Create_ComputesTotalAndDecrementsStock(t *testing.T) {
	products := newFakeProductRepo()
	pid := seedProduct(products, "Sneaker", 100.00, 5)
	svc := NewOrderService(newFakeOrderRepo(products), products, nil, nil)

	order, err := svc.Create(context.Background(), uuid.New(),
		validOrderRequest(dto.OrderItemRequest{ProductID: pid, Quantity: 2}), "")
	require.NoError(t, err)

	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(250)),
		"total should be 2*100 + 50 shipping, got %s", order.TotalPrice)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, 3, products.products[pid].Stock)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].Price.Equal(decimal.NewFromInt(100)))
}

func TestOrderService_Create_IgnoresClientSuppliedTotal(t *testing.T) {
	products := newFakeProductRepo()
	pid := seedProduct(products, "Sneaker", 100.00, 5)
	svc := NewOrderService(newFakeOrderRepo(products), products, nil, nil)

	bogus := decimal.NewFromFloat(0.01)
	req := validOrderRequest(dto.OrderItemRequest{ProductID: pid, Quantity: 1})
	req.TotalAmount = &bogus

	order, err := svc.Create(context.Background(), uuid.New(), req, "")
	require.NoError(t, err)
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(150)))
}

func TestOrderService_Create_InsufficientStock(t *testing.T) {
	products := newFakeProductRepo()
	pid := seedProduct(products, "Sneaker", 100.00, 3)
	svc := NewOrderService(newFakeOrderRepo(products), products, nil, nil)

	_, err := svc.Create(context.Background(), uuid.New(),
		validOrderRequest(dto.OrderItemRequest{ProductID: pid, Quantity: 4}), "")
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Sneaker")
	assert.Equal(t, 3, products.products[pid].Stock)
}

func TestOrderService_Create_NoPartialDecrementOnFailure(t *testing.T) {
	products := newFakeProductRepo()
	plenty := seedProduct(products, "Plenty", 10.00, 100)
	scarce := seedProduct(products, "Scarce", 10.00, 5)
	repo := newFakeOrderRepo(products)
	svc := NewOrderService(repo, products, nil, nil)

	// A competing checkout takes 4 units of the scarce product after this
	// request's pre-check but before its transaction commits.
	repo.raceDecrement = map[uuid.UUID]int{scarce: 4}

	_, err := svc.Create(context.Background(), uuid.New(),
		validOrderRequest(
			dto.OrderItemRequest{ProductID: plenty, Quantity: 2},
			dto.OrderItemRequest{ProductID: scarce, Quantity: 4},
		), "")
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Scarce")
	assert.Equal(t, 100, products.products[plenty].Stock, "earlier item must not stay decremented")
	assert.Equal(t, 1, products.products[scarce].Stock)
	assert.Empty(t, repo.orders)
}

func TestOrderService_Create_ConcurrentCheckoutLoserFails(t *testing.T) {
	products := newFakeProductRepo()
	pid := seedProduct(products, "Sneaker", 100.00, 5)
	svc := NewOrderService(newFakeOrderRepo(products), products, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(),
		validOrderRequest(dto.OrderItemRequest{ProductID: pid, Quantity: 2}), "")
	require.NoError(t, err)
	assert.Equal(t, 3, products.products[pid].Stock)

	_, err = svc.Create(ctx, uuid.New(),
		validOrderRequest(dto.OrderItemRequest{ProductID: pid, Quantity: 4}), "")
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 3, products.products[pid].Stock)
}

func TestOrderService_Create_ValidationFailures(t *testing.T) {
	products := newFakeProductRepo()
	pid := seedProduct(products, "Sneaker", 100.00, 5)
	svc := NewOrderService(newFakeOrderRepo(products), products, nil, nil)
	ctx := context.Background()

	req := validOrderRequest(dto.OrderItemRequest{ProductID: pid, Quantity: 1})
	req.City = "  "
	_, err := svc.Create(ctx, uuid.New(), req, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, uuid.New(), validOrderRequest(), "")
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, 5, products.products[pid].Stock)
}

func TestOrderService_Create_UnknownProduct(t *testing.T) {
	products := newFakeProductRepo()
	svc := NewOrderService(newFakeOrderRepo(products), products, nil, nil)

	missing := uuid.New()
	_, err := svc.Create(context.Background(), uuid.New(),
		validOrderRequest(dto.OrderItemRequest{ProductID: missing, Quantity: 1}), "")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Contains(t, err.Error(), missing.String())
}

func TestOrderService_UpdateStatus(t *testing.T) {
	products := newFakeProductRepo()
	pid := seedProduct(products, "Sneaker", 100.00, 5)
	repo := newFakeOrderRepo(products)
	svc := NewOrderService(repo, products, nil, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, uuid.New(),
		validOrderRequest(dto.OrderItemRequest{ProductID: pid, Quantity: 1}), "")
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, order.ID, "Delivered")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, updated.Status)

	mine, err := svc.ListByUserID(ctx, order.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, model.OrderStatusDelivered, mine[0].Status)
}

func TestOrderService_UpdateStatus_RejectsUnknownValue(t *testing.T) {
	products := newFakeProductRepo()
	pid := seedProduct(products, "Sneaker", 100.00, 5)
	repo := newFakeOrderRepo(products)
	svc := NewOrderService(repo, products, nil, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, uuid.New(),
		validOrderRequest(dto.OrderItemRequest{ProductID: pid, Quantity: 1}), "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, "Teleported")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, model.OrderStatusPending, repo.orders[order.ID].Status)
}

func TestOrderService_UpdateStatus_RejectsDisallowedTransition(t *testing.T) {
	products := newFakeProductRepo()
	pid := seedProduct(products, "Sneaker", 100.00, 5)
	repo := newFakeOrderRepo(products)
	svc := NewOrderService(repo, products, nil, nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, uuid.New(),
		validOrderRequest(dto.OrderItemRequest{ProductID: pid, Quantity: 1}), "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, "Delivered")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, "Pending")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, model.OrderStatusDelivered, repo.orders[order.ID].Status)
}

func TestOrderService_UpdateStatus_NotFound(t *testing.T) {
	products := newFakeProductRepo()
	svc := NewOrderService(newFakeOrderRepo(products), products, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "Shipped")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
