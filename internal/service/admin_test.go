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
)

func seedUser(users *fakeUserRepo, name, email, role string) uuid.UUID {
	id := uuid.New()
	users.users[id] = &model.User{
		ID:        id,
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
	}
	return id
}

func TestAdminService_Stats(t *testing.T) {
	users := newFakeUserRepo()
	products := newFakeProductRepo()
	orders := newFakeOrderRepo(products)
	svc := NewAdminService(users, products, orders)
	ctx := context.Background()

	seedUser(users, "Jane", "jane@example.com", "customer")
	seedUser(users, "Sam", "sam@example.com", "customer")
	pid := seedProduct(products, "Sneaker", 100.00, 10)

	orderSvc := NewOrderService(orders, products, nil, nil)
	_, err := orderSvc.Create(ctx, uuid.New(),
		validOrderRequest(dto.OrderItemRequest{ProductID: pid, Quantity: 2}), "")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalProducts)
	assert.Equal(t, 1, stats.TotalOrders)
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(250)))
}

func TestAdminService_UpdateUser(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAdminService(users, newFakeProductRepo(), newFakeOrderRepo(newFakeProductRepo()))
	ctx := context.Background()

	id := seedUser(users, "Jane", "jane@example.com", "customer")

	updated, err := svc.UpdateUser(ctx, id, dto.AdminUpdateUserRequest{
		Name: "Jane Admin", Email: "jane@example.com", Role: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Admin", updated.Name)
	assert.Equal(t, "admin", updated.Role)
	assert.Equal(t, "admin", users.users[id].Role)
}

func TestAdminService_UpdateUser_EmailTaken(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAdminService(users, newFakeProductRepo(), newFakeOrderRepo(newFakeProductRepo()))
	ctx := context.Background()

	id := seedUser(users, "Jane", "jane@example.com", "customer")
	seedUser(users, "Sam", "sam@example.com", "customer")

	_, err := svc.UpdateUser(ctx, id, dto.AdminUpdateUserRequest{
		Name: "Jane", Email: "sam@example.com", Role: "customer",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, "jane@example.com", users.users[id].Email)
}

func TestAdminService_UpdateUser_NotFound(t *testing.T) {
	svc := NewAdminService(newFakeUserRepo(), newFakeProductRepo(), newFakeOrderRepo(newFakeProductRepo()))

	_, err := svc.UpdateUser(context.Background(), uuid.New(), dto.AdminUpdateUserRequest{
		Name: "Ghost", Email: "ghost@example.com", Role: "customer",
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdminService_DeleteUser(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAdminService(users, newFakeProductRepo(), newFakeOrderRepo(newFakeProductRepo()))
	ctx := context.Background()

	customer := seedUser(users, "Jane", "jane@example.com", "customer")
	admin := seedUser(users, "Root", "root@example.com", "admin")

	require.NoError(t, svc.DeleteUser(ctx, customer))
	assert.NotContains(t, users.users, customer)

	err := svc.DeleteUser(ctx, admin)
	assert.ErrorIs(t, err, ErrAdminImmutable)
	assert.Contains(t, users.users, admin)

	err = svc.DeleteUser(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
