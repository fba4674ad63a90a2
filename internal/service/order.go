package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/snaytau/shop-api/internal/dto"
	"github.com/snaytau/shop-api/internal/model"
	"github.com/snaytau/shop-api/internal/repository"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

const checkoutKeyTTL = 24 * time.Hour

type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	redisClient *redis.Client
	amqpCh      *amqp.Channel
}

func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, redisClient *redis.Client, amqpCh *amqp.Channel) *OrderService {
	return &OrderService{orderRepo: orderRepo, productRepo: productRepo, redisClient: redisClient, amqpCh: amqpCh}
}

// Create runs the checkout: validates shipping fields and items, resolves
// each product, computes the total server-side (item sum plus shipping
// fee), and persists the order with its stock decrements in one
// transaction. The client-supplied totalAmount is ignored. An optional
// idempotency key makes retried checkouts return the order created by the
// first attempt instead of placing a duplicate.
func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateOrderRequest, idempotencyKey string) (*model.Order, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		if order, err := s.replayCheckout(ctx, userID, idempotencyKey); err != nil {
			return nil, err
		} else if order != nil {
			return order, nil
		}
	}

	total := decimal.Zero
	items := make([]model.OrderItem, 0, len(req.Items))
	names := make(map[uuid.UUID]string, len(req.Items))
	for _, line := range req.Items {
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		if product == nil {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}
		if product.Stock < line.Quantity {
			return nil, fmt.Errorf("%w for product: %s", ErrInsufficientStock, product.Name)
		}
		names[product.ID] = product.Name
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, model.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
	}

	order := &model.Order{
		UserID:        userID,
		Name:          req.Name,
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
		TotalPrice:    total.Add(req.ShippingFee),
		ShippingFee:   req.ShippingFee,
		Status:        model.OrderStatusPending,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		// The pre-check above can lose a race with a concurrent checkout;
		// the conditional decrement inside the transaction is authoritative.
		var stockErr *repository.InsufficientStockError
		if errors.As(err, &stockErr) {
			name := names[stockErr.ProductID]
			if name == "" {
				name = stockErr.ProductID.String()
			}
			return nil, fmt.Errorf("%w for product: %s", ErrInsufficientStock, name)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	if idempotencyKey != "" {
		s.storeCheckoutKey(ctx, userID, idempotencyKey, order.ID)
	}
	s.publishOrderPlaced(ctx, order)
	return order, nil
}

func (s *OrderService) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return s.orderRepo.ListByUserID(ctx, userID)
}

func (s *OrderService) ListAll(ctx context.Context) ([]model.Order, error) {
	return s.orderRepo.ListAll(ctx)
}

// UpdateStatus moves an order through the fulfillment lifecycle. Unknown
// status strings and disallowed transitions are rejected without touching
// the stored status.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*model.Order, error) {
	target, ok := model.ParseOrderStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !order.Status.CanTransition(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, target)
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, target); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("update status: %w", err)
	}
	order.Status = target
	return order, nil
}

func validateOrderRequest(req dto.CreateOrderRequest) error {
	fields := map[string]string{
		"name":          req.Name,
		"address":       req.Address,
		"city":          req.City,
		"postalCode":    req.PostalCode,
		"country":       req.Country,
		"paymentMethod": req.PaymentMethod,
	}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, name)
		}
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: items cannot be empty", ErrValidation)
	}
	for _, line := range req.Items {
		if line.Quantity < 1 {
			return fmt.Errorf("%w: item quantity must be at least 1", ErrValidation)
		}
	}
	return nil
}

func checkoutKey(userID uuid.UUID, key string) string {
	return "checkout:" + userID.String() + ":" + key
}

func (s *OrderService) replayCheckout(ctx context.Context, userID uuid.UUID, key string) (*model.Order, error) {
	if s.redisClient == nil {
		return nil, nil
	}
	val, err := s.redisClient.Get(ctx, checkoutKey(userID, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("check idempotency key: %w", err)
	}
	orderID, err := uuid.Parse(val)
	if err != nil {
		return nil, nil
	}
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load replayed order: %w", err)
	}
	return order, nil
}

func (s *OrderService) storeCheckoutKey(ctx context.Context, userID uuid.UUID, key string, orderID uuid.UUID) {
	if s.redisClient == nil {
		return
	}
	s.redisClient.Set(ctx, checkoutKey(userID, key), orderID.String(), checkoutKeyTTL)
}

func (s *OrderService) publishOrderPlaced(ctx context.Context, order *model.Order) {
	if s.amqpCh == nil {
		return
	}
	msg, _ := json.Marshal(model.OrderPlacedMessage{OrderID: order.ID, UserID: order.UserID})
	_ = s.amqpCh.PublishWithContext(ctx, "", "orders", false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         msg,
		DeliveryMode: amqp.Persistent,
	})
}
