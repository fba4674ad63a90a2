package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/snaytau/shop-api/internal/model"
	"github.com/snaytau/shop-api/internal/repository"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("product not found in cart")
)

type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// GetItems returns the cart's line items with product fields resolved. A
// user without a cart gets an empty list, not an error.
func (s *CartService) GetItems(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart == nil {
		return []model.CartItem{}, nil
	}
	return cart.Items, nil
}

// AddItem puts a product in the cart, creating the cart on first use. When
// the product is already a member its quantity is incremented. Stock is not
// checked here; checkout enforces it.
func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) ([]model.CartItem, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}
	if err := s.cartRepo.UpsertItem(ctx, cart.ID, productID, quantity); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return s.GetItems(ctx, userID)
}

// UpdateItem overwrites the quantity of an existing line item.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) ([]model.CartItem, error) {
	cart, err := s.requireCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.SetItemQuantity(ctx, cart.ID, productID, quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return s.GetItems(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) ([]model.CartItem, error) {
	cart, err := s.requireCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.RemoveItem(ctx, cart.ID, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("remove cart item: %w", err)
	}
	return s.GetItems(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.requireCart(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.cartRepo.Clear(ctx, cart.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *CartService) requireCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	return cart, nil
}
