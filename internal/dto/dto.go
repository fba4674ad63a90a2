package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/snaytau/shop-api/internal/model"
)

// --- Auth ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// --- Product ---

type ProductSizeRequest struct {
	Label string `json:"size" binding:"required"`
	Stock int    `json:"stock" binding:"min=0"`
}

type CreateProductRequest struct {
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description" binding:"required"`
	Price       decimal.Decimal      `json:"price" binding:"required"`
	Category    string               `json:"category" binding:"required"`
	Image       string               `json:"image" binding:"required"`
	Sizes       []ProductSizeRequest `json:"sizes" binding:"required,min=1,dive"`
}

type UpdateProductRequest struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Price       *decimal.Decimal     `json:"price"`
	Category    *string              `json:"category"`
	Image       *string              `json:"image"`
	Sizes       []ProductSizeRequest `json:"sizes" binding:"omitempty,min=1,dive"`
}

type ProductResponse struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	Category    string              `json:"category"`
	Image       string              `json:"image"`
	Sizes       []model.ProductSize `json:"sizes"`
	Stock       int                 `json:"stock"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  int       `json:"qty" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"qty" binding:"required,min=1"`
}

// CartProduct is the resolved slice of product fields a cart line carries.
type CartProduct struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Image    string          `json:"image"`
	Stock    int             `json:"stock"`
}

type CartItemResponse struct {
	Product  CartProduct `json:"product"`
	Quantity int         `json:"qty"`
}

// --- Order ---

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product" binding:"required"`
	Quantity  int       `json:"qty" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	Name          string             `json:"name" binding:"required"`
	Address       string             `json:"address" binding:"required"`
	City          string             `json:"city" binding:"required"`
	PostalCode    string             `json:"postalCode" binding:"required"`
	Country       string             `json:"country" binding:"required"`
	PaymentMethod string             `json:"paymentMethod" binding:"required"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	// Accepted for wire compatibility, never trusted: the total is always
	// recomputed server-side.
	TotalAmount *decimal.Decimal `json:"totalAmount"`
	ShippingFee decimal.Decimal  `json:"shippingFee"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type OrderItemResponse struct {
	ProductID uuid.UUID       `json:"product"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

type OrderUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	UserID        uuid.UUID           `json:"user"`
	Name          string              `json:"name"`
	Address       string              `json:"address"`
	City          string              `json:"city"`
	PostalCode    string              `json:"postalCode"`
	Country       string              `json:"country"`
	PaymentMethod string              `json:"paymentMethod"`
	Items         []OrderItemResponse `json:"items"`
	TotalPrice    decimal.Decimal     `json:"totalPrice"`
	ShippingFee   decimal.Decimal     `json:"shippingFee"`
	Status        model.OrderStatus   `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`

	// Populated on admin listings only.
	User *OrderUser `json:"userInfo,omitempty"`
}

// --- Admin ---

type AdminUpdateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=customer admin"`
}

type DailyRevenuePoint struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type AdminStatsResponse struct {
	TotalUsers    int                 `json:"totalUsers"`
	TotalOrders   int                 `json:"totalOrders"`
	TotalRevenue  decimal.Decimal     `json:"totalRevenue"`
	TotalProducts int                 `json:"totalProducts"`
	DailyRevenue  []DailyRevenuePoint `json:"dailyRevenue"`
}
