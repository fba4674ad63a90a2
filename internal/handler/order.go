package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/snaytau/shop-api/internal/dto"
	"github.com/snaytau/shop-api/internal/middleware"
	"github.com/snaytau/shop-api/internal/model"
	"github.com/snaytau/shop-api/internal/service"
)

type OrderHandler struct {
	svc *service.OrderService
	log *slog.Logger
}

func NewOrderHandler(svc *service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required, and items cannot be empty."})
		return
	}

	order, err := h.svc.Create(c.Request.Context(), middleware.GetUserID(c), req, c.GetHeader("Idempotency-Key"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInsufficientStock):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		default:
			h.log.Error("create order", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order, false))
}

func (h *OrderHandler) MyOrders(c *gin.Context) {
	orders, err := h.svc.ListByUserID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.log.Error("list my orders", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders, false))
}

func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		h.log.Error("list all orders", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders, true))
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
		return
	}
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid status"})
		return
	}

	order, err := h.svc.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
		default:
			h.log.Error("update order status", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order, false))
}

func toOrderResponse(order *model.Order, withUser bool) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	resp := dto.OrderResponse{
		ID:            order.ID,
		UserID:        order.UserID,
		Name:          order.Name,
		Address:       order.Address,
		City:          order.City,
		PostalCode:    order.PostalCode,
		Country:       order.Country,
		PaymentMethod: order.PaymentMethod,
		Items:         items,
		TotalPrice:    order.TotalPrice,
		ShippingFee:   order.ShippingFee,
		Status:        order.Status,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
	if withUser {
		resp.User = &dto.OrderUser{ID: order.UserID, Name: order.UserName, Email: order.UserEmail}
	}
	return resp
}

func toOrderResponses(orders []model.Order, withUser bool) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i], withUser))
	}
	return out
}
