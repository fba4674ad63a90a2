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

type CartHandler struct {
	svc *service.CartService
	log *slog.Logger
}

func NewCartHandler(svc *service.CartService, log *slog.Logger) *CartHandler {
	return &CartHandler{svc: svc, log: log}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	items, err := h.svc.GetItems(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.log.Error("get cart", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch cart"})
		return
	}
	c.JSON(http.StatusOK, toCartItemResponses(items))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	items, err := h.svc.AddItem(c.Request.Context(), middleware.GetUserID(c), req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}
		h.log.Error("add cart item", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to add product to cart"})
		return
	}
	c.JSON(http.StatusCreated, toCartItemResponses(items))
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return
	}
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	items, err := h.svc.UpdateItem(c.Request.Context(), middleware.GetUserID(c), productID, req.Quantity)
	if err != nil {
		h.respondCartError(c, err, "update cart item")
		return
	}
	c.JSON(http.StatusOK, toCartItemResponses(items))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return
	}

	items, err := h.svc.RemoveItem(c.Request.Context(), middleware.GetUserID(c), productID)
	if err != nil {
		h.respondCartError(c, err, "remove cart item")
		return
	}
	c.JSON(http.StatusOK, toCartItemResponses(items))
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		h.respondCartError(c, err, "clear cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared successfully"})
}

func (h *CartHandler) respondCartError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, service.ErrCartNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "cart not found"})
	case errors.Is(err, service.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "product not found in cart"})
	default:
		h.log.Error(op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	}
}

func toCartItemResponses(items []model.CartItem) []dto.CartItemResponse {
	out := make([]dto.CartItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dto.CartItemResponse{
			Product: dto.CartProduct{
				ID:       item.ProductID,
				Name:     item.ProductName,
				Price:    item.ProductPrice,
				Category: item.ProductCategory,
				Image:    item.ProductImage,
				Stock:    item.ProductStock,
			},
			Quantity: item.Quantity,
		})
	}
	return out
}
