package orderControllers

import (
	"strings"

	"github.com/devclub-nstru/tryyel-backend/auth"
	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/gin-gonic/gin"
)

type PlaceOrderRequest struct {
	AddressID uint `json:"addressId" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// IdempotencyKey reads the optional Idempotency-Key header.
func IdempotencyKey(c *gin.Context) *string {
	key := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if key == "" || len(key) > 128 {
		return nil
	}
	return &key
}

// POST /api/orders
func PlaceOrderHandler(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "addressId is required")
			return
		}
		order, err := s.PlaceOrder(c.Request.Context(), auth.UserID(c), req.AddressID, IdempotencyKey(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, "Order placed successfully", order)
	}
}

// GET /api/orders
func GetUserOrdersHandler(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := response.Page(c, 10, 50)
		result, err := s.GetUserOrders(c.Request.Context(), auth.UserID(c), page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, result)
	}
}

// GET /api/orders/:id
func GetOrderByIDHandler(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		order, err := s.GetOrderByID(c.Request.Context(), auth.UserID(c), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, order)
	}
}

// POST /api/orders/:id/cancel
func CancelOrderHandler(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		order, err := s.CancelOrder(c.Request.Context(), auth.UserID(c), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.WithMessage(c, "Order cancelled", order)
	}
}

// GET /api/admin/orders
func GetAllOrdersHandler(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := response.Page(c, 20, 100)
		result, err := s.ListOrders(c.Request.Context(), page, limit, c.Query("status"))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, result)
	}
}

// PUT /api/admin/orders/:id/status
func UpdateOrderStatusHandler(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "status is required")
			return
		}
		order, err := s.UpdateOrderStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.WithMessage(c, "Order status updated", order)
	}
}
