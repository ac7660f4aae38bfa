package cartControllers

import (
	"net/http"

	"github.com/devclub-nstru/tryyel-backend/auth"
	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/gin-gonic/gin"
)

type CartItemInput struct {
	ProductID      uint  `json:"productId" binding:"required"`
	ProductColorID *uint `json:"productColorId"`
	ProductSizeID  *uint `json:"productSizeId"`
	Quantity       *int  `json:"quantity"`
}

// GET /api/cart
func GetCart(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := s.GetCart(c.Request.Context(), auth.UserID(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, view)
	}
}

// POST /api/cart
func AddCartItem(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "Invalid input: productId is required")
			return
		}
		qty := 1
		if input.Quantity != nil {
			qty = *input.Quantity
		}

		item, err := s.AddItem(c.Request.Context(), auth.UserID(c), AddInput{
			ProductID: input.ProductID,
			ColorID:   input.ProductColorID,
			SizeID:    input.ProductSizeID,
			Quantity:  qty,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, "Item added to cart", item)
	}
}

// PUT /api/cart/:itemId
func UpdateCartItem(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, ok := response.IDParam(c, "itemId")
		if !ok {
			return
		}
		var input struct {
			Quantity *int `json:"quantity" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "Invalid input: quantity is required")
			return
		}

		item, err := s.UpdateItemQuantity(c.Request.Context(), auth.UserID(c), itemID, *input.Quantity)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.WithMessage(c, "Cart item updated", item)
	}
}

// DELETE /api/cart/:itemId
func DeleteCartItem(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, ok := response.IDParam(c, "itemId")
		if !ok {
			return
		}
		if err := s.RemoveItem(c.Request.Context(), auth.UserID(c), itemID); err != nil {
			response.Error(c, err)
			return
		}
		response.Message(c, "Cart item deleted")
	}
}

// DELETE /api/cart
func ClearUserCart(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.ClearCart(c.Request.Context(), auth.UserID(c)); err != nil {
			response.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Envelope{Success: true, Message: "Cart cleared"})
	}
}
