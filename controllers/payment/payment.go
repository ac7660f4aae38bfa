package paymentControllers

import (
	"github.com/devclub-nstru/tryyel-backend/auth"
	orderControllers "github.com/devclub-nstru/tryyel-backend/controllers/order"
	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/gin-gonic/gin"
)

type CreatePaymentRequest struct {
	AddressID uint `json:"addressId" binding:"required"`
}

type VerifyPaymentRequest struct {
	OrderID           uint   `json:"orderId"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// POST /api/payment/create-order
func CreatePaymentHandler(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "addressId is required")
			return
		}
		intent, err := s.CreatePaymentIntent(c.Request.Context(), auth.UserID(c), req.AddressID, orderControllers.IdempotencyKey(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, "Razorpay order created", intent)
	}
}

// POST /api/payment/verify
func VerifyPaymentHandler(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
		res, err := s.VerifyPayment(c.Request.Context(), auth.UserID(c), VerifyInput{
			OrderID:    req.OrderID,
			IntentID:   req.RazorpayOrderID,
			PaymentRef: req.RazorpayPaymentID,
			Signature:  req.RazorpaySignature,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		msg := "Payment verified, transaction stored, and order confirmed"
		if res.Replayed {
			msg = "Payment already verified"
		}
		response.WithMessage(c, msg, res)
	}
}
