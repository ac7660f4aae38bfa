package addressControllers

import (
	"github.com/devclub-nstru/tryyel-backend/auth"
	"github.com/devclub-nstru/tryyel-backend/response"
	"github.com/gin-gonic/gin"
)

// POST /api/address
func CreateAddress(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input Input
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
		addr, err := s.Create(c.Request.Context(), auth.UserID(c), input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, "New address added successfully", addr)
	}
}

// GET /api/address
func GetUserAddresses(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		addrs, err := s.List(c.Request.Context(), auth.UserID(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.WithMessage(c, "Addresses fetched successfully", addrs)
	}
}

// GET /api/address/:id
func GetAddress(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		addr, err := s.Get(c.Request.Context(), auth.UserID(c), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, addr)
	}
}

// PUT /api/address/:id
func UpdateAddress(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		var input Input
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
		addr, err := s.Update(c.Request.Context(), auth.UserID(c), id, input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.WithMessage(c, "Address updated successfully", addr)
	}
}

// PUT /api/address/:id/default
func SetDefaultAddress(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		addr, err := s.SetDefault(c.Request.Context(), auth.UserID(c), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.WithMessage(c, "Address set as default successfully", addr)
	}
}

// DELETE /api/address/:id
func DeleteAddress(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.IDParam(c, "id")
		if !ok {
			return
		}
		if err := s.Delete(c.Request.Context(), auth.UserID(c), id); err != nil {
			response.Error(c, err)
			return
		}
		response.Message(c, "Address deleted successfully")
	}
}
