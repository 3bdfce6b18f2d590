package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandlers provides HTTP handlers for user operations. This is a
// pure mapping layer: service outcomes in, status codes and bodies out.
type UserHandlers struct {
	service UserManager
	logger  *zap.Logger
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(service UserManager, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers all user-related routes
func (h *UserHandlers) RegisterRoutes(router *gin.RouterGroup) {
	userRoutes := router.Group("/users")
	{
		userRoutes.GET("", h.GetAllUsers)
		userRoutes.GET("/search", h.SearchUsers)
		userRoutes.GET("/email/:email", h.GetUserByEmail)
		userRoutes.GET("/:id", h.GetUserByID)
		userRoutes.POST("", h.CreateUser)
		userRoutes.PUT("/:id", h.UpdateUser)
		userRoutes.DELETE("/:id", h.DeleteUser)
	}
}

// GetAllUsers handles GET /api/users
func (h *UserHandlers) GetAllUsers(c *gin.Context) {
	found, err := h.service.GetAllUsers(c.Request.Context())
	if err != nil {
		h.internalError(c, "Failed to list users", err)
		return
	}
	c.JSON(http.StatusOK, found)
}

// GetUserByID handles GET /api/users/:id
func (h *UserHandlers) GetUserByID(c *gin.Context) {
	user, err := h.service.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.internalError(c, "Failed to get user", err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserByEmail handles GET /api/users/email/:email
func (h *UserHandlers) GetUserByEmail(c *gin.Context) {
	user, err := h.service.GetUserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.internalError(c, "Failed to get user by email", err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// SearchUsers handles GET /api/users/search?name=<text>
func (h *UserHandlers) SearchUsers(c *gin.Context) {
	name := c.Query("name")
	if strings.TrimSpace(name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name query parameter is required"})
		return
	}

	found, err := h.service.SearchUsersByName(c.Request.Context(), name)
	if err != nil {
		h.internalError(c, "Failed to search users", err)
		return
	}
	c.JSON(http.StatusOK, found)
}

// CreateUser handles POST /api/users
func (h *UserHandlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrEmailInUse) {
			c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
			return
		}
		h.internalError(c, "Failed to create user", err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// UpdateUser handles PUT /api/users/:id
func (h *UserHandlers) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, ErrEmailInUse) {
			c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
			return
		}
		h.internalError(c, "Failed to update user", err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /api/users/:id
func (h *UserHandlers) DeleteUser(c *gin.Context) {
	deleted, err := h.service.DeleteUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.internalError(c, "Failed to delete user", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandlers) internalError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
}
