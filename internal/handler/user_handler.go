package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/livedesk/user-service/internal/middleware"
	"github.com/livedesk/user-service/internal/models"
	"github.com/livedesk/user-service/internal/service"
	"github.com/livedesk/user-service/internal/store"
)

// UserOrchestrator defines the operations UserHandler routes requests to.
type UserOrchestrator interface {
	GetAllUsers() []models.User
	GetUserByID(id string) (models.User, error)
	CreateUser(req models.CreateUserRequest) (models.User, error)
	UpdateUser(id string, patch models.UserPatch) (models.User, error)
	DeleteUser(id string) (models.User, error)
	GetUsersPaginated(offset, limit int) (models.PaginatedUsers, error)
	GetUserStats() models.UserStats
}

type UserHandler struct {
	users UserOrchestrator
}

func NewUserHandler(users UserOrchestrator) *UserHandler {
	return &UserHandler{users: users}
}

// ListUsers returns every user, or the paginated view when the offset or
// limit query parameters are present.
func (h *UserHandler) ListUsers(c *gin.Context) {
	offsetParam := c.Query("offset")
	limitParam := c.Query("limit")

	if offsetParam == "" && limitParam == "" {
		c.JSON(http.StatusOK, gin.H{
			"data":    h.users.GetAllUsers(),
			"message": "Users retrieved successfully",
		})
		return
	}

	offset, err := strconv.Atoi(offsetParam)
	if offsetParam != "" && err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid offset parameter")
		return
	}
	limit := 10
	if limitParam != "" {
		limit, err = strconv.Atoi(limitParam)
		if err != nil {
			middleware.RespondWithError(c, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
	}

	page, err := h.users.GetUsersPaginated(offset, limit)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": page})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetUserByID(c.Param("userId"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, err := h.users.CreateUser(req)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"data":    user,
		"message": "User created successfully",
	})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var patch models.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.UpdateUser(c.Param("userId"), patch)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":    user,
		"message": "User updated successfully",
	})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	user, err := h.users.DeleteUser(c.Param("userId"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":    user,
		"message": "User deleted successfully",
	})
}

func (h *UserHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.users.GetUserStats()})
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondDomainError maps the error taxonomy to HTTP statuses. Validation
// errors and the store sentinels carry client-safe messages; anything else is
// logged server-side and reported generically.
func respondDomainError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		middleware.RespondWithError(c, http.StatusBadRequest, ve.Message)
	case errors.Is(err, store.ErrUserNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrEmailExists):
		middleware.RespondWithError(c, http.StatusConflict, err.Error())
	default:
		log.Printf("Unexpected error handling %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		middleware.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
