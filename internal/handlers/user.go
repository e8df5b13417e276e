package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mizunoha/task-board-api/internal/dto"
	apierrors "github.com/mizunoha/task-board-api/internal/errors"
	"github.com/mizunoha/task-board-api/internal/repository"
	"github.com/mizunoha/task-board-api/internal/utils"
)

// UserHandler serves the read-only user roster.
type UserHandler struct {
	userRepo repository.UserRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
	}
}

// ListUsers returns the team roster for assignee selection.
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.userRepo.List(params)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch users")
		return
	}

	userDTOs := make([]dto.UserDTO, len(users))
	for i, u := range users {
		userDTOs[i] = dto.ToUserDTO(u)
	}

	c.JSON(http.StatusOK, gin.H{
		"users": userDTOs,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}
