package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/quillpress-backend/internal/common"
	"github.com/quillpress/quillpress-backend/internal/middleware"
	"github.com/quillpress/quillpress-backend/internal/repository"
	"gorm.io/gorm"
)

// AuthHandler exposes the authenticated caller's account. Token issuance
// lives in the identity service; this API only verifies tokens.
type AuthHandler struct {
	users repository.UserRepository
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users repository.UserRepository) *AuthHandler {
	return &AuthHandler{users: users}
}

// GetCurrentUser godoc
// @Summary      Current account
// @Description  Returns the account behind the bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.APIResponse{data=domain.User}
// @Failure      401  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /auth/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	user, err := h.users.FindByID(p.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.AbortWithError(c, common.ErrUserNotFound)
			return
		}
		common.AbortWithError(c, common.Internal(err))
		return
	}
	common.SuccessResponse(c, user, nil)
}
