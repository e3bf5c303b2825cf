package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/services"
)

// UserHandler はユーザー関連のハンドラーを管理します。
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler は新しいUserHandlerを作成します。
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// SignUpHandler はユーザー登録を処理します。
func (h *UserHandler) SignUpHandler(c *gin.Context) {
	var req models.SignUpRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	res, err := h.userService.RegisterUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Account created successfully", res)
}

// SignInHandler はサインインを処理します。
func (h *UserHandler) SignInHandler(c *gin.Context) {
	var req models.SignInRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	res, err := h.userService.AuthenticateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Signed in successfully", res)
}

// MeHandler は認証済みユーザーのプロフィールを返します。
func (h *UserHandler) MeHandler(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "User retrieved successfully", models.NewUserResponse(user))
}
