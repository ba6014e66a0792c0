package handlers

import (
	"github.com/gin-gonic/gin"
	"taxdocpipeline/internal/middleware"
	"taxdocpipeline/internal/services"
	"taxdocpipeline/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/me", middleware.AuthMiddleware(h.authService), h.GetMe)
	r.GET("/verify", middleware.AuthMiddleware(h.authService), h.Verify)
	r.POST("/change-password", middleware.AuthMiddleware(h.authService), h.ChangePassword)
	r.GET("/setup-required", h.SetupRequired)
	r.POST("/setup", h.SetupAdmin)
}

type RegisterInput struct {
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Email    *string `json:"email"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.Error(c, 400, "username and password are required", err)
		return
	}

	if len(input.Username) < 3 || len(input.Username) > 50 {
		utils.Error(c, 400, "username must be 3-50 characters", nil)
		return
	}

	if len(input.Password) < 6 {
		utils.Error(c, 400, "password must be at least 6 characters", nil)
		return
	}

	result, err := h.authService.Register(input.Username, input.Password, input.Email)
	if err != nil {
		utils.Error(c, 500, "registration failed, please try again", err)
		return
	}

	if !result.Success {
		utils.Error(c, 400, result.Message, nil)
		return
	}

	c.JSON(201, result)
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.Error(c, 400, "username and password are required", err)
		return
	}

	result, err := h.authService.Login(input.Username, input.Password)
	if err != nil {
		utils.Error(c, 500, "login failed, please try again", err)
		return
	}

	if !result.Success {
		utils.Error(c, 401, result.Message, nil)
		return
	}

	c.JSON(200, result)
}

func (h *AuthHandler) GetMe(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		utils.Error(c, 401, "unauthorized", nil)
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		utils.Error(c, 404, "user not found", err)
		return
	}

	utils.SuccessData(c, user)
}

func (h *AuthHandler) Verify(c *gin.Context) {
	userID := middleware.GetUserID(c)
	username := middleware.GetUsername(c)
	role := middleware.GetUserRole(c)

	c.JSON(200, gin.H{
		"success": true,
		"message": "token is valid",
		"user": gin.H{
			"userId":   userID,
			"username": username,
			"role":     role,
		},
	})
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		utils.Error(c, 401, "unauthorized", nil)
		return
	}

	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.Error(c, 400, "current and new password are required", err)
		return
	}

	if len(input.NewPassword) < 6 {
		utils.Error(c, 400, "new password must be at least 6 characters", nil)
		return
	}

	result, err := h.authService.UpdatePassword(userID, input.OldPassword, input.NewPassword)
	if err != nil {
		utils.Error(c, 500, "failed to change password, please try again", err)
		return
	}

	if !result.Success {
		utils.Error(c, 400, result.Message, nil)
		return
	}

	c.JSON(200, result)
}

func (h *AuthHandler) SetupRequired(c *gin.Context) {
	hasUsers, err := h.authService.HasUsers()
	if err != nil {
		utils.Error(c, 500, "failed to check existing accounts", err)
		return
	}

	c.JSON(200, gin.H{
		"success":       true,
		"setupRequired": !hasUsers,
	})
}

type SetupInput struct {
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Email    *string `json:"email"`
}

func (h *AuthHandler) SetupAdmin(c *gin.Context) {
	var input SetupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.Error(c, 400, "username and password are required", err)
		return
	}

	result, err := h.authService.CreateInitialAdmin(input.Username, input.Password, input.Email)
	if err != nil {
		utils.Error(c, 500, "setup failed, please try again", err)
		return
	}

	if !result.Success {
		utils.Error(c, 400, result.Message, nil)
		return
	}

	c.JSON(201, result)
}
