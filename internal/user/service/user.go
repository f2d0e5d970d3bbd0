package service

import (
	"github.com/gin-gonic/gin"

	"github.com/wallify/cdn-backend/internal/auth"
	apperrors "github.com/wallify/cdn-backend/internal/pkg/errors"
	"github.com/wallify/cdn-backend/internal/pkg/response"
	"github.com/wallify/cdn-backend/internal/user/biz"
)

// UserService exposes account endpoints
type UserService struct {
	uc *biz.UserUseCase
}

func NewUserService(uc *biz.UserUseCase) *UserService {
	return &UserService{uc: uc}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createAdminRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	AdminKey string `json:"admin_key" binding:"required"`
}

type updateUserRequest struct {
	IsActive *bool `json:"is_active"`
	IsAdmin  *bool `json:"is_admin"`
}

// Register handles POST /api/v1/auth/register
func (s *UserService) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrValidation, err.Error())
		return
	}
	user, err := s.uc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, user)
}

// Login handles POST /api/v1/auth/login
func (s *UserService) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrValidation, err.Error())
		return
	}
	user, token, err := s.uc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"token": token,
		"user":  user,
	})
}

// CreateAdmin handles POST /api/v1/auth/admin
func (s *UserService) CreateAdmin(c *gin.Context) {
	var req createAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrValidation, err.Error())
		return
	}
	user, err := s.uc.CreateAdmin(c.Request.Context(), req.Username, req.Password, req.AdminKey)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, user)
}

// ResetAPIKey handles POST /api/v1/auth/reset-api-key
func (s *UserService) ResetAPIKey(c *gin.Context) {
	userID := c.GetString(auth.ContextUserID)
	apiKey, err := s.uc.ResetAPIKey(c.Request.Context(), userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"api_key": apiKey})
}

// ListUsers handles GET /api/v1/admin/users
func (s *UserService) ListUsers(c *gin.Context) {
	users, err := s.uc.List(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, users)
}

// UpdateUser handles PUT /api/v1/admin/users/:id
func (s *UserService) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrValidation, err.Error())
		return
	}
	user, err := s.uc.Update(c.Request.Context(), c.Param("id"), req.IsActive, req.IsAdmin)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, user)
}
