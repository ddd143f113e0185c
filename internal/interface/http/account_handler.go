package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devlinkhq/devlink/internal/application"
	"github.com/devlinkhq/devlink/internal/interface/middleware"
	"github.com/devlinkhq/devlink/pkg/response"
	"github.com/devlinkhq/devlink/pkg/validation"
)

// AccountHandler exposes registration, login, current-user lookup, and
// cascading account deletion.
type AccountHandler struct {
	Svc    *application.AccountService
	Logger *logrus.Logger
}

func NewAccountHandler(svc *application.AccountService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// Register handles POST /api/users.
func (h *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrEmailTaken) {
			response.Error[any](c, http.StatusBadRequest, "user already exists", nil)
			return
		}
		h.Logger.WithError(err).Error("register failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"token": res.Token}, "user registered", gin.H{"expires_at": res.ExpiresAt})
}

// Login handles POST /api/auth.
func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusBadRequest, "invalid credentials", nil)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	u := res.User
	response.Success(c, http.StatusOK, gin.H{
		"token": res.Token,
		"user":  userResponse{ID: u.ID, Name: u.Name, Email: u.Email, AvatarURL: u.AvatarURL},
	}, "login successful", gin.H{"expires_at": res.ExpiresAt})
}

// Me handles GET /api/auth, resolving the account behind the token.
func (h *AccountHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.CurrentUser(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", uid).Error("current user lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	response.Success(c, http.StatusOK, userResponse{ID: u.ID, Name: u.Name, Email: u.Email, AvatarURL: u.AvatarURL}, "current user", nil)
}

// Delete handles DELETE /api/profile: removes the caller's posts,
// profile, and account.
func (h *AccountHandler) Delete(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.DeleteAccount(c.Request.Context(), uid); err != nil {
		if errors.Is(err, application.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", uid).Error("account deletion failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "user removed", nil)
}
