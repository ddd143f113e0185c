package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devlinkhq/devlink/internal/application"
	"github.com/devlinkhq/devlink/internal/domain/entity"
	"github.com/devlinkhq/devlink/internal/interface/middleware"
	"github.com/devlinkhq/devlink/pkg/response"
	"github.com/devlinkhq/devlink/pkg/validation"
)

type PostHandler struct {
	Svc    *application.PostService
	Logger *logrus.Logger
}

func NewPostHandler(svc *application.PostService, logger *logrus.Logger) *PostHandler {
	return &PostHandler{Svc: svc, Logger: logger}
}

type createPostRequest struct {
	Text string `json:"text" binding:"required"`
}

type postResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Text         string    `json:"text"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar"`
	CreatedAt    time.Time `json:"created_at"`
}

func toPostResponse(p *entity.Post) postResponse {
	return postResponse{
		ID:           p.ID,
		UserID:       p.UserID,
		Text:         p.Text,
		AuthorName:   p.AuthorName,
		AuthorAvatar: p.AuthorAvatar,
		CreatedAt:    p.CreatedAt,
	}
}

// Create handles POST /api/posts.
func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	p, err := h.Svc.Create(c.Request.Context(), uid, req.Text)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", uid).Error("post creation failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	response.Success(c, http.StatusCreated, toPostResponse(p), "post created", nil)
}

// List handles GET /api/posts.
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("post listing failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	response.Success(c, http.StatusOK, out, "posts", gin.H{"count": len(out)})
}

// Delete handles DELETE /api/posts/:post_id.
func (h *PostHandler) Delete(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	err := h.Svc.Delete(c.Request.Context(), uid, c.Param("post_id"))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrNotFound):
			response.Error[any](c, http.StatusNotFound, "post not found", nil)
		case errors.Is(err, application.ErrNotOwner):
			response.Error[any](c, http.StatusUnauthorized, "user not authorized", nil)
		default:
			h.Logger.WithError(err).WithField("user_id", uid).Error("post deletion failed")
			response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		}
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "post removed", nil)
}
