package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devlinkhq/devlink/internal/application"
	"github.com/devlinkhq/devlink/internal/domain/entity"
	"github.com/devlinkhq/devlink/internal/interface/middleware"
	"github.com/devlinkhq/devlink/pkg/response"
	"github.com/devlinkhq/devlink/pkg/validation"
)

// ProfileHandler exposes the profile aggregate plus the GitHub
// repository-listing proxy.
type ProfileHandler struct {
	Svc    *application.ProfileService
	Github *application.GithubService
	Logger *logrus.Logger
}

func NewProfileHandler(svc *application.ProfileService, github *application.GithubService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Svc: svc, Github: github, Logger: logger}
}

type upsertProfileRequest struct {
	Company        *string `json:"company"`
	Website        *string `json:"website"`
	Location       *string `json:"location"`
	Status         *string `json:"status"`
	Bio            *string `json:"bio"`
	GithubUsername *string `json:"githubusername"`
	// Comma-separated; split and trimmed server-side.
	Skills *string `json:"skills"`

	Youtube   *string `json:"youtube"`
	Twitter   *string `json:"twitter"`
	Facebook  *string `json:"facebook"`
	Linkedin  *string `json:"linkedin"`
	Instagram *string `json:"instagram"`
}

func (r upsertProfileRequest) toUpdate() entity.ProfileUpdate {
	u := entity.ProfileUpdate{
		Company:        r.Company,
		Website:        r.Website,
		Location:       r.Location,
		Status:         r.Status,
		Bio:            r.Bio,
		GithubUsername: r.GithubUsername,
		Social: entity.SocialUpdate{
			Youtube:   r.Youtube,
			Twitter:   r.Twitter,
			Facebook:  r.Facebook,
			Linkedin:  r.Linkedin,
			Instagram: r.Instagram,
		},
	}
	if r.Skills != nil {
		u.Skills = entity.ParseSkills(*r.Skills)
	}
	return u
}

type experienceRequest struct {
	Title       string     `json:"title" binding:"required"`
	Company     string     `json:"company" binding:"required"`
	Location    string     `json:"location"`
	From        time.Time  `json:"from" binding:"required"`
	To          *time.Time `json:"to"`
	Current     bool       `json:"current"`
	Description string     `json:"description"`
}

type educationRequest struct {
	School       string     `json:"school" binding:"required"`
	Degree       string     `json:"degree" binding:"required"`
	FieldOfStudy string     `json:"fieldofstudy" binding:"required"`
	From         time.Time  `json:"from" binding:"required"`
	To           *time.Time `json:"to"`
	Current      bool       `json:"current"`
	Description  string     `json:"description"`
}

type profileResponse struct {
	ID             string              `json:"id"`
	UserID         string              `json:"user_id"`
	Name           string              `json:"name,omitempty"`
	AvatarURL      string              `json:"avatar_url,omitempty"`
	Company        string              `json:"company,omitempty"`
	Website        string              `json:"website,omitempty"`
	Location       string              `json:"location,omitempty"`
	Status         string              `json:"status,omitempty"`
	Bio            string              `json:"bio,omitempty"`
	GithubUsername string              `json:"githubusername,omitempty"`
	Skills         []string            `json:"skills"`
	Social         entity.SocialLinks  `json:"social"`
	Experience     []entity.Experience `json:"experience"`
	Education      []entity.Education  `json:"education"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func toProfileResponse(p *entity.Profile) profileResponse {
	return profileResponse{
		ID:             p.ID,
		UserID:         p.UserID,
		Name:           p.OwnerName,
		AvatarURL:      p.OwnerAvatar,
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Status:         p.Status,
		Bio:            p.Bio,
		GithubUsername: p.GithubUsername,
		Skills:         p.Skills,
		Social:         p.Social,
		Experience:     p.Experience,
		Education:      p.Education,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (h *ProfileHandler) serveProfile(c *gin.Context, ownerID, notFoundMsg string) {
	p, err := h.Svc.Get(c.Request.Context(), ownerID)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, notFoundMsg, nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", ownerID).Error("profile lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	response.Success(c, http.StatusOK, toProfileResponse(p), "profile", nil)
}

// Me handles GET /api/profile/me.
func (h *ProfileHandler) Me(c *gin.Context) {
	h.serveProfile(c, c.GetString(middleware.CtxUserIDKey), "there is no profile for this user")
}

// GetByUser handles GET /api/profile/user/:user_id (public view).
func (h *ProfileHandler) GetByUser(c *gin.Context) {
	h.serveProfile(c, c.Param("user_id"), "profile not found")
}

// List handles GET /api/profile.
func (h *ProfileHandler) List(c *gin.Context) {
	profiles, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("profile listing failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	out := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileResponse(p))
	}
	response.Success(c, http.StatusOK, out, "profiles", gin.H{"count": len(out)})
}

// Upsert handles POST /api/profile: create-if-absent, else merge.
func (h *ProfileHandler) Upsert(c *gin.Context) {
	var req upsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	p, err := h.Svc.Upsert(c.Request.Context(), uid, req.toUpdate())
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("profile upsert failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	response.Success(c, http.StatusOK, toProfileResponse(p), "profile saved", nil)
}

func (h *ProfileHandler) serveMutation(c *gin.Context, p *entity.Profile, err error, msg string) {
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "there is no profile for this user", nil)
			return
		}
		h.Logger.WithError(err).Error("profile mutation failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	response.Success(c, http.StatusOK, toProfileResponse(p), msg, nil)
}

// AddExperience handles PUT /api/profile/experience.
func (h *ProfileHandler) AddExperience(c *gin.Context) {
	var req experienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	p, err := h.Svc.AddExperience(c.Request.Context(), uid, entity.Experience{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        req.From,
		To:          req.To,
		Current:     req.Current,
		Description: req.Description,
	})
	h.serveMutation(c, p, err, "experience added")
}

// RemoveExperience handles DELETE /api/profile/experience/:exp_id.
func (h *ProfileHandler) RemoveExperience(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	p, err := h.Svc.RemoveExperience(c.Request.Context(), uid, c.Param("exp_id"))
	h.serveMutation(c, p, err, "experience removed")
}

// AddEducation handles PUT /api/profile/education.
func (h *ProfileHandler) AddEducation(c *gin.Context) {
	var req educationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	p, err := h.Svc.AddEducation(c.Request.Context(), uid, entity.Education{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         req.From,
		To:           req.To,
		Current:      req.Current,
		Description:  req.Description,
	})
	h.serveMutation(c, p, err, "education added")
}

// RemoveEducation handles DELETE /api/profile/education/:edu_id.
func (h *ProfileHandler) RemoveEducation(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	p, err := h.Svc.RemoveEducation(c.Request.Context(), uid, c.Param("edu_id"))
	h.serveMutation(c, p, err, "education removed")
}

// Search handles GET /api/profile/search?q=...&size=...
func (h *ProfileHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("profile search failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}

// GithubRepos handles GET /api/profile/github/:username.
func (h *ProfileHandler) GithubRepos(c *gin.Context) {
	username := c.Param("username")
	repos, err := h.Github.Repos(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "no github profile found", nil)
			return
		}
		h.Logger.WithError(err).WithField("username", username).Error("github proxy failed")
		response.Error[any](c, http.StatusInternalServerError, "server error", nil)
		return
	}
	response.Success(c, http.StatusOK, repos, "github repos", nil)
}
