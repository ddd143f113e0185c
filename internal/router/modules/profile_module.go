package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/devlinkhq/devlink/internal/interface/http"
	"github.com/devlinkhq/devlink/internal/interface/middleware"
	"github.com/devlinkhq/devlink/pkg/helpers"
)

// ProfileModule wires the profile aggregate routes.
// Public: GET /api/profile, GET /api/profile/user/:user_id,
//         GET /api/profile/github/:username
// Protected: everything that mutates, plus /api/profile/me and search.
// DELETE /api/profile (cascading account deletion) lives in the
// account module.
type ProfileModule struct {
	Profiles *handlers.ProfileHandler
	Tokens   *helpers.TokenCodec
	Redis    *redis.Client
}

func NewProfileModule(p *handlers.ProfileHandler, tokens *helpers.TokenCodec, rdb *redis.Client) *ProfileModule {
	return &ProfileModule{Profiles: p, Tokens: tokens, Redis: rdb}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	githubLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.GET("/profile", m.Profiles.List)
	rg.GET("/profile/user/:user_id", m.Profiles.GetByUser)
	rg.GET("/profile/github/:username", githubLimiter, m.Profiles.GithubRepos)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens))
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/profile/me", m.Profiles.Me)
		auth.GET("/profile/search", m.Profiles.Search)
		auth.POST("/profile", m.Profiles.Upsert)
		auth.PUT("/profile/experience", m.Profiles.AddExperience)
		auth.DELETE("/profile/experience/:exp_id", m.Profiles.RemoveExperience)
		auth.PUT("/profile/education", m.Profiles.AddEducation)
		auth.DELETE("/profile/education/:edu_id", m.Profiles.RemoveEducation)
	}
}
