package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/devlinkhq/devlink/internal/interface/http"
	"github.com/devlinkhq/devlink/internal/interface/middleware"
	"github.com/devlinkhq/devlink/pkg/helpers"
)

// AccountModule wires registration, login, and account deletion.
// Public: POST /api/users, POST /api/auth
// Protected: GET /api/auth, DELETE /api/profile
type AccountModule struct {
	Handler *handlers.AccountHandler
	Tokens  *helpers.TokenCodec
	Redis   *redis.Client
}

func NewAccountModule(h *handlers.AccountHandler, tokens *helpers.TokenCodec, rdb *redis.Client) *AccountModule {
	return &AccountModule{Handler: h, Tokens: tokens, Redis: rdb}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/users", registerLimiter, m.Handler.Register)
	rg.POST("/auth", loginLimiter, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens))
	{
		auth.GET("/auth", m.Handler.Me)
		auth.DELETE("/profile", m.Handler.Delete)
	}
}
