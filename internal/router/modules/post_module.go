package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/devlinkhq/devlink/internal/interface/http"
	"github.com/devlinkhq/devlink/internal/interface/middleware"
	"github.com/devlinkhq/devlink/pkg/helpers"
)

// PostModule wires the posts routes; all of them require a token.
type PostModule struct {
	Handler *handlers.PostHandler
	Tokens  *helpers.TokenCodec
	Redis   *redis.Client
}

func NewPostModule(h *handlers.PostHandler, tokens *helpers.TokenCodec, rdb *redis.Client) *PostModule {
	return &PostModule{Handler: h, Tokens: tokens, Redis: rdb}
}

func (m *PostModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens))
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/posts", m.Handler.Create)
		auth.GET("/posts", m.Handler.List)
		auth.DELETE("/posts/:post_id", m.Handler.Delete)
	}
}
