package router

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/devlinkhq/devlink/config"
	"github.com/devlinkhq/devlink/internal/application"
	pginfra "github.com/devlinkhq/devlink/internal/infrastructure/postgres"
	handlers "github.com/devlinkhq/devlink/internal/interface/http"
	"github.com/devlinkhq/devlink/internal/router/modules"
	"github.com/devlinkhq/devlink/pkg/helpers"
)

// Deps carries the process-wide collaborators built in main. Modules
// receive everything they need explicitly; there is no ambient global
// lookup.
type Deps struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	Tokens *helpers.TokenCodec
	ES     *elasticsearch.Client // nil when search indexing is disabled
}

// InitModules wires repositories, services, and handlers, and
// registers every feature module with the registry.
func InitModules(r *Registry, d Deps) {
	users := pginfra.NewUserRepository(d.Pool)
	profiles := pginfra.NewProfileRepository(d.Pool)
	posts := pginfra.NewPostRepository(d.Pool)

	accountSvc := application.NewAccountService(users, profiles, posts, d.Tokens, d.Logger)
	profileSvc := application.NewProfileService(profiles, d.Logger, d.ES, d.Cfg.ESProfilesIndex)
	postSvc := application.NewPostService(posts, users, d.Logger)
	githubSvc := application.NewGithubService(d.Cfg.GithubAPIBase, d.Redis, d.Cfg.GithubCacheTTL, d.Logger)

	r.Add(modules.NewAccountModule(handlers.NewAccountHandler(accountSvc, d.Logger), d.Tokens, d.Redis))
	r.Add(modules.NewProfileModule(handlers.NewProfileHandler(profileSvc, githubSvc, d.Logger), d.Tokens, d.Redis))
	r.Add(modules.NewPostModule(handlers.NewPostHandler(postSvc, d.Logger), d.Tokens, d.Redis))
	if d.Cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(d.Redis))
	}
}
