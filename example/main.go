// Command example runs a small blog on anvil.
//
// Environment:
//
//	ADDRESS      listen address (default ":8080")
//	REDIS_URL    enables Redis-backed sessions; memory sessions otherwise
//	ROUTES_FILE  route table on disk; the embedded one otherwise
//
// plus every variable of anvil.Config.
package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dmitrymomot/anvil"
	"github.com/dmitrymomot/anvil/example/controllers"
	"github.com/dmitrymomot/anvil/example/posts"
	"github.com/dmitrymomot/anvil/middlewares"
	"github.com/dmitrymomot/anvil/pkg/logger"
	"github.com/dmitrymomot/anvil/pkg/redis"
	"github.com/dmitrymomot/anvil/pkg/route"
	"github.com/dmitrymomot/anvil/pkg/session"
	"github.com/dmitrymomot/anvil/pkg/view"
)

//go:embed routes.yaml templates static
var assets embed.FS

func main() {
	ctx := context.Background()

	cfg, err := anvil.LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logger, middlewares.RequestIDExtractor())

	routes, err := loadRoutes(cfg.RoutesFile)
	if err != nil {
		log.Error("failed to load routes", "error", err)
		os.Exit(1)
	}

	templates, err := fs.Sub(assets, "templates")
	if err != nil {
		log.Error("failed to open templates", "error", err)
		os.Exit(1)
	}
	views := view.NewSet(templates, view.WithReload(!cfg.IsProduction()))
	if err := views.Load(); err != nil {
		log.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	var store session.Store = session.NewMemoryStore()
	var hooks []anvil.RunOption
	if cfg.Redis.URL != "" {
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		store = session.NewRedisStore(client, "example:sess")
		hooks = append(hooks, anvil.ShutdownHook(redis.Shutdown(client)))
	}

	repo := posts.NewRepository(seedPosts()...)

	app := anvil.New(
		anvil.WithConfig(cfg),
		anvil.WithLogger("example", cfg.Logger, middlewares.RequestIDExtractor(), anvil.RouteExtractor()),
		anvil.WithRoutes(routes),
		anvil.WithViews(views),
		anvil.WithScopeDefaults(map[string]any{"title": "Anvil"}),
		anvil.WithSession(store, anvil.WithSessionTTL(7*24*time.Hour)),
		anvil.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
		),
		anvil.WithStaticFiles("/static/", assets, "static"),

		anvil.WithController("pages", controllers.NewPages()),
		anvil.WithController("posts", controllers.NewPosts(repo)),

		anvil.WithNotFoundHandler(func(c anvil.Context) error {
			return c.String(http.StatusNotFound, "Nothing here.")
		}),
	)

	opts := append([]anvil.RunOption{anvil.ShutdownTimeout(15 * time.Second)}, hooks...)
	if err := app.Run(getEnv("ADDRESS", ":8080"), opts...); err != nil {
		log.Error("application error", "error", err)
		os.Exit(1)
	}
}

// loadRoutes reads the route table from path, or the embedded copy when
// path does not exist.
func loadRoutes(path string) (*route.Table, error) {
	routes, err := route.LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return route.LoadFS(assets, "routes.yaml")
	}
	return routes, err
}

func seedPosts() []posts.Post {
	now := time.Now()
	return []posts.Post{
		{ID: 1, Title: "Hello, anvil", Body: "The first post. Controllers render **templates**.", CreatedAt: now.Add(-72 * time.Hour)},
		{ID: 2, Title: "Embedding controllers", Body: "Cards on the index are `posts/card` embeds.", CreatedAt: now.Add(-24 * time.Hour)},
		{ID: 3, Title: "PJAX navigation", Body: "Layouts are skipped for PJAX requests.", CreatedAt: now},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
