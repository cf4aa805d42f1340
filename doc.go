// Package anvil is a controller-oriented web framework for server-rendered
// Go applications.
//
// Requests are matched against a declarative route table and dispatched to
// controllers. A controller runs Before, one action and After, and the value
// the action returns is rendered as a template, a JSON payload or a
// component. Templates and actions can embed other controllers inside the
// same request.
//
// # Quick Start
//
// Load the route table, register controllers and run the server:
//
//	routes, err := route.LoadFile("routes.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	app := anvil.New(
//	    anvil.WithRoutes(routes),
//	    anvil.WithViews(view.NewSet(os.DirFS("templates"))),
//	    anvil.WithController("user", controllers.NewUser(repo)),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
// Each route names a URL pattern, the methods it accepts and default
// parameters. The "controller" and "action" parameters pick what runs:
//
//	user:
//	  path: /u/{id}
//	  defaults:
//	    controller: user
//	    action: show
//
// URLs are built back from route names:
//
//	u, err := c.URL("user", route.Params{"id": "5"}, route.Q("tab", "posts")...)
//	// "/u/5?tab=posts"
//
// # Controllers
//
// Controllers embed [Base] for the origin check and PJAX headers and return
// their operations from Actions:
//
//	type UserController struct {
//	    anvil.Base
//	    repo *repository.Queries
//	}
//
//	func NewUser(repo *repository.Queries) anvil.ControllerFactory {
//	    return func() anvil.Controller {
//	        return &UserController{repo: repo}
//	    }
//	}
//
//	func (u *UserController) Actions() anvil.Actions {
//	    return anvil.Actions{"show": u.show}
//	}
//
//	func (u *UserController) show(c anvil.Context, _ ...any) (any, error) {
//	    user, err := u.repo.User(c, anvil.Param[int64](c, "id"))
//	    if err != nil {
//	        return nil, anvil.ErrNotFound("User not found")
//	    }
//	    return anvil.NewTemplate("user/show", map[string]any{"user": user}), nil
//	}
//
// # Embeds
//
// A template runs another controller with the embed function:
//
//	{{ embed "controller" "user" "action" "card" "prop-id" .user.ID }}
//
// With "fetch" the output is returned instead of written; with "silent"
// failures are logged and swallowed.
//
// # Middleware
//
// Middleware wraps the dispatch of every route:
//
//	func Timing(log *slog.Logger) anvil.Middleware {
//	    return func(next anvil.HandlerFunc) anvil.HandlerFunc {
//	        return func(c anvil.Context) error {
//	            start := time.Now()
//	            err := next(c)
//	            log.Info("request",
//	                "route", c.RouteName(),
//	                "duration", time.Since(start),
//	            )
//	            return err
//	        }
//	    }
//	}
//
// # Shutdown
//
// The application handles SIGINT/SIGTERM for graceful shutdown.
// Register cleanup functions with ShutdownHook:
//
//	app.Run(":8080",
//	    anvil.ShutdownHook(redis.Shutdown(client)),
//	)
package anvil
