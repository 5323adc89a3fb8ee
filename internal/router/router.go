package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-tracker/internal/docstore"
	"github.com/iliyamo/fitness-tracker/internal/handler"
	"github.com/iliyamo/fitness-tracker/internal/repository"
)

// APIPrefix is where every collection is mounted.
const APIPrefix = "/api"

// Handlers bundles everything RegisterAPI wires into routes.
type Handlers struct {
	Root        *handler.APIRootHandler
	Users       *handler.UserHandler
	Teams       *handler.TeamHandler
	Activities  *handler.ActivityHandler
	Leaderboard *handler.LeaderboardHandler
	Workouts    *handler.WorkoutHandler
}

// crud is the verb set every collection exposes.
type crud interface {
	List(echo.Context) error
	Get(echo.Context) error
	Create(echo.Context) error
	Update(echo.Context) error
	Delete(echo.Context) error
}

// RegisterRoutes registers routes that sit outside the API, currently only
// the liveness check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI mounts the discovery document at /api and the standard verb
// set for each collection below it. PUT and PATCH share the same partial
// update semantics.
func RegisterAPI(e *echo.Echo, h Handlers, mw ...echo.MiddlewareFunc) {
	g := e.Group(APIPrefix, mw...)
	g.GET("", h.Root.Root)

	// must be registered before /users/:id so "verify" is not read as an id
	g.POST("/users/verify", h.Users.Verify)

	mount(g, "/users", h.Users)
	mount(g, "/teams", h.Teams)
	mount(g, "/activities", h.Activities)
	mount(g, "/leaderboard", h.Leaderboard)
	mount(g, "/workouts", h.Workouts)
}

func mount(g *echo.Group, path string, h crud) {
	g.GET(path, h.List)
	g.POST(path, h.Create)
	g.GET(path+"/:id", h.Get)
	g.PUT(path+"/:id", h.Update)
	g.PATCH(path+"/:id", h.Update)
	g.DELETE(path+"/:id", h.Delete)
}

// NewHandlers builds the repositories over store and the handlers that
// serve them.
func NewHandlers(store docstore.Store, hasher repository.CredentialHasher, publicBaseURL string) Handlers {
	resolver := repository.NewUserResolver(store)
	return Handlers{
		Root:        handler.NewAPIRootHandler(publicBaseURL, APIPrefix),
		Users:       handler.NewUserHandler(repository.NewUserRepo(store, hasher)),
		Teams:       handler.NewTeamHandler(repository.NewTeamRepo(store, resolver)),
		Activities:  handler.NewActivityHandler(repository.NewActivityRepo(store, resolver)),
		Leaderboard: handler.NewLeaderboardHandler(repository.NewLeaderboardRepo(store, resolver)),
		Workouts:    handler.NewWorkoutHandler(repository.NewWorkoutRepo(store)),
	}
}
