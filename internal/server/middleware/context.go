package middleware

import (
	"github.com/vocal-lineage/backend/internal/queue"
	"github.com/vocal-lineage/backend/pkg/pathfind"
	"github.com/vocal-lineage/backend/pkg/snapshot"
	"github.com/vocal-lineage/backend/pkg/store"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/labstack/echo/v4"
)

type AppUser struct {
	UserID      string
	Role        string
	Permissions []string
}

// App carries the long-lived collaborators shared by every request.
type App struct {
	Store     store.GraphStore
	Resolver  *pathfind.Resolver
	Snapshots snapshot.Store
	Audit     queue.Publisher
	// Key verifies bearer tokens. It may be nil when only the master API
	// key is accepted.
	Key            *keyfunc.Keyfunc
	MasterAPIKey   string
	MasterUserID   string
	MasterUserRole string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
