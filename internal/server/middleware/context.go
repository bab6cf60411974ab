package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/soumendrak/ragas/pkg/ai"
)

// App carries the shared dependencies handlers need.
type App struct {
	AiClient ai.Client
	// Parallel caps concurrent generation calls per request.
	Parallel int
	// MaxTries is the per-call retry budget for generation failures.
	MaxTries int
}

// AppContext wraps the echo context with the application dependencies.
type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware attaches the shared dependencies to every request.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
