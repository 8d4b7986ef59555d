package httpapi

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the base router with shared middleware and the health
// endpoint. Feature modules register their routes on top of it.
func NewRouter(db *sql.DB) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	registerHealthcheck(r, db)
	return r
}
