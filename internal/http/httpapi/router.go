package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// NewRouter assembles the HTTP surface. The geo lookup may be nil; staticDir
// enables the /static file server used by the development uploader.
func NewRouter(app *handlers.App, geo middleware.CountryLookup, staticDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Locale("en", geo),
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.CORSAllowedOrigins),
	)

	requireSession := middleware.SessionAuth(app.Sessions.Lookup)
	limitAuth := middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute)

	r.Get("/v1/healthz", app.Health)

	r.Route("/api/auth", func(r chi.Router) {
		r.With(limitAuth).Post("/register", app.AuthRegister)
		r.With(limitAuth).Post("/login", app.AuthLogin)
		r.Post("/logout", app.AuthLogout)
		r.With(requireSession).Get("/verify", app.AuthVerify)
	})

	r.Route("/api/thumbnail", func(r chi.Router) {
		r.Use(requireSession)
		r.Post("/generate", app.ThumbnailGenerate)
		r.Delete("/delete/{id}", app.ThumbnailDelete)
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(requireSession)
		r.Get("/thumbnails", app.ThumbnailList)
		r.Get("/thumbnails/{id}", app.ThumbnailGet)
	})

	if staticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir)))
		r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
			fs.ServeHTTP(w, req)
		})
	}

	return r
}
