package routes

import (
	"net/http"

	"github.com/muyouzhi6/cliproxy-stats/internal/cards"

	"github.com/muyouzhi6/cliproxy-stats/internal/config"

	"github.com/muyouzhi6/cliproxy-stats/internal/cpa"

	"github.com/muyouzhi6/cliproxy-stats/internal/docs"

	"github.com/muyouzhi6/cliproxy-stats/internal/middleware"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/gorilla/mux"
)

//	@title			CLIProxy Stats API
//	@version		1.0
//	@description	Renders CLIProxyAPI usage and quota statistics as PNG cards.

//	@host		localhost:8080
//	@BasePath	/

// @schemes	http https
func SetUpRoutes(svc *cards.Service, client *cpa.Client, cfg *config.Config) http.Handler {

	allowedOrigins := []string{
		"*",
	}

	// Create a new Gorilla Mux router
	router := mux.NewRouter()

	//Use cors middleware
	router.Use(middleware.CorsMiddleware(allowedOrigins))

	// Dynamically set Swagger host and schemes from config
	if cfg.Swagger.Host != "" {
		docs.SwaggerInfo.Host = cfg.Swagger.Host
	}
	if len(cfg.Swagger.Schemes) > 0 {
		docs.SwaggerInfo.Schemes = cfg.Swagger.Schemes
	}

	if cfg.AppEnv != "production" {
		// Serve Swagger UI only in non-production environments
		router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

		// Optional: Redirect /swagger to /swagger/index.html
		router.HandleFunc("/swagger", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
		})
	}

	//Handle health
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is up and running"))
	}).Methods("GET")

	// Register card feature routes
	// keep feature based routing in internal/cards
	cards.RegisterRoutes(router, svc, client)

	return router
}
