package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/matchforge/arena/handlers"
	"github.com/matchforge/arena/middleware"
	"github.com/matchforge/arena/models"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	matchHandler *handlers.MatchHandler,
	standingsHandler *handlers.StandingsHandler,
	adminHandler *handlers.AdminHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/matches", matchHandler.RequestMatchHandler)
			r.Patch("/matches/{matchID}", matchHandler.SubmitResultHandler)
			r.Delete("/matches/{matchID}", matchHandler.CancelMatchHandler)
		})

		r.Get("/matches", matchHandler.ListMatchesHandler)
		r.Get("/matches/{matchID}", matchHandler.GetMatchHandler)
		r.Get("/standings", standingsHandler.GetStandingsHandler)
		r.Get("/teams/{teamID}", standingsHandler.GetTeamRecordHandler)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.RequireRole(models.RoleAdmin))

		r.Patch("/tournaments/{tournamentID}/matches/{matchID}", adminHandler.ForceResultHandler)
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
