package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pdralston/puttingLeague/handlers"
	"github.com/pdralston/puttingLeague/middleware"
	"github.com/pdralston/puttingLeague/models"
)

// SetupRoutes wires every handler into the router. Reads are public so the
// venue TVs can poll without credentials; everything that mutates league
// state sits behind the admin JWT and a per-client rate limit.
func SetupRoutes(
	router *chi.Mux,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	playerHandler *handlers.PlayerHandler,
	acePotHandler *handlers.AcePotHandler,
	adminHandler *handlers.AdminHandler,
	webSocketHandler *handlers.WebSocketHandler,
	authenticator *middleware.Authenticator,
	rateLimiter *middleware.RateLimiter,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		r.Get("/players", playerHandler.List)
		r.Get("/players/{playerID}", playerHandler.Get)
		r.Get("/players/{playerID}/history", playerHandler.History)
		r.Get("/standings", playerHandler.Standings)
		r.Get("/ace-pot", acePotHandler.Ledger)

		r.Get("/tournaments", tournamentHandler.List)
		r.Get("/tournaments/{tournamentID}", tournamentHandler.Get)
		r.Get("/tournaments/{tournamentID}/registrations", tournamentHandler.ListRegistrations)
		r.Get("/tournaments/{tournamentID}/teams", tournamentHandler.ListTeams)
		r.Get("/tournaments/{tournamentID}/bracket", tournamentHandler.GetBracket)

		r.Group(func(r chi.Router) {
			r.Use(authenticator.Authenticate)
			r.Use(authenticator.RequireRole(models.RoleAdmin))
			r.Use(rateLimiter.Limit)

			r.Post("/auth/users", authHandler.CreateUser)

			r.Post("/tournaments", tournamentHandler.Create)
			r.Post("/tournaments/{tournamentID}/cancel", tournamentHandler.Cancel)
			r.Delete("/tournaments/{tournamentID}", tournamentHandler.Delete)

			r.Post("/tournaments/{tournamentID}/registrations", tournamentHandler.RegisterPlayers)
			r.Delete("/tournaments/{tournamentID}/registrations/{playerID}", tournamentHandler.WithdrawPlayer)
			r.Post("/tournaments/{tournamentID}/teams", tournamentHandler.BuildTeams)
			r.Post("/tournaments/{tournamentID}/bracket", tournamentHandler.GenerateBracket)

			r.Post("/tournaments/{tournamentID}/matches/{matchID}/start", matchHandler.Start)
			r.Post("/tournaments/{tournamentID}/matches/{matchID}/score", matchHandler.Score)
			r.Post("/tournaments/{tournamentID}/matches/{matchID}/bye", matchHandler.AdvanceBye)
			r.Post("/tournaments/{tournamentID}/championship", matchHandler.CreateChampionship)
			r.Post("/tournaments/{tournamentID}/recalculate", matchHandler.Recalculate)

			r.Put("/players/{playerID}", playerHandler.Update)

			r.Put("/tournaments/{tournamentID}/teams/{teamID}/place", adminHandler.OverridePlace)
			r.Post("/tournaments/{tournamentID}/recalculate-stats", adminHandler.RecalculateStats)
		})
	})
}
