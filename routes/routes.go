package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/soccerhub/league-manager/handlers"
	"github.com/soccerhub/league-manager/middleware"
	"github.com/soccerhub/league-manager/models"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Team       *handlers.TeamHandler
	Player     *handlers.PlayerHandler
	Division   *handlers.DivisionHandler
	Tournament *handlers.TournamentHandler
	Venue      *handlers.VenueHandler
	Match      *handlers.MatchHandler
	Playoff    *handlers.PlayoffHandler
	WebSocket  *handlers.WebSocketHandler
}

// InitRoutes assembles the router. Reads are public; every mutating route
// requires a valid token, and match results additionally admit referees
// (the service layer narrows that to the assigned referee).
func InitRoutes(h Handlers, jwtSecret string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	organizerOnly := middleware.RequireRole(models.RoleOrganizer)
	anyRole := middleware.RequireRole(models.RoleOrganizer, models.RoleReferee)

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListTournaments)
		r.Get("/{tournamentID}", h.Tournament.GetTournament)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, organizerOnly)
			r.Post("/", h.Tournament.CreateTournament)
			r.Put("/{tournamentID}", h.Tournament.UpdateTournament)
			r.Delete("/{tournamentID}", h.Tournament.DeleteTournament)
		})
	})

	router.Route("/divisions", func(r chi.Router) {
		r.Get("/", h.Division.ListDivisions)
		r.Get("/{divisionID}", h.Division.GetDivision)
		r.Get("/{divisionID}/standings", h.Division.GetStandings)
		r.Get("/{divisionID}/playoffs", h.Playoff.GetBracket)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, organizerOnly)
			r.Post("/", h.Division.CreateDivision)
			r.Put("/{divisionID}", h.Division.UpdateDivision)
			r.Delete("/{divisionID}", h.Division.DeleteDivision)
			r.Post("/{divisionID}/schedule", h.Division.GenerateSchedule)
			r.Post("/{divisionID}/playoffs", h.Playoff.GeneratePlayoffs)
			r.Delete("/{divisionID}/playoffs", h.Playoff.ClearPlayoffs)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", h.Team.ListTeams)
		r.Get("/{teamID}", h.Team.GetTeam)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, organizerOnly)
			r.Post("/", h.Team.CreateTeam)
			r.Put("/{teamID}", h.Team.UpdateTeam)
			r.Delete("/{teamID}", h.Team.DeleteTeam)
			r.Post("/{teamID}/logo", h.Team.UploadLogo)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Get("/", h.Player.ListPlayers)
		r.Get("/{playerID}", h.Player.GetPlayer)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, organizerOnly)
			r.Post("/", h.Player.CreatePlayer)
			r.Put("/{playerID}", h.Player.UpdatePlayer)
			r.Delete("/{playerID}", h.Player.DeletePlayer)
		})
	})

	router.Route("/venues", func(r chi.Router) {
		r.Get("/", h.Venue.ListVenues)
		r.Get("/{venueID}", h.Venue.GetVenue)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, organizerOnly)
			r.Post("/", h.Venue.CreateVenue)
			r.Put("/{venueID}", h.Venue.UpdateVenue)
			r.Delete("/{venueID}", h.Venue.DeleteVenue)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", h.Match.ListMatches)
		r.Get("/{matchID}", h.Match.GetMatch)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, organizerOnly)
			r.Post("/", h.Match.CreateMatch)
			r.Put("/{matchID}", h.Match.UpdateMatch)
			r.Delete("/{matchID}", h.Match.DeleteMatch)
		})

		// Referees record results for their assigned matches; the
		// authorization gate enforces assignment and status.
		r.Group(func(r chi.Router) {
			r.Use(authenticate, anyRole)
			r.Post("/{matchID}/result", h.Match.RecordResult)
		})
	})

	router.Get("/ws/divisions/{divisionID}", h.WebSocket.ServeWs)

	return router
}
