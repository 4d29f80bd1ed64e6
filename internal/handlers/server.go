package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ctfquest07/ctf-server1-sub000/internal/config"
	"github.com/ctfquest07/ctf-server1-sub000/internal/event"
	"github.com/ctfquest07/ctf-server1-sub000/internal/jwt"
	"github.com/ctfquest07/ctf-server1-sub000/internal/middleware"
	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
	"github.com/ctfquest07/ctf-server1-sub000/internal/repo"
	"github.com/ctfquest07/ctf-server1-sub000/internal/service"
	"github.com/ctfquest07/ctf-server1-sub000/internal/wss"
)

// Server bundles the injected services behind the HTTP surface.
type Server struct {
	cfg        config.Config
	repo       *repo.MongoRepository
	cache      service.ScoreboardInvalidator
	events     *event.Store
	processor  *service.SubmissionProcessor
	scoreboard *service.ScoreboardAggregator
	jwtManager *jwt.JWTManager
	hub        *wss.Hub
}

func NewServer(
	cfg config.Config,
	mongoRepo *repo.MongoRepository,
	cache service.ScoreboardInvalidator,
	events *event.Store,
	processor *service.SubmissionProcessor,
	scoreboard *service.ScoreboardAggregator,
	jwtManager *jwt.JWTManager,
	hub *wss.Hub,
) *Server {
	return &Server{
		cfg:        cfg,
		repo:       mongoRepo,
		cache:      cache,
		events:     events,
		processor:  processor,
		scoreboard: scoreboard,
		jwtManager: jwtManager,
		hub:        hub,
	}
}

// SetupRouter wires all routes and middleware.
func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	auth := middleware.JWTAuth(s.jwtManager)
	admin := middleware.AdminOnly()

	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", s.Login)

		api.GET("/event", s.GetEventStatus)
		api.POST("/event/start", auth, admin, s.StartEvent)
		api.POST("/event/end", auth, admin, s.EndEvent)

		api.GET("/challenges", auth, s.ListChallenges)
		api.GET("/challenges/:id", auth, s.GetChallenge)
		api.POST("/challenges/:id/submit", auth, s.SubmitFlag)

		api.POST("/challenges", auth, admin, s.CreateChallenge)
		api.PUT("/challenges/:id", auth, admin, s.UpdateChallenge)
		api.DELETE("/challenges/:id", auth, admin, s.DeleteChallenge)

		api.GET("/scoreboard", s.GetScoreboard)

		api.GET("/teams", auth, s.ListTeams)
		api.GET("/teams/:id", auth, s.GetTeam)
		api.POST("/teams", auth, admin, s.CreateTeam)
		api.POST("/teams/:id/members", auth, admin, s.AddTeamMember)

		api.POST("/admin/users", auth, admin, s.CreateUser)
		api.PUT("/admin/users/:id/flags", auth, admin, s.SetUserFlags)
		api.GET("/admin/submissions", auth, admin, s.ListSubmissions)
		api.POST("/admin/reset", auth, admin, s.ResetPlatform)

		api.GET("/admin/feed", s.AdminFeed)
	}

	return r
}

// Start runs the HTTP server
func (s *Server) Start(addr string) error {
	r := s.SetupRouter()
	log.Printf("Starting CTF server on %s", addr)
	return r.Run(addr)
}

// AdminFeed upgrades to a websocket for the live dashboard feed.
// Browser websocket clients cannot set headers, so the token is also
// accepted as a query parameter; either way it is validated before
// the upgrade.
func (s *Server) AdminFeed(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		const prefix = "Bearer "
		if h := c.Request.Header.Get("Authorization"); strings.HasPrefix(h, prefix) {
			token = h[len(prefix):]
		}
	}

	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		writeError(c, http.StatusUnauthorized, "invalid token")
		return
	}
	if claims.Role != model.RoleAdmin {
		writeError(c, http.StatusForbidden, "admin access required")
		return
	}

	s.hub.Serve(c.Writer, c.Request)
}
