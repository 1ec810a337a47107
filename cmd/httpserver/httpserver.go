// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/doomscrollr/crowdbank/internal/accountdelivery"
	"github.com/doomscrollr/crowdbank/internal/accountrepo"
	"github.com/doomscrollr/crowdbank/internal/accountservice"
	"github.com/doomscrollr/crowdbank/internal/chatdelivery"
	"github.com/doomscrollr/crowdbank/internal/chatrepo"
	"github.com/doomscrollr/crowdbank/internal/chatservice"
	"github.com/doomscrollr/crowdbank/internal/events"
	"github.com/doomscrollr/crowdbank/internal/ledgerdelivery"
	"github.com/doomscrollr/crowdbank/internal/ledgerrepo"
	"github.com/doomscrollr/crowdbank/internal/ledgerservice"
	"github.com/doomscrollr/crowdbank/internal/middleware"
	"github.com/doomscrollr/crowdbank/internal/postdelivery"
	"github.com/doomscrollr/crowdbank/internal/postrepo"
	"github.com/doomscrollr/crowdbank/internal/postservice"
	"github.com/doomscrollr/crowdbank/internal/projectdelivery"
	"github.com/doomscrollr/crowdbank/internal/projectrepo"
	"github.com/doomscrollr/crowdbank/internal/projectservice"
	"github.com/doomscrollr/crowdbank/internal/sessiondelivery"
	"github.com/doomscrollr/crowdbank/internal/sessionrepo"
	"github.com/doomscrollr/crowdbank/internal/sessionservice"
	"github.com/doomscrollr/crowdbank/internal/userdelivery"
	"github.com/doomscrollr/crowdbank/internal/userrepo"
	"github.com/doomscrollr/crowdbank/internal/userservice"
	"github.com/doomscrollr/crowdbank/pkg/configpkg"
	"github.com/doomscrollr/crowdbank/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	accountRepo := accountrepo.NewRepoPGS(conn)
	projectRepo := projectrepo.NewRepoPGS(conn)
	ledgerRepo := ledgerrepo.NewRepoPGS(conn)
	sessionRepo := sessionrepo.NewRepoPGS(conn)
	postRepo := postrepo.NewRepoPGS(conn)
	chatRepo := chatrepo.NewRepoPGS(conn)

	tokenMaker, err := tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	userService := userservice.New(userRepo)
	accountService := accountservice.New(accountRepo)
	projectService := projectservice.New(projectRepo, accountService)
	ledgerService := ledgerservice.New(ledgerRepo, accountService, projectService)
	postService := postservice.New(postRepo, accountService)
	chatService := chatservice.New(chatRepo, accountService)

	sessionService, err := sessionservice.New(sessionRepo, config, tokenMaker)
	if err != nil {
		return nil, errors.New("cannot initialize session service")
	}

	var publisher events.Publisher = events.NewKafkaPublisher(
		strings.Split(config.EventBrokerAddress, ","), config.EventTopic)

	userHandler := userdelivery.NewHandler(userService, sessionService)
	accountHandler := accountdelivery.NewHandler(accountService)
	projectHandler := projectdelivery.NewHandler(projectService)
	ledgerHandler := ledgerdelivery.NewHandler(ledgerService, publisher)
	sessionHandler := sessiondelivery.NewHandler(sessionService)
	postHandler := postdelivery.NewHandler(postService)
	chatHandler := chatdelivery.NewHandler(chatService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)
	engine.GET("/users", userHandler.List)
	engine.POST("/sessions", sessionHandler.RenewAccessToken)

	engine.GET("/projects", projectHandler.List)
	engine.GET("/projects/:id", projectHandler.Get)
	engine.GET("/posts", postHandler.List)
	engine.GET("/posts/:id", postHandler.Get)
	engine.GET("/posts/:id/comments", postHandler.ListComments)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(sessionService.TokenMaker))

	authRoutes.GET("/accounts/:id", accountHandler.Get)
	authRoutes.GET("/accounts/:id/profile", accountHandler.Profile)
	authRoutes.PATCH("/accounts", accountHandler.UpdateBio)
	authRoutes.POST("/follows", accountHandler.ToggleFollow)

	authRoutes.PUT("/users/password", userHandler.ChangePassword)

	authRoutes.POST("/projects", projectHandler.Create)

	authRoutes.POST("/transfers", ledgerHandler.Create)
	authRoutes.GET("/transfers", ledgerHandler.List)
	authRoutes.GET("/transfers/:id", ledgerHandler.Get)

	authRoutes.POST("/posts", postHandler.Create)
	authRoutes.POST("/posts/:id/likes", postHandler.ToggleLike)
	authRoutes.POST("/posts/:id/comments", postHandler.Comment)

	authRoutes.POST("/messages", chatHandler.Send)
	authRoutes.GET("/conversations", chatHandler.ListConversations)
	authRoutes.GET("/conversations/:id/messages", chatHandler.ListMessages)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("amount", ledgerdelivery.ValidAmount)
		if err != nil {
			return nil, errors.New("cannot register amount validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
