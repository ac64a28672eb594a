package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/wishwell/giftsync/docs"
	v1 "github.com/wishwell/giftsync/internal/api/handler/v1"
	"github.com/wishwell/giftsync/internal/api/middleware"
	"github.com/wishwell/giftsync/internal/config"
	"github.com/wishwell/giftsync/internal/repository"
	"github.com/wishwell/giftsync/internal/repository/dao"
	"github.com/wishwell/giftsync/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	contributorHandler := s.initContributorHandler(db)
	giftTrackingHandler := s.initGiftTrackingHandler(db)
	s.MountHandlers(authHandler, userHandler, contributorHandler, giftTrackingHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initContributorHandler(db *gorm.DB) *v1.ContributorHandler {
	contributionDAO := dao.NewContributionDAO(db)
	repo := repository.NewContributionRepository(contributionDAO)
	svc := service.NewContributionService(repo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewContributorHandler(svc, uSvc)

	return handler
}

func (s *Server) initGiftTrackingHandler(db *gorm.DB) *v1.GiftTrackingHandler {
	trackingDAO := dao.NewTrackingDAO(db)
	repo := repository.NewTrackingRepository(trackingDAO, dao.NewUserDAO(db))
	svc := service.NewTrackingService(repo)
	cSvc := service.NewContributionService(repository.NewContributionRepository(dao.NewContributionDAO(db)))
	handler := v1.NewGiftTrackingHandler(svc, cSvc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, userHandler *v1.UserHandler, contributorHandler *v1.ContributorHandler, giftTrackingHandler *v1.GiftTrackingHandler) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	authed := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authed.GET("/users/yours", userHandler.HandleGetYourUsers)
		authed.GET("/users/:userID", userHandler.HandleGetUser)
		authed.POST("/users/link", userHandler.HandleLinkUser)

		authed.GET("/contributors/item/:itemID", contributorHandler.HandleGetItemContributors)

		authed.POST("/giftTracking/bulkUpdateGetting", giftTrackingHandler.HandleBulkUpdateGetting)
		authed.POST("/giftTracking/bulkUpdateGoInOn", giftTrackingHandler.HandleBulkUpdateGoInOn)
		authed.POST("/giftTracking/bulkSave", giftTrackingHandler.HandleBulkSave)
		authed.GET("/giftTracking/event/:eventID", giftTrackingHandler.HandleGetEventTracking)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "GiftSync API"
	docs.SwaggerInfo.Description = "Contribution and gift-tracking reconciliation backend."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
