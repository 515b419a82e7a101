package main

import (
	"log"

	_ "comptabilite/api/swagger" // swagger docs
	"comptabilite/internal/config"
	"comptabilite/internal/database"
	"comptabilite/internal/handler"
	"comptabilite/internal/middleware"
	"comptabilite/internal/repository"
	"comptabilite/internal/service"
	"comptabilite/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Personnel Management API
// @version         1.0
// @description     CRUD over personnel and sections with token-based auth and role authorization.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg := config.Load()

	db, err := database.NewConnection(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	personnelRepo := repository.NewPersonnelRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	relationRepo := repository.NewPersonnelSectionRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	tokenService := service.NewTokenService(cfg.JWTSecret)
	authService := service.NewAuthService(userRepo, auditRepo, tokenService, txManager, wsHub)
	personnelService := service.NewPersonnelService(personnelRepo, relationRepo, auditRepo, txManager, wsHub)
	sectionService := service.NewSectionService(sectionRepo, relationRepo, auditRepo, txManager, wsHub)
	auditService := service.NewAuditService(auditRepo)

	authHandler := handler.NewAuthHandler(authService)
	personnelHandler := handler.NewPersonnelHandler(personnelService, sectionService)
	sectionHandler := handler.NewSectionHandler(sectionService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, tokenService)
	})

	// The guard chain is ordered: Authenticate runs first on every
	// protected route, role guards compose after it per route.
	authn := middleware.Authenticate(tokenService)

	root := router.Group("")
	authHandler.RegisterRoutes(root, authn)
	personnelHandler.RegisterRoutes(root, authn)
	sectionHandler.RegisterRoutes(root, authn)
	auditHandler.RegisterRoutes(root, authn)

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
