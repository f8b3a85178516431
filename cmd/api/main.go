package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/surendrasinghc80/chaicode-course-rag/pkg/validator"

	"github.com/surendrasinghc80/chaicode-course-rag/internal/adapter/handler"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/adapter/repository"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/infrastructure/cache"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/infrastructure/database"
	httpmw "github.com/surendrasinghc80/chaicode-course-rag/internal/infrastructure/http/middleware"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/infrastructure/storage"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/infrastructure/vector"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/usecase/auth"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/usecase/conversation"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/usecase/course"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/usecase/rag"
	pkgai "github.com/surendrasinghc80/chaicode-course-rag/pkg/ai"
	"github.com/surendrasinghc80/chaicode-course-rag/pkg/config"
	"github.com/surendrasinghc80/chaicode-course-rag/pkg/jwt"
)

// embeddingDim matches the text-embedding-3-small output size
const embeddingDim = 1536

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	logger, err := zap.NewProduction()
	if cfg.Server.Environment != "production" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Applying schema migrations (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping schema migrations; use sql-migrate in CI/CD/production")
	}

	// Initialize question history: Redis when reachable, in-memory otherwise
	log.Println("📦 Connecting to Redis...")
	var questionHistory rag.QuestionHistory
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Printf("⚠️  Redis unavailable, using in-memory question history: %v", err)
		questionHistory = cache.NewMemoryQuestionHistory()
	} else {
		defer redisClient.Close()
		questionHistory = cache.NewRedisQuestionHistory(redisClient)
	}

	// Initialize caption archive storage
	var captionArchive course.CaptionArchive
	if cfg.Storage.Enabled {
		log.Println("🫙  Connecting to object storage...")
		minioClient, err := storage.NewMinIOClient(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
		captionArchive = minioClient
	} else {
		log.Println("🫙  Object storage disabled, caption archival off")
	}

	// Initialize vector store
	log.Println("🧮 Connecting to vector store...")
	qdrantStore := vector.NewQdrantStore(&cfg.Qdrant, logger)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		if err := qdrantStore.EnsureCollectionRetry(ctx, embeddingDim); err != nil {
			log.Fatalf("Failed to prepare vector collection: %v", err)
		}
		cancel()
	}

	// Initialize AI client
	log.Println("🤖 Initializing AI client...")
	openaiClient := pkgai.NewOpenAIClient(&cfg.OpenAI)

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	userCourseRepo := repository.NewUserCourseRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	chatRepo := repository.NewChatRepository(db)
	archiveRepo := repository.NewArchiveRepository(db)

	// Initialize JWT manager
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize services
	log.Println("✨ Initializing services...")
	ragService := rag.NewService(openaiClient, qdrantStore, openaiClient, questionHistory, cfg.RAG, logger)
	authService := auth.NewService(userRepo, jwtManager, logger)
	courseService := course.NewService(courseRepo, userRepo, userCourseRepo, ragService, qdrantStore, captionArchive, logger)
	conversationService := conversation.NewService(conversationRepo, chatRepo, archiveRepo, userRepo, courseService, ragService, logger)

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	validator := pkgvalidator.New()
	authMiddleware := httpmw.NewAuthMiddleware(jwtManager, userRepo)
	authHandler := handler.NewAuthHandler(authService, validator, logger, cfg.Server.Environment)
	courseHandler := handler.NewCourseHandler(courseService, validator, logger, cfg.Server.Environment)
	conversationHandler := handler.NewConversationHandler(conversationService, validator, logger, cfg.Server.Environment)
	adminHandler := handler.NewAdminHandler(courseService, userRepo, logger, cfg.Server.Environment)

	// Setup router
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, authMiddleware, authHandler, courseHandler, conversationHandler, adminHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server exited")
}
