package main // Entry point package

import (
	"context" // context bounds the startup bootstrap work
	"log"     // Logging library
	"time"

	"github.com/joho/godotenv"    // loads a local .env file in development
	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/reading-practice/internal/config"   // Internal config loader
	"github.com/iliyamo/reading-practice/internal/database" // MySQL connection pool
	"github.com/iliyamo/reading-practice/internal/handler"
	"github.com/iliyamo/reading-practice/internal/mailer"
	"github.com/iliyamo/reading-practice/internal/middleware"
	"github.com/iliyamo/reading-practice/internal/queue"
	"github.com/iliyamo/reading-practice/internal/repository"
	"github.com/iliyamo/reading-practice/internal/router" // Internal router setup
	"github.com/iliyamo/reading-practice/internal/service"
)

func main() {
	// A missing .env is fine in production where real env vars are set.
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}

	cfg := config.Load() // Load environment config; fatal on missing values

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	accounts := repository.NewAccountRepo(db)
	users := repository.NewUserRepo(db)
	exercises := repository.NewExerciseRepo(db)
	categories := repository.NewCategoryRepo(db)
	completions := repository.NewCompletionRepo(db)

	// The superadmin must exist before the server accepts requests.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := service.EnsureSuperadmin(ctx, cfg, accounts); err != nil {
		cancel()
		log.Fatalf("superadmin bootstrap: %v", err)
	}
	cancel()

	// Mail goes through the broker; the consumer drains it with whatever
	// sender the environment provides (SMTP or log-only).
	sender := mailer.NewSenderFromEnv()
	mail := service.NewQueueMailDispatcher(sender)
	go queue.StartMailConsumer(sender)

	rdb := config.NewRedisClient()
	limiter := middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())

	authH := handler.NewAuthHandler(cfg, accounts, mail)
	accH := handler.NewAccountHandler(cfg, accounts, mail)
	userH := handler.NewUserHandler(users)
	exH := handler.NewExerciseHandler(exercises, users, completions)
	catH := handler.NewCategoryHandler(categories)

	router.RegisterRoutes(e) // Register application routes
	router.RegisterAuth(e, authH, accH, cfg.JWTSecret, limiter)
	router.RegisterAccounts(e, accH, userH, cfg.JWTSecret)
	router.RegisterExercises(e, exH, catH, cfg.JWTSecret, cache)
	router.RegisterUsers(e, userH, cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
