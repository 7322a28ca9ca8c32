package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/popcornsocial/popcorn/internal/domain/contract"
	handlerHttp "github.com/popcornsocial/popcorn/internal/handler/http"
	redisclient "github.com/popcornsocial/popcorn/internal/infrastructure/cache"
	"github.com/popcornsocial/popcorn/internal/infrastructure/config"
	database "github.com/popcornsocial/popcorn/internal/infrastructure/database"
	"github.com/popcornsocial/popcorn/internal/infrastructure/jwt"
	"github.com/popcornsocial/popcorn/internal/infrastructure/logger"
	passwordservice "github.com/popcornsocial/popcorn/internal/infrastructure/password_service"
	"github.com/popcornsocial/popcorn/internal/infrastructure/repository/mongodb"
	"github.com/popcornsocial/popcorn/internal/infrastructure/store"
	"github.com/popcornsocial/popcorn/internal/infrastructure/uuidgen"
	"github.com/popcornsocial/popcorn/internal/infrastructure/validator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const listCacheTTL = 30 * time.Second

func main() {
	appConfig, err := config.Load()
	if err != nil {
		exitf("invalid configuration: %v", err)
	}
	if appConfig.GetMongoURI() == "" {
		exitf("MONGODB_URI environment variable not set")
	}
	if appConfig.GetJWTSecret() == "" {
		exitf("JWT_SECRET environment variable not set")
	}

	appLogger, err := logger.NewZapLogger(appConfig.GetLogLevel())
	if err != nil {
		exitf("%v", err)
	}
	defer func() { _ = appLogger.Sync() }()
	log := appLogger.Named("mockapi")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Establish MongoDB connection
	mongoClient, err := database.NewMongoDBClient(ctx, appConfig.GetMongoURI())
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect()
	db := mongoClient.Database(appConfig.GetMongoDBName())

	// Register custom validators
	validator.RegisterCustomValidators()

	// Dependency Injection: Repositories
	uuidGenerator := uuidgen.NewGenerator()
	userRepo := mongodb.NewMongoUserRepository(db, uuidGenerator)
	postRepo := mongodb.NewPostRepository(db, uuidGenerator)
	collectionRepo := mongodb.NewCollectionRepository(db, uuidGenerator)
	commentRepo := mongodb.NewCommentRepository(db, uuidGenerator)
	savedRepo := mongodb.NewSavedCollectionRepository(db, uuidGenerator)
	followRepo := mongodb.NewFollowRepository(db, uuidGenerator)

	for name, ensure := range map[string]func(context.Context) error{
		"users":             userRepo.EnsureIndexes,
		"saved_collections": savedRepo.EnsureIndexes,
		"followers":         followRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatalf("Failed to create %s indexes: %v", name, err)
		}
	}

	// Optional Dependency Injection: Redis cache
	var listCache contract.IListCache = store.NopListCache{}
	if redisURL := appConfig.GetRedisURL(); redisURL != "" {
		rdb, err := redisclient.NewRedisFromURL(ctx, redisURL)
		if err != nil {
			log.Warnf("Redis unavailable, list caching disabled: %v", err)
		} else {
			defer redisclient.Close(rdb)
			listCache = store.NewListCacheStore(rdb, listCacheTTL)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	appRouter := handlerHttp.NewRouter(handlerHttp.Repositories{
		Users:       userRepo,
		Posts:       postRepo,
		Collections: collectionRepo,
		Comments:    commentRepo,
		Saved:       savedRepo,
		Follows:     followRepo,
		Counter:     mongodb.NewCounter(db),
	}, handlerHttp.RouterDeps{
		Cache:     listCache,
		Hasher:    passwordservice.NewHasher(0),
		Tokens:    jwt.NewJWTManager(appConfig.GetJWTSecret(), appConfig.GetAccessTokenExpiry()),
		Validator: validator.NewValidator(),
		Logger:    log,
		Config:    appConfig,
		Registry:  registry,
	})

	router := gin.New()
	router.Use(gin.Recovery())
	appRouter.SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + appConfig.GetPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Graceful shutdown failed: %v", err)
		}
	}()

	log.Infof("Server running on port %s", appConfig.GetPort())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// exitf reports errors that happen before the logger exists.
func exitf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
