package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/livedesk/user-service/internal/config"
	"github.com/livedesk/user-service/internal/events"
	"github.com/livedesk/user-service/internal/handler"
	"github.com/livedesk/user-service/internal/hub"
	"github.com/livedesk/user-service/internal/middleware"
	"github.com/livedesk/user-service/internal/service"
	"github.com/livedesk/user-service/internal/store"
)

func main() {
	cfg := config.Load()

	userStore := store.NewSeededUserStore()
	connHub := hub.New()

	// Optional Redis Streams event mirror
	var mirror service.EventMirror
	if cfg.RedisAddr != "" {
		client, err := events.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			log.Printf("Event mirror disabled: %v", err)
		} else {
			defer client.Close()
			mirror = events.NewPublisher(client)
			log.Printf("Event mirror enabled: %s", cfg.RedisAddr)
		}
	}

	userService := service.NewUserService(userStore, connHub, mirror)
	userHandler := handler.NewUserHandler(userService)
	wsHandler := handler.NewWSHandler(connHub, cfg.AllowedOrigins)

	// Setup router
	router := gin.Default()
	router.Use(middleware.Logging())

	router.GET("/health", handler.HealthCheck)
	router.GET("/ws", wsHandler.Serve)

	v1 := router.Group("/v1")
	v1.GET("/stats", userHandler.GetStats)

	users := v1.Group("/users")
	{
		users.GET("", userHandler.ListUsers)
		users.GET("/:userId", userHandler.GetUser)

		auth := middleware.APIKeyAuth(cfg.APIKey)
		users.POST("", auth, userHandler.CreateUser)
		users.PUT("/:userId", auth, userHandler.UpdateUser)
		users.DELETE("/:userId", auth, userHandler.DeleteUser)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("User service starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	connHub.CloseAll()
	log.Println("Shutdown complete")
}
