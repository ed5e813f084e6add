/**
 * @description
 * This is the main entry point for the banking-service. It is responsible
 * for initializing all components of the service, including configuration,
 * the in-memory store, external API clients, message brokers, the core
 * application service, and the HTTP server. It wires everything together
 * and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/redis/go-redis/v9: Redis client for the verification rate limiter.
 * - internal/api, internal/app, internal/config, internal/notify, internal/store: Internal packages for the service.
 * - pkg/brevoclient: Client for the Brevo transactional-email API.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/euronova/banking-service/internal/api"
	"github.com/euronova/banking-service/internal/app"
	"github.com/euronova/banking-service/internal/config"
	"github.com/euronova/banking-service/internal/notify"
	"github.com/euronova/banking-service/internal/store"
	"github.com/euronova/banking-service/pkg/brevoclient"
	rmrabbit "github.com/euronova/banking-service/pkg/rabbitmq"
)

func main() {
	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"jwt secret must be configured\" env=JWT_SECRET")
	}

	log.Printf("level=info component=bootstrap msg=\"starting banking-service\" port=%s", cfg.ServerPort)

	// All state lives in process memory; the store is rebuilt on every start.
	repository := store.NewMemoryRepository()

	// Initialize the RabbitMQ producer to publish events.
	// This service only needs to publish, so we use a producer.
	var producer rmrabbit.Publisher
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"rabbitmq url missing; event publishing disabled\" env=RABBITMQ_URL")
		producer = &rmrabbit.EventProducerFallback{}
	} else {
		rabbitProducer, err := rmrabbit.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
			producer = &rmrabbit.EventProducerFallback{}
		} else {
			defer rabbitProducer.Close()
			producer = rabbitProducer
			log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
		}
	}

	// Initialize the Brevo email client. A missing API key degrades the
	// notifier to in-app notifications and broker events only.
	var mailer notify.Mailer
	if strings.TrimSpace(cfg.BrevoAPIKey) == "" {
		log.Println("level=warn component=bootstrap msg=\"brevo api key missing; email delivery disabled\" env=BREVO_API_KEY")
	} else {
		brevoClient := brevoclient.NewClient(cfg.BrevoBaseURL, cfg.BrevoAPIKey, cfg.BrevoSenderName, cfg.BrevoSenderEmail)
		checkCtx, cancelCheck := context.WithTimeout(context.Background(), 5*time.Second)
		if ok, checkErr := brevoClient.CheckAPIKey(checkCtx); checkErr != nil || !ok {
			log.Printf("level=warn component=bootstrap msg=\"brevo api key check failed; emails may not deliver\" err=%v", checkErr)
		} else {
			log.Println("level=info component=bootstrap msg=\"brevo client ready\"")
		}
		cancelCheck()
		mailer = brevoClient
	}

	notifier := notify.NewService(repository, mailer, producer)

	// Initialize the core application service with its dependencies.
	bankingService := app.NewService(repository, notifier, cfg.DefaultCurrency)

	// Optional Redis-backed rate limiting of verification attempts.
	if cfg.StepRateLimitPerMin > 0 && cfg.RedisURL != "" {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; verification rate limiting disabled\" err=%v", parseErr)
		} else {
			redisClient := redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis ping failed; verification rate limiting disabled\" err=%v", pingErr)
				redisClient.Close()
			} else {
				defer redisClient.Close()
				bankingService.SetVerificationRateLimiter(
					app.NewRedisRateLimiter(redisClient, cfg.RedisRateLimitPrefix, cfg.StepRateLimitPerMin, time.Minute),
				)
				log.Println("level=info component=bootstrap msg=\"redis connected\"")
			}
			cancelPing()
		}
	}

	// Seed the demo identities so the service is usable out of the box.
	if cfg.SeedDemoData {
		seeded, err := store.SeedDemoData(context.Background(), repository)
		if err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"demo seed failed\" err=%v", err)
		}
		log.Printf("level=info component=bootstrap msg=\"demo data seeded\" admin_id=%d client_id=%d account_id=%d",
			seeded.Admin.ID, seeded.Client.ID, seeded.ClientAccount.ID)
	}

	// Initialize the API handlers and router.
	handlers := api.NewBankingHandlers(bankingService)
	router := api.BankingRoutes(handlers, cfg.JWTSecret)

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
