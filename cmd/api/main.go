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

	"github.com/commerce-customer-api/internal/config"
	"github.com/commerce-customer-api/internal/infrastructure/dynamo"
	"github.com/commerce-customer-api/internal/infrastructure/identity"
	jwtinfra "github.com/commerce-customer-api/internal/infrastructure/jwt"
	s3infra "github.com/commerce-customer-api/internal/infrastructure/s3"
	"github.com/commerce-customer-api/internal/infrastructure/smtp"
	"github.com/commerce-customer-api/internal/infrastructure/sns"
	transporthttp "github.com/commerce-customer-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 avatar store.
	s3Client := s3infra.NewClient(cfg)
	avatarStore := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender and event publisher (optional — graceful fallback).
	var smsSender sns.SMSSender
	var publisher sns.EventPublisher
	if client, err := sns.NewClient(cfg); err == nil {
		smsSender = sns.NewSender(client)
		publisher = sns.NewPublisher(client, cfg.CustomerEventTopic)
	} else {
		log.Printf("WARN: SNS not available: %v", err)
	}

	deps := &transporthttp.Deps{
		ProfileRepo:      dynamo.NewProfileRepo(dynamoClient, cfg.DynamoTables.Profiles),
		VerificationRepo: dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.Verifications),
		AddressRepo:      dynamo.NewAddressRepo(dynamoClient, cfg.DynamoTables.Addresses),
		Identity:         identity.NewClient(cfg),
		AvatarStore:      avatarStore,
		Mailer:           mailer,
		SMSSender:        smsSender,
		Publisher:        publisher,
		JWTProvider:      jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
