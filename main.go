package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-cms-backend/api"
	"github.com/rpupo63/portfolio-cms-backend/auth"
	"github.com/rpupo63/portfolio-cms-backend/config"
	"github.com/rpupo63/portfolio-cms-backend/database"
	"github.com/rpupo63/portfolio-cms-backend/models"
	"github.com/rpupo63/portfolio-cms-backend/storage"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load(config.New())
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("dbType", cfg.DBType).Msg("Error connecting to database")
	}
	currentDB := database.New(db)
	defer currentDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := currentDB.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error testing database connection")
	}

	// If generating models, run generation and exit
	if cfg.GenerateModels {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db, cfg.GenerateOutPath); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if cfg.GenerateColumnReport {
		log.Info().Msg("Generating column mismatch report...")
		mismatches, err := models.GenerateColumnMismatchReport(db, os.Stdout)
		if err != nil {
			log.Fatal().Err(err).Msg("Error generating column report")
		}
		log.Info().Int("mismatches", mismatches).Msg("Column report complete")
		return
	}

	if err := currentDB.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Error migrating database")
	}

	created, err := currentDB.AdminUserRepo().EnsureDefault(ctx, cfg.AdminUsername, func() (string, error) {
		return auth.HashPassword(cfg.AdminPassword)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error seeding admin user")
	}
	if created {
		log.Info().Str("username", cfg.AdminUsername).Msg("Created default admin user")
	}

	if cfg.SeedSampleProjects {
		seeded, err := currentDB.SeedSampleProjects(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Error seeding sample projects")
		}
		if seeded {
			log.Info().Msg("Inserted sample projects")
		}
	}

	images, err := newImageStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("imageStore", cfg.ImageStore).Msg("Error initializing image store")
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing token manager")
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Warn().Msg("JWT_SECRET is not set, using the development default")
	}

	// room for both senders so neither blocks once main stops reading
	errChannel := make(chan error, 2)

	server, err := api.NewServer(cfg, currentDB, images, tokens)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("environment", cfg.Environment).Logger()
}

func newImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	switch cfg.ImageStore {
	case config.ImageStoreS3:
		return storage.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3PublicURL, cfg.AWSRegion)
	default:
		return storage.NewDiskStore(cfg.UploadPath)
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
