package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jevonc/portfolio-backend/api"
	"github.com/jevonc/portfolio-backend/auth"
	"github.com/jevonc/portfolio-backend/config"
	"github.com/jevonc/portfolio-backend/database"
	"github.com/jevonc/portfolio-backend/editor"
	"github.com/jevonc/portfolio-backend/models"
	"github.com/jevonc/portfolio-backend/notify"
	"github.com/jevonc/portfolio-backend/relay"
	"github.com/jevonc/portfolio-backend/resume"
	"github.com/jevonc/portfolio-backend/store"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	ctx := context.Background()
	c := config.New()

	// Parameters from SSM fill in whatever the environment leaves unset
	if parameterPath := config.GetString(c, "SSM_PARAMETER_PATH", ""); parameterPath != "" {
		client, err := config.NewSSMClient(ctx, config.GetString(c, "AWS_REGION", ""))
		if err != nil {
			fmt.Printf("Error creating SSM client: %v\n", err)
			os.Exit(1)
		}
		values, err := config.LoadSSM(ctx, client, parameterPath)
		if err != nil {
			fmt.Printf("Error loading SSM parameters: %v\n", err)
			os.Exit(1)
		}
		c = config.Merge(c, values)
		fmt.Printf("Loaded %d parameters from SSM\n", len(values))
	}

	settings := config.Load(c)
	configureLogging(settings.LogLevel)

	fmt.Printf("DB_TYPE: %s\n", settings.DB.Type)
	db, err := database.Open(settings.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	currentDB := database.New(db)

	// Test database connection
	if err := currentDB.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error testing database connection")
	}

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		fmt.Println("Generating models and query helpers...")
		if err := models.GenerateModels(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		fmt.Println("Generating column mismatch report...")
		if mismatches := models.GenerateColumnMismatchReport(db); mismatches > 0 {
			os.Exit(2)
		}
		return
	}

	if config.GetBool(c, "ROLLBACK_LAST_MIGRATION", false) {
		if err := database.RollbackLast(db); err != nil {
			log.Fatal().Err(err).Msg("Error rolling back migration")
		}
		fmt.Println("Rolled back last migration")
		return
	}

	if !config.GetBool(c, "SKIP_MIGRATIONS", false) {
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("Error migrating database")
		}
	}

	// Auth
	var authOpts []auth.SupabaseOption
	if settings.SupabaseJWTSecret != "" {
		authOpts = append(authOpts, auth.WithTokenVerifier(auth.NewTokenVerifier(settings.SupabaseJWTSecret)))
	}
	if settings.SupabaseURL == "" {
		log.Warn().Msg("SUPABASE_URL is not set; every dashboard request will be redirected to /login")
	}
	provider := auth.NewSupabase(settings.SupabaseURL, settings.SupabaseAnonKey, authOpts...)
	guard := auth.NewGuard(provider, settings.AdminEmail, log.Logger)

	// Records
	recordStore := store.New(currentDB, log.Logger)
	recordStore.FetchEverything(ctx)
	sessions := editor.NewSessions(currentDB, editor.Callbacks{OnSuccess: recordStore.Refresh}, log.Logger)

	// Contact relay
	contactRelay := relay.New(settings.ContactRelayURL, log.Logger,
		relay.WithNotifiers(notify.FromSettings(settings.Notify, log.Logger)...))
	if err := contactRelay.CheckEndpoint(); err != nil {
		log.Warn().Err(err).Msg("Contact form will report a configuration error until the relay URL is set")
	}

	locator, err := newResumeLocator(ctx, settings)
	if err != nil {
		log.Fatal().Err(err).Msg("Error configuring resume storage")
	}

	errChannel := make(chan error, 2)

	server, err := api.NewServer(api.Dependencies{
		Database: currentDB,
		Store:    recordStore,
		Sessions: sessions,
		Auth:     provider,
		Guard:    guard,
		Relay:    contactRelay,
		Resume:   locator,
	}, settings)
	if err != nil {
		fmt.Printf("Error initializing server: %v\n", err)
		os.Exit(1)
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	fmt.Printf("Closing server: %v\n", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
	if err := currentDB.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database")
	}
}

func newResumeLocator(ctx context.Context, settings config.Settings) (resume.Locator, error) {
	if settings.ResumeS3Bucket == "" {
		return resume.NewLocal(settings.ResumePath, "/resume.pdf"), nil
	}
	cfg, err := config.LoadAWSConfig(ctx, settings.AWSRegion)
	if err != nil {
		return nil, err
	}
	return resume.NewS3(s3.NewFromConfig(cfg), settings.ResumeS3Bucket, settings.ResumeS3Key, 15*time.Minute), nil
}

func configureLogging(level string) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
	zerolog.TimeFieldFormat = time.RFC3339
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
