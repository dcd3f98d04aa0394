// Command riobot runs the Hadassa Viagens – Unidade Rio WhatsApp responder.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hadassaviagens/riobot/internal/api"
	"github.com/hadassaviagens/riobot/internal/flow"
	"github.com/hadassaviagens/riobot/internal/leads"
	"github.com/hadassaviagens/riobot/internal/messaging"
	"github.com/hadassaviagens/riobot/internal/notify"
	"github.com/hadassaviagens/riobot/internal/packages"
	"github.com/hadassaviagens/riobot/internal/twiliowhatsapp"
	"github.com/hadassaviagens/riobot/internal/util"
	"github.com/hadassaviagens/riobot/internal/whatsapp"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for RioBot state data
	DefaultStateDir = "/var/lib/riobot"
	// DefaultDBFileName is the default whatsmeow SQLite database filename
	DefaultDBFileName = "whatsmeow.db"
	// DefaultLeadsFileName is the default local lead sink filename
	DefaultLeadsFileName = "leads.json"
	// DefaultTypingDelay is the cosmetic pause paired with the typing indicator
	DefaultTypingDelay = 800 * time.Millisecond
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	if err := run(config, flags); err != nil {
		slog.Error("RioBot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("RioBot exited successfully")
}

// Config holds environment configuration
type Config struct {
	StateDir    string
	DbDriver    string
	WhatsAppDSN string
	LeadsFile   string
	LeadsDBDSN  string
	SupabaseURL string
	SupabaseKey string
	OwnerNumber string
	PacotesURL  string
	ImagePath   string
	APIAddr     string
	Backend     string
	TypingOn    bool
	TypingDelay time.Duration
}

// Flags holds command line flag values
type Flags struct {
	qrOutput    *string
	numeric     *bool
	stateDir    *string
	dbDriver    *string
	dbDSN       *string
	leadsFile   *string
	leadsDBDSN  *string
	ownerNumber *string
	pacotesURL  *string
	apiAddr     *string
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		StateDir:    os.Getenv("RIOBOT_STATE_DIR"),
		DbDriver:    os.Getenv("WHATSAPP_DB_DRIVER"),
		WhatsAppDSN: os.Getenv("WHATSAPP_DB_DSN"),
		LeadsFile:   os.Getenv("LEADS_FILE"),
		LeadsDBDSN:  os.Getenv("LEADS_DB_DSN"),
		SupabaseURL: os.Getenv("SUPABASE_URL"),
		SupabaseKey: os.Getenv("SUPABASE_KEY"),
		OwnerNumber: os.Getenv("OWNER_NUMBER"),
		PacotesURL:  os.Getenv("PACOTES_API_URL"),
		ImagePath:   os.Getenv("RIOBOT_IMAGE_PATH"),
		APIAddr:     os.Getenv("API_ADDR"),
		Backend:     os.Getenv("MESSAGING_BACKEND"),
		TypingOn:    util.ParseBoolEnv("RIOBOT_TYPING_INDICATORS", true),
		TypingDelay: util.ParseDurationEnv("RIOBOT_TYPING_DELAY", DefaultTypingDelay),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No RIOBOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.WhatsAppDSN == "" {
		config.WhatsAppDSN = os.Getenv("DATABASE_URL")
		if config.WhatsAppDSN != "" {
			slog.Debug("Using DATABASE_URL as WHATSAPP_DB_DSN")
		}
	}
	if config.WhatsAppDSN == "" {
		config.WhatsAppDSN = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.WhatsAppDSN)
	}
	if config.LeadsFile == "" {
		config.LeadsFile = filepath.Join(config.StateDir, DefaultLeadsFileName)
	}
	if config.Backend == "" {
		config.Backend = "whatsapp"
	}

	slog.Debug("environment variables loaded",
		"RIOBOT_STATE_DIR", config.StateDir,
		"WHATSAPP_DB_DSN_SET", config.WhatsAppDSN != "",
		"LEADS_FILE", config.LeadsFile,
		"LEADS_DB_DSN_SET", config.LeadsDBDSN != "",
		"SUPABASE_SET", config.SupabaseURL != "" && config.SupabaseKey != "",
		"OWNER_NUMBER_SET", config.OwnerNumber != "",
		"PACOTES_API_URL_SET", config.PacotesURL != "",
		"API_ADDR", config.APIAddr,
		"MESSAGING_BACKEND", config.Backend)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		qrOutput:    flag.String("qr-output", "", "path to write login QR code"),
		numeric:     flag.Bool("numeric-code", false, "use numeric login code instead of QR code"),
		stateDir:    flag.String("state-dir", config.StateDir, "state directory for RioBot data (overrides $RIOBOT_STATE_DIR)"),
		dbDriver:    flag.String("db-driver", config.DbDriver, "database driver for the WhatsApp session store (overrides $WHATSAPP_DB_DRIVER)"),
		dbDSN:       flag.String("db-dsn", config.WhatsAppDSN, "database DSN for the WhatsApp session store (overrides $WHATSAPP_DB_DSN or $DATABASE_URL)"),
		leadsFile:   flag.String("leads-file", config.LeadsFile, "local lead file path (overrides $LEADS_FILE)"),
		leadsDBDSN:  flag.String("leads-db-dsn", config.LeadsDBDSN, "Postgres DSN for the remote lead sink (overrides $LEADS_DB_DSN)"),
		ownerNumber: flag.String("owner-number", config.OwnerNumber, "recipient for lead notifications (overrides $OWNER_NUMBER)"),
		pacotesURL:  flag.String("pacotes-url", config.PacotesURL, "package catalog endpoint base URL (overrides $PACOTES_API_URL)"),
		apiAddr:     flag.String("api-addr", config.APIAddr, "admin API listen address (overrides $API_ADDR)"),
	}

	flag.Parse()

	// Follow an overridden state directory for defaulted file paths.
	if *flags.stateDir != config.StateDir {
		if *flags.dbDSN == filepath.Join(config.StateDir, DefaultDBFileName) {
			*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		}
		if *flags.leadsFile == filepath.Join(config.StateDir, DefaultLeadsFileName) {
			*flags.leadsFile = filepath.Join(*flags.stateDir, DefaultLeadsFileName)
		}
	}

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"leadsFile", *flags.leadsFile,
		"apiAddr", *flags.apiAddr)

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if whatsapp.DetectDSNType(*flags.dbDSN) != "postgres" {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			return fmt.Errorf("failed to create state directory %s: %w", stateDir, err)
		}
	}
	return nil
}

// run assembles the modules and drives the conversation loop until shutdown.
func run(config Config, flags Flags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, twilioSvc, err := buildMessagingService(flags, config)
	if err != nil {
		return err
	}

	leadStore, err := buildLeadStore(flags, config, service)
	if err != nil {
		return err
	}

	catalog := packages.NewClient(packages.WithBaseURL(*flags.pacotesURL))

	var engineOpts []flow.Option
	if config.ImagePath != "" {
		engineOpts = append(engineOpts, flow.WithImagePath(config.ImagePath))
	}
	if config.TypingOn {
		engineOpts = append(engineOpts, flow.WithTypingDelay(config.TypingDelay))
	}
	engine := flow.NewEngine(flow.NewInMemorySessionStore(), service, leadStore, catalog, engineOpts...)

	apiServer := api.NewServer(leadStore, api.WithAddr(*flags.apiAddr))
	if twilioSvc != nil {
		apiServer.Handle("/twilio/webhook", twilioSvc.WebhookHandler)
		if *flags.apiAddr == "" {
			slog.Warn("Twilio backend selected but no API address configured; inbound webhook unreachable")
		}
	}
	apiServer.Start()
	defer apiServer.Shutdown()

	if err := service.Start(ctx); err != nil {
		return fmt.Errorf("failed to start messaging service: %w", err)
	}
	defer service.Stop()

	go drainSinkOutcomes(ctx, leadStore)

	slog.Info("RioBot ready", "backend", config.Backend)
	engine.Run(ctx)
	return nil
}

// buildMessagingService constructs the configured messaging backend. The
// Twilio service is also returned concretely so its webhook can be mounted.
func buildMessagingService(flags Flags, config Config) (messaging.Service, *messaging.TwilioService, error) {
	if config.Backend == "twilio" {
		client, err := twiliowhatsapp.NewClient()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Twilio client: %w", err)
		}
		svc := messaging.NewTwilioService(client)
		return svc, svc, nil
	}

	var waOpts []whatsapp.Option
	if *flags.qrOutput != "" {
		waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
	}
	if *flags.numeric {
		waOpts = append(waOpts, whatsapp.WithNumericCode())
	}
	if *flags.dbDriver != "" {
		waOpts = append(waOpts, whatsapp.WithDBDriver(*flags.dbDriver))
	}
	if *flags.dbDSN != "" {
		waOpts = append(waOpts, whatsapp.WithDBDSN(*flags.dbDSN))
	}

	client, err := whatsapp.NewClient(waOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create WhatsApp client: %w", err)
	}
	return messaging.NewWhatsAppService(client), nil, nil
}

// buildLeadStore wires the configured sinks and the owner notifier.
func buildLeadStore(flags Flags, config Config, sender messaging.Service) (*leads.Store, error) {
	var storeOpts []leads.Option

	fileSink, err := leads.NewFileSink(*flags.leadsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create lead file sink: %w", err)
	}
	storeOpts = append(storeOpts, leads.WithSink(fileSink))

	if *flags.leadsDBDSN != "" {
		pgSink, err := leads.NewPostgresSink(*flags.leadsDBDSN)
		if err != nil {
			slog.Warn("Postgres lead sink unavailable, continuing without it", "error", err)
		} else {
			storeOpts = append(storeOpts, leads.WithSink(pgSink))
		}
	}

	switch {
	case config.SupabaseURL != "" && config.SupabaseKey != "":
		sbSink, err := leads.NewSupabaseSink(config.SupabaseURL, config.SupabaseKey)
		if err != nil {
			slog.Warn("Supabase lead sink unavailable, continuing without it", "error", err)
		} else {
			storeOpts = append(storeOpts, leads.WithSink(sbSink))
		}
	case config.SupabaseURL != "" || config.SupabaseKey != "":
		slog.Warn("SUPABASE_URL or SUPABASE_KEY not configured, leads will not be saved remotely")
	}

	storeOpts = append(storeOpts, leads.WithNotifier(notify.NewOwnerNotifier(sender, *flags.ownerNumber)))

	return leads.NewStore(storeOpts...), nil
}

// drainSinkOutcomes surfaces per-sink results of each capture.
func drainSinkOutcomes(ctx context.Context, leadStore *leads.Store) {
	for {
		select {
		case outcome := <-leadStore.Outcomes():
			if outcome.Err != nil {
				slog.Warn("Lead side-effect failed", "sink", outcome.Sink, "lead_id", outcome.LeadID, "error", outcome.Err)
			}
		case <-ctx.Done():
			return
		}
	}
}
