package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/handlers"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/logger"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/measure"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/provider"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/repository"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/server"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/service"
)

const defaultMonitorTick = 5 * time.Minute

func main() {
	// load config.yml first so the log level comes from it
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log_level"))

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// intensity source
	prov, err := provider.New(providerConfig())
	if err != nil {
		log.Fatalw("failed to build intensity provider", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(db)
	meas := measure.NewMeasurer(
		measure.NewRAPLSession(),
		viper.GetFloat64("measure.assumed_kw"),
		viper.GetBool("measure.use_sensor"),
	)
	services := service.NewService(repos, prov, meas, service.AuthConfig{
		SigningKey: viper.GetString("auth.signing_key"),
		TokenTTL:   time.Duration(viper.GetInt("auth.token_ttl_minutes")) * time.Minute,
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// keep the latest-reading snapshot fresh
	go services.Monitor.Run(ctx, monitorTick())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	viper.SetDefault("log_level", logger.InfoLevel)
	viper.SetDefault("measure.use_sensor", true)
	return viper.ReadInConfig()
}

// providerConfig assembles the provider configuration from viper keys.
func providerConfig() provider.Config {
	mode := viper.GetString("ci.mode")
	if mode == "" {
		mode = provider.ModeLive
	}
	return provider.Config{
		Mode:             mode,
		Endpoint:         viper.GetString("ci.endpoint"),
		Region:           viper.GetString("ci.region"),
		Timeout:          time.Duration(viper.GetInt("ci.timeout_seconds")) * time.Second,
		CSVPath:          viper.GetString("ci.csv_path"),
		DefaultIntensity: viper.GetFloat64("ci.default_gco2_per_kwh"),
	}
}

func monitorTick() time.Duration {
	if s := viper.GetInt("monitor.interval_seconds"); s > 0 {
		return time.Duration(s) * time.Second
	}
	return defaultMonitorTick
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "greenai.db")
		dbPath = "greenai.db"
	}
	return repository.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
