package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/smarthome-core/internal/analytics"
	"github.com/nerrad567/smarthome-core/internal/api"
	"github.com/nerrad567/smarthome-core/internal/audit"
	"github.com/nerrad567/smarthome-core/internal/auth"
	"github.com/nerrad567/smarthome-core/internal/automation"
	"github.com/nerrad567/smarthome-core/internal/device"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/config"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/logging"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/smarthome-core/internal/location"
	"github.com/nerrad567/smarthome-core/internal/notify"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

// runServe is the server lifecycle: config, logger, database, migrations,
// optional sinks, bootstrap admin, then the API until ctx is cancelled.
func runServe(ctx context.Context, configPath string) error {
	log := logging.Default()
	log.Info("starting smarthome core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(database.ConfigFrom(cfg.Database))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		closeDB(db, log)
	}()
	log.Info("database connected", "driver", db.Dialect())

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	var sinks []notify.Notifier
	components := map[string]api.HealthChecker{}

	mqttClient, err := connectMQTT(cfg, log)
	if err != nil {
		return err
	}
	if mqttClient != nil {
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		sinks = append(sinks, notify.NewMQTTSink(mqttClient, log))
		components["mqtt"] = mqttClient
	}

	influxClient, err := connectInflux(ctx, cfg, log)
	if err != nil {
		return err
	}
	if influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection", "stats", influxClient.Stats())
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		sinks = append(sinks, notify.NewInfluxSink(influxClient))
		components["influxdb"] = influxClient
	}

	users := auth.NewUserRepository(db)
	if _, seedErr := auth.SeedAdmin(ctx, users,
		cfg.Security.Bootstrap.AdminEmail,
		cfg.Security.Bootstrap.AdminPassword,
		log.Logger,
	); seedErr != nil {
		return fmt.Errorf("bootstrapping admin: %w", seedErr)
	}

	tokens := auth.NewTokenIssuer(cfg.Security.JWT.Secret, cfg.GetAccessTokenTTL(), cfg.Security.JWT.Issuer)
	srv, err := api.New(api.Deps{
		Config:     cfg.API,
		RateLimit:  cfg.Security.RateLimit,
		Logger:     log,
		Auth:       auth.NewAuthenticator(users, tokens, log.Logger),
		Users:      users,
		Locations:  location.NewSQLRepository(db),
		Devices:    device.NewSQLRepository(db),
		Rules:      automation.NewSQLRepository(db),
		Audit:      audit.NewSQLRepository(db),
		Analytics:  analytics.NewReader(db),
		Notifier:   notify.Combine(sinks...),
		DB:         db,
		Components: components,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, cleaning up")
		return srv.Close()
	})
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("smarthome core stopped")
	return nil
}

// connectMQTT returns nil when MQTT is disabled.
func connectMQTT(cfg *config.Config, log *logging.Logger) (*mqtt.Client, error) {
	if !cfg.MQTT.Enabled {
		log.Info("MQTT disabled")
		return nil, nil
	}

	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)
	return client, nil
}

// connectInflux returns nil when InfluxDB is disabled.
func connectInflux(ctx context.Context, cfg *config.Config, log *logging.Logger) (*influxdb.Client, error) {
	if !cfg.InfluxDB.Enabled {
		log.Info("InfluxDB disabled")
		return nil, nil
	}

	client, err := influxdb.Connect(ctx, cfg.InfluxDB,
		influxdb.WithSite(cfg.Site.ID),
		influxdb.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}
	log.Info("InfluxDB connected",
		"url", cfg.InfluxDB.URL,
		"org", cfg.InfluxDB.Org,
		"bucket", cfg.InfluxDB.Bucket,
	)
	return client, nil
}
