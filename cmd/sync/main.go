package main

import (
	"context"
	"fmt"
	"github.com/rs/zerolog/log"
	"medbox-sync/internal/api"
	"medbox-sync/internal/broker"
	"medbox-sync/internal/config"
	"medbox-sync/internal/database/influx"
	"medbox-sync/internal/database/postgres"
	"medbox-sync/internal/database/postgres/listeners"
	"medbox-sync/internal/fanout"
	"medbox-sync/internal/kafka"
	"medbox-sync/internal/logger"
	"medbox-sync/internal/mqtt"
	"medbox-sync/internal/relay"
	"medbox-sync/internal/services"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

type Application struct {
	config config.Wrapper

	broker          *broker.BrokerImpl
	postgresDB      *postgres.PostgresDB
	store           *postgres.Store
	listenerManager *listeners.ListenerManager
	influxDB        *influx.InfluxDB
	eventProducer   *kafka.EventProducer

	mqttClient   *mqtt.Client
	topicManager *mqtt.TopicManagerImpl

	hub              *fanout.Hub
	relay            *relay.Relay
	commandService   *services.CommandService
	retentionService *services.RetentionService
	httpServer       *api.Server

	workers      sync.WaitGroup
	shutdownChan chan os.Signal
	ctx          context.Context
	cancelFunc   context.CancelFunc
}

func main() {
	app := &Application{}

	if err := app.initialize(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	if err := app.run(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run application")
	}
}

func (app *Application) initialize() error {
	var err error

	app.config, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.NewLogger(app.config.GetLoggerConfig())
	log.Info().
		Str("component", "main").
		Str("service", app.config.GetServiceConfig().Name).
		Str("version", app.config.GetServiceConfig().Version).
		Msg("Setting up service...")

	app.ctx, app.cancelFunc = context.WithCancel(context.Background())
	app.shutdownChan = make(chan os.Signal, 1)
	signal.Notify(app.shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.initializeBroker(); err != nil {
		return fmt.Errorf("error while starting MQTT broker: %w", err)
	}

	if err := app.initializeDatabases(); err != nil {
		return fmt.Errorf("error while initialize databases: %w", err)
	}

	if err := app.initializeMQTT(); err != nil {
		return fmt.Errorf("error while initializing MQTT: %w", err)
	}

	app.initializeRelay()

	if err := app.setupTopicHandlers(); err != nil {
		return fmt.Errorf("error while setting up topic handlers: %w", err)
	}

	if err := app.setupTableListeners(); err != nil {
		return fmt.Errorf("error while setting up table listeners: %w", err)
	}

	app.initializeServices()

	if err := app.initializeHTTP(); err != nil {
		return fmt.Errorf("error while starting HTTP server: %w", err)
	}

	log.Info().Msg("Successfully initialized application")
	return nil
}

func (app *Application) initializeBroker() error {
	if !app.config.GetBrokerConfig().Enabled {
		log.Info().Str("component", "main").Msg("Embedded MQTT broker disabled")
		return nil
	}

	var err error
	app.broker, err = broker.NewBroker(app.config.GetBrokerConfig(), logger.GetLogger("mqtt-broker"))
	if err != nil {
		return err
	}

	return app.broker.Start(app.ctx)
}

func (app *Application) initializeDatabases() error {
	var err error

	app.postgresDB, err = postgres.NewConnection(app.config.GetPostgresConfig())
	if err != nil {
		return fmt.Errorf("could not connection to PostgreSQL: %w", err)
	}
	app.store = postgres.NewStore(app.postgresDB.GetDB())

	influxConfig := app.config.GetInfluxConfig()
	if influxConfig.IsEnabled() {
		app.influxDB, err = influx.NewConnection(influxConfig, logger.GetLogger("influx"))
		if err != nil {
			return fmt.Errorf("could not connect to InfluxDB: %w", err)
		}
	}

	kafkaConfig := app.config.GetKafkaConfig()
	if kafkaConfig.IsEnabled() {
		app.eventProducer = kafka.NewEventProducer(kafkaConfig, logger.GetLogger("kafka-producer"))
	}

	log.Info().
		Str("component", "main").
		Str("host", app.config.GetPostgresConfig().Host).
		Bool("influx", app.influxDB != nil).
		Bool("kafka", app.eventProducer != nil).
		Msg("Successfully initialized databases")
	return nil
}

func (app *Application) initializeMQTT() error {
	app.topicManager = mqtt.NewTopicManager(app.config.GetMQTTConfig().BaseTopic)
	app.mqttClient = mqtt.NewClient(app.config.GetMQTTConfig(), logger.GetLogger("mqtt-client"))

	connectCtx, cancel := context.WithTimeout(app.ctx, 30*time.Second)
	defer cancel()

	if err := app.mqttClient.Connect(connectCtx); err != nil {
		return fmt.Errorf("could not connect to MQTT broker: %w", err)
	}

	log.Info().
		Str("component", "main").
		Str("namespace", app.topicManager.GetBaseTopic()).
		Msg("Successfully initialized MQTT client")
	return nil
}

func (app *Application) initializeRelay() {
	app.hub = fanout.NewHub(logger.GetLogger("fanout"))
	if app.eventProducer != nil {
		app.hub.AddSink(app.eventProducer)
	}

	opts := relay.OptionsFromConfig(app.config.GetServiceConfig())
	opts.BusConnected = app.mqttClient.IsConnected
	if app.broker != nil {
		opts.BrokerClients = app.broker.ConnectedClients
	}
	if app.influxDB != nil {
		opts.SensorSink = influx.NewSensorWriter(app.influxDB.GetWriteAPI(), logger.GetLogger("sensor-writer"))
	}

	app.relay = relay.New(app.store, app.mqttClient, app.hub, app.topicManager, opts, logger.GetLogger("relay"))
	app.hub.SetSource(app.relay)

	app.goWorker(func(ctx context.Context) {
		if err := app.relay.Run(ctx); err != nil {
			log.Error().Err(err).Msg("Relay stopped with error")
		}
	})
}

func (app *Application) setupTopicHandlers() error {
	filter := app.topicManager.GetSubscriptionTopic()
	if err := app.mqttClient.Subscribe(filter, app.relay.OnMessage); err != nil {
		return fmt.Errorf("error subscribing to %s: %w", filter, err)
	}
	return nil
}

func (app *Application) setupTableListeners() error {
	postgresConfig := app.config.GetPostgresConfig()
	if !postgresConfig.Listen {
		log.Info().Str("component", "main").Msg("Table listeners disabled")
		return nil
	}

	app.listenerManager = listeners.NewListenerManager(
		app.postgresDB.GetDB(),
		postgresConfig.GetDsn(),
		logger.GetLogger("listener-manager"),
	)

	if err := app.listenerManager.RegisterListener(
		listeners.NewMedicineTableListener(logger.GetLogger("medicine-listener"), app.relay),
	); err != nil {
		return fmt.Errorf("failed to register medicine listener: %w", err)
	}

	if err := app.listenerManager.RegisterListener(
		listeners.NewCabinetConfigTableListener(logger.GetLogger("config-listener"), app.relay),
	); err != nil {
		return fmt.Errorf("failed to register config listener: %w", err)
	}

	if err := app.listenerManager.RegisterListener(
		listeners.NewRecipientTableListener(logger.GetLogger("recipient-listener"), app.relay),
	); err != nil {
		return fmt.Errorf("failed to register recipient listener: %w", err)
	}

	if err := app.listenerManager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize listener manager: %w", err)
	}

	app.listenerManager.Start()

	log.Info().Msg("All table listeners initialized and started")
	return nil
}

func (app *Application) initializeServices() {
	svc := app.config.GetServiceConfig()

	app.commandService = services.NewCommandService(
		app.mqttClient,
		app.topicManager,
		logger.GetLogger("command-service"),
	)

	app.retentionService = services.NewRetentionService(
		app.store,
		svc.LogRetention,
		svc.SensorRetention,
		svc.RetentionSweepInterval,
		logger.GetLogger("retention-service"),
	)
	app.goWorker(app.retentionService.Run)

	log.Info().
		Str("component", "main").
		Msg("Successfully initialized services")
}

func (app *Application) initializeHTTP() error {
	app.httpServer = api.NewServer(app.config.GetHTTPConfig(), api.Dependencies{
		Relay:      app.relay,
		Store:      app.store,
		Commands:   app.commandService,
		WebSocket:  app.hub.ServeWSHandler(),
		DatabaseUp: func() bool { return app.postgresDB.Ping() == nil },
		BusUp:      app.mqttClient.IsConnected,
	}, logger.GetLogger("http"))

	return app.httpServer.Start()
}

func (app *Application) goWorker(run func(ctx context.Context)) {
	app.workers.Add(1)
	go func() {
		defer app.workers.Done()
		run(app.ctx)
	}()
}

func (app *Application) run() error {
	select {
	case sig := <-app.shutdownChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case <-app.ctx.Done():
		log.Info().Msg("context cancelled, shutting down application")
	}

	return app.shutdown()
}

func (app *Application) shutdown() error {
	if app.httpServer != nil {
		if err := app.httpServer.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("Error stopping HTTP server")
		}
	}

	if app.listenerManager != nil {
		app.listenerManager.Stop()
	}

	app.cancelFunc()
	app.workers.Wait()

	if app.hub != nil {
		app.hub.Close()
	}

	if app.mqttClient != nil {
		app.mqttClient.Disconnect()
	}

	if app.broker != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := app.broker.Stop(stopCtx); err != nil {
			log.Error().Err(err).Msg("Error stopping MQTT broker")
		}
		cancel()
	}

	if app.eventProducer != nil {
		if err := app.eventProducer.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Kafka producer")
		}
	}

	if app.influxDB != nil {
		app.influxDB.Close()
	}

	if app.postgresDB != nil {
		if err := app.postgresDB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing PostgreSQL connection")
		}
	}

	log.Info().Msg("Shutdown complete")
	return nil
}
