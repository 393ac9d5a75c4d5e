package influx

import (
	"context"
	"fmt"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/rs/zerolog"
	"medbox-sync/internal/config/components"
	"time"
)

type InfluxDB struct {
	client     influxdb2.Client
	writeAPI   api.WriteAPI
	config     components.InfluxConfigImpl
	logger     zerolog.Logger
	ctx        context.Context
	cancelFunc context.CancelFunc
}

func NewConnection(cfg components.InfluxConfigImpl, logger zerolog.Logger) (*InfluxDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	options := influxdb2.DefaultOptions().
		SetBatchSize(uint(cfg.BatchSize)).
		SetFlushInterval(uint(cfg.FlushInterval) * 1000)
	client := influxdb2.NewClientWithOptions(cfg.GetUrl(), cfg.Token, options)

	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}

	if health.Status != "pass" {
		client.Close()
		return nil, fmt.Errorf("InfluxDB health check failed: %s", health.Status)
	}

	runCtx, cancelFunc := context.WithCancel(context.Background())

	influxDB := &InfluxDB{
		client:     client,
		writeAPI:   client.WriteAPI(cfg.Organization, cfg.Bucket),
		config:     cfg,
		logger:     logger,
		ctx:        runCtx,
		cancelFunc: cancelFunc,
	}

	go influxDB.handleWriteErrors()

	logger.Info().
		Str("url", cfg.GetUrl()).
		Str("organization", cfg.Organization).
		Str("bucket", cfg.Bucket).
		Msg("Successfully connected to InfluxDB")

	return influxDB, nil
}

func (i *InfluxDB) handleWriteErrors() {
	errorsCh := i.writeAPI.Errors()
	for {
		select {
		case err := <-errorsCh:
			i.logger.Error().Err(err).Msg("Write error occurred")
		case <-i.ctx.Done():
			return
		}
	}
}

func (i *InfluxDB) GetWriteAPI() api.WriteAPI {
	return i.writeAPI
}

func (i *InfluxDB) Close() {
	i.writeAPI.Flush()
	i.cancelFunc()
	i.client.Close()

	i.logger.Info().Msg("InfluxDB connection closed")
}
