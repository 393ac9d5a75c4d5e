package influx

import (
	"context"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"medbox-sync/internal/models"
)

const SensorMeasurement = "vital_signs"

type pointWriter interface {
	WritePoint(point *write.Point)
}

// SensorWriter mirrors persisted sensor readings into InfluxDB. The write API
// batches in the background; errors surface on the connection's error drain.
type SensorWriter struct {
	writeAPI pointWriter
	logger   zerolog.Logger
}

func NewSensorWriter(writeAPI pointWriter, logger zerolog.Logger) *SensorWriter {
	return &SensorWriter{
		writeAPI: writeAPI,
		logger:   logger,
	}
}

func (w *SensorWriter) WriteSensorReading(ctx context.Context, reading *models.SensorReading) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	point := influxdb2.NewPoint(
		SensorMeasurement,
		reading.ToInfluxTags(),
		reading.ToInfluxFields(),
		reading.MeasuredAt(),
	)

	w.writeAPI.WritePoint(point)

	w.logger.Debug().
		Str("device_id", reading.DeviceID).
		Float64("heart_rate", reading.HeartRate).
		Float64("spo2", reading.SpO2).
		Msg("Added sensor reading to InfluxDB")

	return nil
}
