package relay

import (
	"context"
	"errors"
	"medbox-sync/internal/mqtt"
	"medbox-sync/internal/mqtt/messages"
	"time"
)

const maxLoggedPayload = 100

// OnMessage accepts one message from the bus. It never blocks on the store and
// never returns an error to the transport.
func (r *Relay) OnMessage(topic string, payload []byte, producerHint string) {
	receivedAt := r.opts.Now()
	body := append([]byte(nil), payload...)

	if !r.post(func() { r.dispatch(topic, body, producerHint, receivedAt) }) {
		r.logger.Warn().Str("topic", topic).Msg("Relay stopped, message dropped")
	}
}

func (r *Relay) dispatch(topic string, payload []byte, producerHint string, receivedAt time.Time) {
	kind := r.topics.Classify(topic)

	switch {
	case kind == mqtt.KindSystem:
		return
	case kind.ToDevice():
		r.logger.Debug().Str("topic", topic).Msg("Ignoring relay-bound echo")
		return
	case kind == mqtt.KindUnknown && !r.topics.InNamespace(topic):
		r.logger.Debug().Str("topic", topic).Msg("Ignoring topic outside namespace")
		return
	}

	r.tracker.Touch(r.resolveProducer(payload, producerHint), receivedAt)

	switch kind {
	case mqtt.KindLogs:
		r.handleLog(topic, payload)
	case mqtt.KindStatus:
		r.handleStatus(topic, payload)
	case mqtt.KindSensors:
		r.handleSensor(topic, payload)
	case mqtt.KindMedicineUpdate:
		r.handleMedicineUpdate(topic, payload)
	case mqtt.KindRequest:
		r.handleRequest(topic, payload, receivedAt)
	default:
		r.logger.Debug().Str("topic", topic).Msg("Ignoring unknown topic")
	}
}

func (r *Relay) resolveProducer(payload []byte, producerHint string) string {
	if id := messages.PeekDeviceID(payload); id != "" {
		return id
	}
	if producerHint != "" {
		return producerHint
	}
	return r.opts.DefaultDeviceID
}

func (r *Relay) decodeFailed(topic string, payload []byte, err error) {
	if errors.Is(err, messages.ErrEmptyMessage) {
		r.logger.Warn().Str("topic", topic).Msg("Dropping empty message")
		return
	}

	logged := string(payload)
	if len(logged) > maxLoggedPayload {
		logged = logged[:maxLoggedPayload]
	}
	r.logger.Error().Err(err).
		Str("topic", topic).
		Str("payload", logged).
		Msg("Failed to decode message")
}

func (r *Relay) handleLog(topic string, payload []byte) {
	var msg messages.DeviceLogMessage
	if err := messages.Decode(payload, &msg); err != nil {
		r.decodeFailed(topic, payload, err)
		return
	}

	log := msg.ToModel(r.opts.DefaultDeviceID)
	r.lanes[laneLogs].submit(func(ctx context.Context) {
		if err := r.store.InsertLog(ctx, &log); err != nil {
			r.logger.Error().Err(err).Str("action", log.Action).Msg("Failed to persist device log")
			return
		}
		r.post(func() { r.fanout.Broadcast(EventNewLog, log) })
	})
}

func (r *Relay) handleStatus(topic string, payload []byte) {
	var msg messages.StatusMessage
	if err := messages.Decode(payload, &msg); err != nil {
		r.decodeFailed(topic, payload, err)
		return
	}

	r.status = msg
	r.fanout.Broadcast(EventStatusUpdate, r.copyStatus())
}

func (r *Relay) handleSensor(topic string, payload []byte) {
	var msg messages.SensorMessage
	if err := messages.Decode(payload, &msg); err != nil {
		r.decodeFailed(topic, payload, err)
		return
	}

	reading := msg.ToModel(r.opts.DefaultDeviceID)
	r.lanes[laneSensors].submit(func(ctx context.Context) {
		if err := r.store.InsertSensorReading(ctx, &reading); err != nil {
			r.logger.Error().Err(err).Str("device_id", reading.DeviceID).Msg("Failed to persist sensor reading")
			return
		}
		r.post(func() { r.fanout.Broadcast(EventSensorData, reading) })

		if r.opts.SensorSink != nil {
			if err := r.opts.SensorSink.WriteSensorReading(ctx, &reading); err != nil {
				r.logger.Warn().Err(err).Msg("Failed to mirror sensor reading")
			}
		}
	})
}

func (r *Relay) handleMedicineUpdate(topic string, payload []byte) {
	var msg messages.MedicineUpdateMessage
	if err := messages.Decode(payload, &msg); err != nil {
		r.decodeFailed(topic, payload, err)
		return
	}

	change := msg.ToModel()
	r.recordSelfWrite(change)

	queued := r.lanes[laneMedicines].submit(func(ctx context.Context) {
		if err := r.store.UpdateMedicineQuantity(ctx, change.MedicineID, change.Quantity); err != nil {
			r.logger.Error().Err(err).
				Str("medicine_id", change.MedicineID).
				Int("quantity", change.Quantity).
				Msg("Failed to update medicine quantity")
			r.post(func() { r.forgetSelfWrite(change) })
			return
		}
		r.post(func() { r.fanout.Broadcast(EventMedicineQtyUpdated, change) })

		if err := r.publishMedicineList(ctx); err != nil {
			r.logger.Error().Err(err).Msg("Failed to republish medicine list")
		}
	})
	if !queued {
		r.forgetSelfWrite(change)
	}
}

func (r *Relay) handleRequest(topic string, payload []byte, receivedAt time.Time) {
	var msg messages.RequestMessage
	if err := messages.Decode(payload, &msg); err != nil {
		r.decodeFailed(topic, payload, err)
		return
	}

	if !msg.IsLoadAll() {
		r.logger.Info().Str("type", msg.Type).Msg("Ignoring unsupported request type")
		return
	}

	requestedBy := msg.DeviceID
	if requestedBy == "" {
		requestedBy = "unknown"
	}
	r.logger.Info().Str("device_id", requestedBy).Msg("Load request received")

	r.startBulkSync(receivedAt)
}
