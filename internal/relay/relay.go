package relay

import (
	"context"
	"errors"
	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog"
	"medbox-sync/internal/config/components"
	"medbox-sync/internal/liveness"
	"medbox-sync/internal/models"
	"medbox-sync/internal/mqtt"
	"sync"
	"time"
)

const (
	EventInitialStatus      = "initial_status"
	EventStatusUpdate       = "status_update"
	EventNewLog             = "new_log"
	EventSensorData         = "sensor_data"
	EventMedicineQtyUpdated = "medicine_qty_updated"
	EventMedicinesUpdated   = "medicines_updated"
	EventConfigUpdated      = "config_updated"
	EventRecipientsUpdated  = "recipients_updated"
	EventDeviceStatus       = "device_status"
)

var (
	ErrStopped  = errors.New("relay is not running")
	ErrLaneFull = errors.New("relay store lane is full")
)

type RecordStore interface {
	InsertLog(ctx context.Context, log *models.DeviceLog) error
	InsertSensorReading(ctx context.Context, reading *models.SensorReading) error
	UpdateMedicineQuantity(ctx context.Context, medicineID string, quantity int) error
	ListMedicines(ctx context.Context) ([]models.Medicine, error)
	GetConfig(ctx context.Context) (*models.CabinetConfig, error)
	ListRecipients(ctx context.Context) ([]models.Recipient, error)
}

type Bus interface {
	PublishJSON(topic string, data interface{}) error
}

type Broadcaster interface {
	Broadcast(event string, data interface{})
}

type SensorSink interface {
	WriteSensorReading(ctx context.Context, reading *models.SensorReading) error
}

type Options struct {
	DefaultDeviceID     string
	StalenessWindow     time.Duration
	LivenessInterval    time.Duration
	BulkConfigDelay     time.Duration
	BulkRecipientsDelay time.Duration
	LaneBufferSize      int

	SensorSink    SensorSink
	BusConnected  func() bool
	BrokerClients func() int64
	Now           func() time.Time
}

func OptionsFromConfig(cfg components.ServiceConfigImpl) Options {
	return Options{
		DefaultDeviceID:     cfg.DefaultDeviceID,
		StalenessWindow:     cfg.StalenessWindow,
		LivenessInterval:    cfg.LivenessBroadcastInterval,
		BulkConfigDelay:     cfg.BulkConfigDelay,
		BulkRecipientsDelay: cfg.BulkRecipientsDelay,
		LaneBufferSize:      cfg.LaneBufferSize,
	}
}

type Snapshot struct {
	Status        map[string]interface{}    `json:"status"`
	Producers     []liveness.ProducerStatus `json:"producers"`
	BusConnected  bool                      `json:"busConnected"`
	BrokerClients int64                     `json:"brokerClients"`
}

type DeviceStatus struct {
	DeviceID      string                    `json:"deviceID"`
	Online        bool                      `json:"online"`
	Producers     []liveness.ProducerStatus `json:"producers"`
	BusConnected  bool                      `json:"busConnected"`
	BrokerClients int64                     `json:"brokerClients"`
}

// Relay turns cabinet messages into store writes and consumer broadcasts.
// Everything that touches status, liveness or the self-write ledger runs on
// the single loop goroutine started by Run.
type Relay struct {
	store  RecordStore
	bus    Bus
	fanout Broadcaster
	topics *mqtt.TopicManagerImpl
	opts   Options
	logger zerolog.Logger

	tasks   chan func()
	stopped chan struct{}
	lanes   map[string]*lane
	ctx     context.Context
	wg      sync.WaitGroup

	status     map[string]interface{}
	tracker    *liveness.Tracker
	selfWrites *ttlcache.Cache[string, int]
}

func New(store RecordStore, bus Bus, fanout Broadcaster, topics *mqtt.TopicManagerImpl, opts Options, logger zerolog.Logger) *Relay {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LaneBufferSize <= 0 {
		opts.LaneBufferSize = 128
	}
	if opts.StalenessWindow <= 0 {
		opts.StalenessWindow = 8 * time.Second
	}
	if opts.LivenessInterval <= 0 {
		opts.LivenessInterval = 2 * time.Second
	}

	r := &Relay{
		store:      store,
		bus:        bus,
		fanout:     fanout,
		topics:     topics,
		opts:       opts,
		logger:     logger,
		tasks:      make(chan func(), opts.LaneBufferSize),
		stopped:    make(chan struct{}),
		ctx:        context.Background(),
		status:     map[string]interface{}{},
		tracker:    liveness.NewTracker(opts.StalenessWindow),
		selfWrites: newSelfWriteLedger(),
	}

	r.lanes = map[string]*lane{
		laneLogs:      newLane(laneLogs, opts.LaneBufferSize, logger),
		laneSensors:   newLane(laneSensors, opts.LaneBufferSize, logger),
		laneMedicines: newLane(laneMedicines, opts.LaneBufferSize, logger),
		laneSettings:  newLane(laneSettings, opts.LaneBufferSize, logger),
	}

	return r
}

// Run drives the loop until ctx is cancelled, then waits for lanes and
// in-flight bulk-sync sequences to return.
func (r *Relay) Run(ctx context.Context) error {
	r.ctx = ctx

	for _, l := range r.lanes {
		r.wg.Add(1)
		go func(l *lane) {
			defer r.wg.Done()
			l.run(ctx)
		}(l)
	}

	go r.selfWrites.Start()
	defer r.selfWrites.Stop()

	ticker := time.NewTicker(r.opts.LivenessInterval)
	defer ticker.Stop()

	r.logger.Info().
		Dur("staleness_window", r.opts.StalenessWindow).
		Dur("liveness_interval", r.opts.LivenessInterval).
		Msg("Relay started")

	for {
		select {
		case task := <-r.tasks:
			task()
		case <-ticker.C:
			r.broadcastDeviceStatus()
		case <-ctx.Done():
			close(r.stopped)
			r.wg.Wait()
			r.logger.Info().Msg("Relay stopped")
			return nil
		}
	}
}

func (r *Relay) enqueue(ctx context.Context, task func()) error {
	select {
	case <-r.stopped:
		return ErrStopped
	default:
	}

	select {
	case r.tasks <- task:
		return nil
	case <-r.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Relay) post(task func()) bool {
	return r.enqueue(context.Background(), task) == nil
}

// Snapshot returns the current status and liveness as seen by the loop.
func (r *Relay) Snapshot(ctx context.Context) (Snapshot, error) {
	result := make(chan Snapshot, 1)
	if err := r.enqueue(ctx, func() { result <- r.snapshot() }); err != nil {
		return Snapshot{}, err
	}

	select {
	case s := <-result:
		return s, nil
	case <-r.stopped:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Attach runs join on the loop with a copy of the current status. Anything
// join enqueues is therefore ordered before every later broadcast.
func (r *Relay) Attach(join func(status map[string]interface{})) bool {
	return r.post(func() { join(r.copyStatus()) })
}

func (r *Relay) snapshot() Snapshot {
	return Snapshot{
		Status:        r.copyStatus(),
		Producers:     r.tracker.Producers(r.opts.Now()),
		BusConnected:  r.busConnected(),
		BrokerClients: r.brokerClients(),
	}
}

func (r *Relay) copyStatus() map[string]interface{} {
	status := make(map[string]interface{}, len(r.status))
	for k, v := range r.status {
		status[k] = v
	}
	return status
}

// broadcastDeviceStatus reports the cabinet heard from last; before any message
// arrives that is the configured default device, offline.
func (r *Relay) broadcastDeviceStatus() {
	now := r.opts.Now()
	device, ok := r.tracker.MostRecent(now)
	if !ok {
		device.DeviceID = r.opts.DefaultDeviceID
	}

	r.fanout.Broadcast(EventDeviceStatus, DeviceStatus{
		DeviceID:      device.DeviceID,
		Online:        device.Online,
		Producers:     r.tracker.Producers(now),
		BusConnected:  r.busConnected(),
		BrokerClients: r.brokerClients(),
	})
}

func (r *Relay) busConnected() bool {
	return r.opts.BusConnected != nil && r.opts.BusConnected()
}

func (r *Relay) brokerClients() int64 {
	if r.opts.BrokerClients == nil {
		return 0
	}
	return r.opts.BrokerClients()
}
