package relay

import (
	"context"
	"encoding/json"
	"errors"
	"medbox-sync/internal/models"
	"medbox-sync/internal/mqtt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store unavailable")

type fakeStore struct {
	mu         sync.Mutex
	logs       []models.DeviceLog
	readings   []models.SensorReading
	quantities map[string]int
	medicines  []models.Medicine
	config     *models.CabinetConfig
	recipients []models.Recipient

	failInsertLog   bool
	failConfig      bool
	failMedicines   bool
	medicinesDelay  time.Duration
	quantityUpdates []models.QuantityChanged
}

func newFakeStore() *fakeStore {
	return &fakeStore{quantities: map[string]int{}}
}

func (s *fakeStore) InsertLog(_ context.Context, log *models.DeviceLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsertLog {
		return errStoreDown
	}
	log.ID = uint(len(s.logs) + 1)
	s.logs = append(s.logs, *log)
	return nil
}

func (s *fakeStore) InsertSensorReading(_ context.Context, reading *models.SensorReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reading.ID = uint(len(s.readings) + 1)
	s.readings = append(s.readings, *reading)
	return nil
}

func (s *fakeStore) UpdateMedicineQuantity(_ context.Context, medicineID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quantities[medicineID]; !ok {
		return errors.New("medicine not found")
	}
	s.quantities[medicineID] = quantity
	s.quantityUpdates = append(s.quantityUpdates, models.QuantityChanged{MedicineID: medicineID, Quantity: quantity})
	return nil
}

func (s *fakeStore) ListMedicines(_ context.Context) ([]models.Medicine, error) {
	s.mu.Lock()
	delay := s.medicinesDelay
	fail := s.failMedicines
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		return nil, errStoreDown
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	medicines := make([]models.Medicine, 0, len(s.medicines))
	for _, m := range s.medicines {
		m.Quantity = s.quantities[m.ID]
		medicines = append(medicines, m)
	}
	return medicines, nil
}

func (s *fakeStore) GetConfig(_ context.Context) (*models.CabinetConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failConfig {
		return nil, errStoreDown
	}
	if s.config == nil {
		return models.DefaultCabinetConfig(), nil
	}
	return s.config, nil
}

func (s *fakeStore) ListRecipients(_ context.Context) ([]models.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Recipient(nil), s.recipients...), nil
}

func (s *fakeStore) addMedicine(id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.medicines = append(s.medicines, models.Medicine{ID: id, Name: id, UID: id})
	s.quantities[id] = quantity
}

func (s *fakeStore) quantity(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quantities[id]
}

func (s *fakeStore) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs), len(s.readings)
}

type publication struct {
	topic   string
	payload string
	at      time.Time
}

type fakeBus struct {
	mu        sync.Mutex
	published []publication
}

func (b *fakeBus) PublishJSON(topic string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, publication{topic: topic, payload: string(raw), at: time.Now()})
	return nil
}

func (b *fakeBus) all() []publication {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]publication(nil), b.published...)
}

type broadcast struct {
	event string
	data  interface{}
}

type fakeFanout struct {
	mu     sync.Mutex
	events []broadcast
}

func (f *fakeFanout) Broadcast(event string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, broadcast{event: event, data: data})
}

func (f *fakeFanout) named(event string) []broadcast {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []broadcast
	for _, b := range f.events {
		if b.event == event {
			out = append(out, b)
		}
	}
	return out
}

func (f *fakeFanout) all() []broadcast {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]broadcast(nil), f.events...)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type testRelay struct {
	*Relay
	store  *fakeStore
	bus    *fakeBus
	fanout *fakeFanout
}

func defaultTestOptions() Options {
	return Options{
		DefaultDeviceID:     "ESP32MedBox001",
		StalenessWindow:     8 * time.Second,
		LivenessInterval:    time.Hour,
		BulkConfigDelay:     20 * time.Millisecond,
		BulkRecipientsDelay: 40 * time.Millisecond,
		LaneBufferSize:      64,
	}
}

func startRelay(t *testing.T, store *fakeStore, opts Options) *testRelay {
	t.Helper()

	bus := &fakeBus{}
	fanout := &fakeFanout{}
	r := New(store, bus, fanout, mqtt.NewTopicManager("smartmedbox"), opts, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return &testRelay{Relay: r, store: store, bus: bus, fanout: fanout}
}

// settle waits until the loop has drained every task queued before the call.
func (tr *testRelay) settle(t *testing.T) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	snap, err := tr.Snapshot(ctx)
	require.NoError(t, err)
	return snap
}

func (tr *testRelay) send(topic, payload string) {
	tr.OnMessage(topic, []byte(payload), "")
}
