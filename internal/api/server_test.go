package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"medbox-sync/internal/config/components"
	"medbox-sync/internal/liveness"
	"medbox-sync/internal/models"
	"medbox-sync/internal/relay"
	"medbox-sync/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRelay struct {
	snapshot    relay.Snapshot
	snapshotErr error
	syncErr     error
	syncs       int
}

func (f *fakeRelay) Snapshot(ctx context.Context) (relay.Snapshot, error) {
	return f.snapshot, f.snapshotErr
}

func (f *fakeRelay) SyncMedicines(ctx context.Context) error {
	f.syncs++
	return f.syncErr
}

type fakeStore struct {
	medicines []models.Medicine
	config    *models.CabinetConfig
	err       error
}

func (f *fakeStore) ListMedicines(ctx context.Context) ([]models.Medicine, error) {
	return f.medicines, f.err
}

func (f *fakeStore) GetConfig(ctx context.Context) (*models.CabinetConfig, error) {
	if f.config == nil {
		return models.DefaultCabinetConfig(), f.err
	}
	return f.config, f.err
}

type fakeCommander struct {
	actions []string
	err     error
}

func (f *fakeCommander) SendControl(ctx context.Context, action string) error {
	if f.err != nil {
		return f.err
	}
	f.actions = append(f.actions, action)
	return nil
}

func newTestServer(deps Dependencies) *httptest.Server {
	server := NewServer(components.HTTPConfigImpl{Address: "127.0.0.1:0", ShutdownTimeout: time.Second}, deps, zerolog.Nop())
	return httptest.NewServer(server.Handler())
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestServer_Status(t *testing.T) {
	seen := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	relayStub := &fakeRelay{snapshot: relay.Snapshot{
		Status:        map[string]interface{}{"locked": true, "wifi": "ok"},
		Producers:     []liveness.ProducerStatus{{DeviceID: "ESP32MedBox001", Online: true, LastSeen: seen}},
		BusConnected:  true,
		BrokerClients: 2,
	}}
	store := &fakeStore{medicines: []models.Medicine{{Name: "Aspirin"}, {Name: "Ibuprofen"}}}

	ts := newTestServer(Dependencies{Relay: relayStub, Store: store, Commands: &fakeCommander{}})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["locked"])
	assert.Equal(t, "ok", body["wifi"])
	assert.Equal(t, float64(2), body["medicineCount"])
	assert.Equal(t, true, body["busConnected"])
	assert.Equal(t, float64(2), body["brokerClients"])
	assert.Equal(t, map[string]interface{}{
		"type":                    "config",
		"servoTimeout":            float64(10000),
		"lockRFIDOutsideReminder": false,
	}, body["config"])
	require.Len(t, body["producers"], 1)
}

func TestServer_StatusStoreFailure(t *testing.T) {
	ts := newTestServer(Dependencies{
		Relay: &fakeRelay{},
		Store: &fakeStore{err: errors.New("connection refused")},
	})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "connection refused", decodeBody(t, resp)["error"])
}

func TestServer_Control(t *testing.T) {
	commander := &fakeCommander{}
	ts := newTestServer(Dependencies{Relay: &fakeRelay{}, Store: &fakeStore{}, Commands: commander})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/control", "application/json", strings.NewReader(`{"action":"unlock"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Command sent: unlock", decodeBody(t, resp)["message"])
	assert.Equal(t, []string{"unlock"}, commander.actions)

	resp, err = http.Post(ts.URL+"/control", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Action required", decodeBody(t, resp)["error"])

	resp, err = http.Post(ts.URL+"/control", "application/json", strings.NewReader(`not json`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	assert.Len(t, commander.actions, 1)
}

func TestServer_ControlPublishFailure(t *testing.T) {
	ts := newTestServer(Dependencies{Commands: &fakeCommander{err: errors.New("not connected")}})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/control", "application/json", strings.NewReader(`{"action":"lock"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_Sync(t *testing.T) {
	relayStub := &fakeRelay{}
	ts := newTestServer(Dependencies{Relay: relayStub})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/sync", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 1, relayStub.syncs)

	relayStub.syncErr = relay.ErrStopped
	resp, err = http.Post(ts.URL+"/sync", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(Dependencies{
		DatabaseUp: func() bool { return true },
	})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	body := decodeBody(t, resp)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, true, body["database"])
	assert.Equal(t, false, body["mqtt"])
}

func TestServer_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(Dependencies{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/control")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_StartAndShutdown(t *testing.T) {
	server := NewServer(components.HTTPConfigImpl{Address: "127.0.0.1:0", ShutdownTimeout: time.Second}, Dependencies{}, zerolog.Nop())

	require.NoError(t, server.Start())
	assert.NoError(t, server.Shutdown(context.Background()))
}

func TestServer_ControlBlankActionIsBadRequest(t *testing.T) {
	commander := &fakeCommander{}
	ts := newTestServer(Dependencies{Commands: commander})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/control", "application/json", strings.NewReader(`{"action":"   "}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Action required", decodeBody(t, resp)["error"])
	assert.Empty(t, commander.actions)

	resp, err = http.Post(ts.URL+"/control", "application/json", strings.NewReader(`{"action":" unlock "}`))
	require.NoError(t, err)
	assert.Equal(t, "Command sent: unlock", decodeBody(t, resp)["message"])
	assert.Equal(t, []string{"unlock"}, commander.actions)
}

func TestServer_ControlRejectedByCommanderIsBadRequest(t *testing.T) {
	ts := newTestServer(Dependencies{Commands: &fakeCommander{err: services.ErrEmptyAction}})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/control", "application/json", strings.NewReader(`{"action":"lock"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_WebSocketRoute(t *testing.T) {
	ws := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	ts := newTestServer(Dependencies{WebSocket: ws})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ws")
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	resp.Body.Close()
}
