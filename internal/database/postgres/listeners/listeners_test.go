package listeners

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"medbox-sync/internal/interfaces"
	"medbox-sync/internal/relay"
)

type fakeSyncer struct {
	mu         sync.Mutex
	medicines  []relay.MedicineChange
	configs    int
	recipients int
}

func (f *fakeSyncer) MedicinesChanged(change relay.MedicineChange) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.medicines = append(f.medicines, change)
}

func (f *fakeSyncer) ConfigChanged() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs++
}

func (f *fakeSyncer) RecipientsChanged() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recipients++
}

func newTestManager(db *gorm.DB) *ListenerManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &ListenerManager{
		db:        db,
		logger:    zerolog.Nop(),
		ctx:       ctx,
		cancel:    cancel,
		listeners: make(map[string][]interfaces.ITableListener),
		channels:  make(map[string]bool),
		done:      make(chan struct{}),
	}
}

func TestListenerManager_RoutesNotificationsByTable(t *testing.T) {
	syncer := &fakeSyncer{}
	lm := newTestManager(nil)
	lm.addListener(NewMedicineTableListener(zerolog.Nop(), syncer))
	lm.addListener(NewCabinetConfigTableListener(zerolog.Nop(), syncer))
	lm.addListener(NewRecipientTableListener(zerolog.Nop(), syncer))

	lm.handleNotification(`{"operation":"UPDATE","table":"medicines",
		"old_data":{"id":"m-1","name":"Aspirin","quantity":5,"updated_at":"2024-01-01T00:00:00Z"},
		"new_data":{"id":"m-1","name":"Aspirin","quantity":3,"updated_at":"2024-01-01T00:01:00Z"},
		"timestamp":"2024-01-01T00:01:00Z"}`)
	lm.handleNotification(`{"operation":"UPDATE","table":"medicines",
		"old_data":{"id":"m-1","name":"Aspirin","quantity":3},
		"new_data":{"id":"m-1","name":"Aspirin Forte","quantity":3},
		"timestamp":"2024-01-01T00:02:00Z"}`)
	lm.handleNotification(`{"operation":"DELETE","table":"medicines","old_data":{"id":"m-2"},"timestamp":"2024-01-01T00:03:00Z"}`)
	lm.handleNotification(`{"operation":"INSERT","table":"cabinet_configs","new_data":{"id":1},"timestamp":"2024-01-01T00:04:00Z"}`)
	lm.handleNotification(`{"operation":"INSERT","table":"recipients","new_data":{"id":1},"timestamp":"2024-01-01T00:05:00Z"}`)
	lm.handleNotification(`{"operation":"INSERT","table":"device_logs","new_data":{"id":1},"timestamp":"2024-01-01T00:06:00Z"}`)
	lm.handleNotification(`not json`)

	require.Len(t, syncer.medicines, 3)
	assert.Equal(t, relay.MedicineChange{MedicineID: "m-1", Quantity: 3, QuantityOnly: true}, syncer.medicines[0])
	assert.Equal(t, relay.MedicineChange{MedicineID: "m-1", Quantity: 3, QuantityOnly: false}, syncer.medicines[1])
	assert.Equal(t, relay.MedicineChange{MedicineID: "m-2"}, syncer.medicines[2])
	assert.Equal(t, 1, syncer.configs)
	assert.Equal(t, 1, syncer.recipients)
}

func TestMedicineTableListener_InsertIsNotQuantityOnly(t *testing.T) {
	syncer := &fakeSyncer{}
	listener := NewMedicineTableListener(zerolog.Nop(), syncer)

	err := listener.HandleChange(context.Background(), &interfaces.TableChangeEvent{
		Operation: interfaces.InsertOperation,
		Table:     "medicines",
		NewData:   map[string]interface{}{"id": "m-9", "quantity": float64(12)},
	})
	require.NoError(t, err)
	assert.Equal(t, relay.MedicineChange{MedicineID: "m-9", Quantity: 12}, syncer.medicines[0])

	err = listener.HandleChange(context.Background(), &interfaces.TableChangeEvent{Operation: "TRUNCATE"})
	assert.Error(t, err)
}

func TestListenerManager_InitializeInstallsTriggers(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	lm := newTestManager(db)
	lm.addListener(NewRecipientTableListener(zerolog.Nop(), &fakeSyncer{}))

	mock.ExpectExec(regexp.QuoteMeta(`CREATE OR REPLACE FUNCTION notify_table_change()`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DROP TRIGGER IF EXISTS recipients_change_trigger ON recipients`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TRIGGER recipients_change_trigger`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, lm.Initialize())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableChangeEvent_ChangedColumns(t *testing.T) {
	event := &interfaces.TableChangeEvent{
		OldData: map[string]interface{}{"quantity": float64(1), "reminder_times": []interface{}{"08:00"}},
		NewData: map[string]interface{}{"quantity": float64(1), "reminder_times": []interface{}{"09:00"}},
	}
	assert.Equal(t, []string{"reminder_times"}, event.ChangedColumns())
	assert.False(t, onlyQuantityChanged(event))
}
