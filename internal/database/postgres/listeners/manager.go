package listeners

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"medbox-sync/internal/interfaces"
	"time"
)

const pingInterval = 90 * time.Second

type ListenerManager struct {
	db        *gorm.DB
	listener  *pq.Listener
	logger    zerolog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	listeners map[string][]interfaces.ITableListener
	channels  map[string]bool
	done      chan struct{}
	started   bool
}

func NewListenerManager(db *gorm.DB, dsn string, logger zerolog.Logger) *ListenerManager {
	ctx, cancel := context.WithCancel(context.Background())

	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Error().Err(err).Msg("PostgreSQL listener error")
		}
		if ev == pq.ListenerEventReconnected {
			logger.Info().Msg("PostgreSQL listener reconnected")
		}
	}

	return &ListenerManager{
		db:        db,
		listener:  pq.NewListener(dsn, 10*time.Second, time.Minute, reportProblem),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		listeners: make(map[string][]interfaces.ITableListener),
		channels:  make(map[string]bool),
		done:      make(chan struct{}),
	}
}

func (lm *ListenerManager) RegisterListener(listener interfaces.ITableListener) error {
	channelName := listener.GetChannelName()

	if !lm.channels[channelName] {
		if err := lm.listener.Listen(channelName); err != nil {
			return fmt.Errorf("failed to listen on channel %s: %w", channelName, err)
		}
		lm.channels[channelName] = true
	}

	lm.addListener(listener)
	return nil
}

func (lm *ListenerManager) addListener(listener interfaces.ITableListener) {
	tableName := listener.GetTableName()
	lm.listeners[tableName] = append(lm.listeners[tableName], listener)

	lm.logger.Info().
		Str("table", tableName).
		Str("channel", listener.GetChannelName()).
		Msg("Registered table listener")
}

func (lm *ListenerManager) Initialize() error {
	if err := lm.setupTriggers(); err != nil {
		return fmt.Errorf("failed to setup triggers: %w", err)
	}

	lm.logger.Info().Msg("Listener manager initialized")
	return nil
}

func (lm *ListenerManager) setupTriggers() error {
	createFunctionSQL := fmt.Sprintf(`
	CREATE OR REPLACE FUNCTION notify_table_change() RETURNS trigger AS $$
	DECLARE
		notification json;
		old_data json := NULL;
		new_data json := NULL;
	BEGIN
		IF TG_OP = 'DELETE' THEN
			old_data = row_to_json(OLD);
		ELSIF TG_OP = 'INSERT' THEN
			new_data = row_to_json(NEW);
		ELSIF TG_OP = 'UPDATE' THEN
			old_data = row_to_json(OLD);
			new_data = row_to_json(NEW);
		END IF;

		notification = json_build_object(
			'operation', TG_OP,
			'table', TG_TABLE_NAME,
			'old_data', old_data,
			'new_data', new_data,
			'timestamp', now()
		);

		PERFORM pg_notify('%s', notification::text);

		IF TG_OP = 'DELETE' THEN
			RETURN OLD;
		ELSE
			RETURN NEW;
		END IF;
	END;
	$$ LANGUAGE plpgsql;`, ChannelName)

	if err := lm.db.Exec(createFunctionSQL).Error; err != nil {
		return fmt.Errorf("failed to create notify function: %w", err)
	}

	for tableName := range lm.listeners {
		if err := lm.createTriggerForTable(tableName); err != nil {
			return fmt.Errorf("failed to create trigger for table %s: %w", tableName, err)
		}
	}

	return nil
}

func (lm *ListenerManager) createTriggerForTable(tableName string) error {
	dropSQL := fmt.Sprintf(`DROP TRIGGER IF EXISTS %s_change_trigger ON %s`, tableName, tableName)
	if err := lm.db.Exec(dropSQL).Error; err != nil {
		return err
	}

	createSQL := fmt.Sprintf(`CREATE TRIGGER %s_change_trigger
		AFTER INSERT OR UPDATE OR DELETE ON %s
		FOR EACH ROW EXECUTE FUNCTION notify_table_change()`, tableName, tableName)
	return lm.db.Exec(createSQL).Error
}

func (lm *ListenerManager) listenForChanges() {
	defer close(lm.done)

	for {
		select {
		case notification := <-lm.listener.Notify:
			// A nil notification follows a reconnect; changes made while disconnected are lost.
			if notification != nil {
				lm.handleNotification(notification.Extra)
			}
		case <-time.After(pingInterval):
			if err := lm.listener.Ping(); err != nil {
				lm.logger.Error().Err(err).Msg("PostgreSQL listener ping failed")
			}
		case <-lm.ctx.Done():
			lm.logger.Info().Msg("Table listener manager stopping...")
			return
		}
	}
}

// handleNotification runs listeners inline so changes reach the relay in commit order.
func (lm *ListenerManager) handleNotification(payload string) {
	var event interfaces.TableChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		lm.logger.Error().Err(err).
			Str("payload", payload).
			Msg("Failed to parse notification")
		return
	}

	tableListeners, exists := lm.listeners[event.Table]
	if !exists {
		lm.logger.Debug().
			Str("table", event.Table).
			Msg("No listeners registered for table")
		return
	}

	for _, listener := range tableListeners {
		ctx, cancel := context.WithTimeout(lm.ctx, 30*time.Second)
		if err := listener.HandleChange(ctx, &event); err != nil {
			lm.logger.Error().Err(err).
				Str("table", event.Table).
				Str("listener", fmt.Sprintf("%T", listener)).
				Msg("Error handling table change")
		}
		cancel()
	}
}

func (lm *ListenerManager) Start() {
	lm.started = true
	go lm.listenForChanges()
}

func (lm *ListenerManager) Stop() {
	if lm == nil {
		return
	}

	lm.cancel()
	if lm.started {
		select {
		case <-lm.done:
		case <-time.After(5 * time.Second):
		}
	}

	if err := lm.listener.Close(); err != nil {
		lm.logger.Warn().Err(err).Msg("Failed to close PostgreSQL listener")
	}
	lm.logger.Info().Msg("Table listener manager stopped")
}

var _ interfaces.IListenerManager = (*ListenerManager)(nil)
