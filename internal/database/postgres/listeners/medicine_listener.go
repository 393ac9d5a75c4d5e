package listeners

import (
	"context"
	"fmt"
	"github.com/rs/zerolog"
	"medbox-sync/internal/interfaces"
	"medbox-sync/internal/relay"
)

type MedicineSyncer interface {
	MedicinesChanged(change relay.MedicineChange)
}

type MedicineTableListener struct {
	*BaseTableListener
	logger zerolog.Logger
	syncer MedicineSyncer
}

func NewMedicineTableListener(logger zerolog.Logger, syncer MedicineSyncer) *MedicineTableListener {
	return &MedicineTableListener{
		BaseTableListener: NewBaseTableListener("medicines"),
		logger:            logger,
		syncer:            syncer,
	}
}

func (m *MedicineTableListener) HandleChange(ctx context.Context, event *interfaces.TableChangeEvent) error {
	m.logger.Info().
		Str("operation", string(event.Operation)).
		Str("table", event.Table).
		Time("timestamp", event.Timestamp).
		Msg("Medicine table change detected")

	switch event.Operation {
	case interfaces.InsertOperation, interfaces.UpdateOperation:
		quantity, _ := intField(event.NewData, "quantity")
		m.syncer.MedicinesChanged(relay.MedicineChange{
			MedicineID:   stringField(event.NewData, "id"),
			Quantity:     quantity,
			QuantityOnly: event.Operation == interfaces.UpdateOperation && onlyQuantityChanged(event),
		})
	case interfaces.DeleteOperation:
		m.syncer.MedicinesChanged(relay.MedicineChange{
			MedicineID: stringField(event.OldData, "id"),
		})
	default:
		return fmt.Errorf("unknown operation: %s", event.Operation)
	}

	return nil
}

func onlyQuantityChanged(event *interfaces.TableChangeEvent) bool {
	changed := event.ChangedColumns()
	if len(changed) == 0 {
		return false
	}
	for _, column := range changed {
		if column != "quantity" && column != "updated_at" {
			return false
		}
	}
	return true
}
