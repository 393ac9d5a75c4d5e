package relay

import (
	"context"
	"github.com/jellydator/ttlcache/v3"
	"medbox-sync/internal/models"
	"strconv"
	"time"
)

const selfWriteTTL = 30 * time.Second

// MedicineChange describes one operator-side change to the medicines table.
type MedicineChange struct {
	MedicineID string
	Quantity   int
	// QuantityOnly is set when quantity (and the modification time) were the only columns touched.
	QuantityOnly bool
}

// MedicinesChanged republishes the medicine list and tells consumers to
// re-fetch it. Quantity writes the relay made itself are recognised and skipped.
func (r *Relay) MedicinesChanged(change MedicineChange) {
	r.post(func() {
		if change.QuantityOnly && r.consumeSelfWrite(change.MedicineID, change.Quantity) {
			r.logger.Debug().Str("medicine_id", change.MedicineID).Msg("Skipping echo of own quantity write")
			return
		}

		r.fanout.Broadcast(EventMedicinesUpdated, nil)
		r.lanes[laneMedicines].submit(func(ctx context.Context) {
			if err := r.publishMedicineList(ctx); err != nil {
				r.logger.Error().Err(err).Msg("Auto-sync of medicines failed")
			}
		})
	})
}

func (r *Relay) ConfigChanged() {
	r.post(func() {
		r.lanes[laneSettings].submit(func(ctx context.Context) {
			config, err := r.loadAndPublishConfig(ctx)
			if err != nil {
				r.logger.Error().Err(err).Msg("Auto-sync of config failed")
				return
			}
			r.post(func() { r.fanout.Broadcast(EventConfigUpdated, config) })
		})
	})
}

func (r *Relay) RecipientsChanged() {
	r.post(func() {
		r.lanes[laneSettings].submit(func(ctx context.Context) {
			if err := r.publishRecipientList(ctx); err != nil {
				r.logger.Error().Err(err).Msg("Auto-sync of recipients failed")
				return
			}
			r.post(func() { r.fanout.Broadcast(EventRecipientsUpdated, nil) })
		})
	})
}

// SyncMedicines republishes the medicine list on demand and waits for the
// publish to finish. It shares the medicines lane with quantity updates.
func (r *Relay) SyncMedicines(ctx context.Context) error {
	done := make(chan error, 1)
	queued := make(chan bool, 1)

	if err := r.enqueue(ctx, func() {
		queued <- r.lanes[laneMedicines].submit(func(ctx context.Context) {
			done <- r.publishMedicineList(ctx)
		})
	}); err != nil {
		return err
	}

	select {
	case ok := <-queued:
		if !ok {
			return ErrLaneFull
		}
	case <-r.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-r.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func newSelfWriteLedger() *ttlcache.Cache[string, int] {
	return ttlcache.New[string, int](
		ttlcache.WithTTL[string, int](selfWriteTTL),
		ttlcache.WithDisableTouchOnHit[string, int](),
	)
}

func selfWriteKey(medicineID string, quantity int) string {
	return medicineID + "/" + strconv.Itoa(quantity)
}

func (r *Relay) recordSelfWrite(change models.QuantityChanged) {
	key := selfWriteKey(change.MedicineID, change.Quantity)
	pending := 0
	if item := r.selfWrites.Get(key); item != nil {
		pending = item.Value()
	}
	r.selfWrites.Set(key, pending+1, ttlcache.DefaultTTL)
}

func (r *Relay) forgetSelfWrite(change models.QuantityChanged) {
	r.consumeSelfWrite(change.MedicineID, change.Quantity)
}

// consumeSelfWrite removes one pending write of quantity for medicineID and
// reports whether there was one.
func (r *Relay) consumeSelfWrite(medicineID string, quantity int) bool {
	key := selfWriteKey(medicineID, quantity)
	item := r.selfWrites.Get(key)
	if item == nil {
		return false
	}

	if pending := item.Value(); pending > 1 {
		r.selfWrites.Set(key, pending-1, ttlcache.DefaultTTL)
	} else {
		r.selfWrites.Delete(key)
	}
	return true
}
