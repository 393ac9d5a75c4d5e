package relay

import (
	"context"
	"fmt"
	"medbox-sync/internal/models"
	"time"
)

type Step struct {
	Name string
	At   time.Duration
	Run  func(ctx context.Context) error
}

// Sequence runs its steps in declaration order. A step starts no earlier than
// start+At and never before the previous step has returned, so delays can
// stretch but the order cannot invert. A failing step does not stop the rest.
// now reads the clock start was taken from; nil means time.Now.
type Sequence []Step

func (s Sequence) Run(ctx context.Context, start time.Time, now func() time.Time, onError func(step Step, err error)) {
	if now == nil {
		now = time.Now
	}

	for _, step := range s {
		if wait := start.Add(step.At).Sub(now()); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return
			}
		}

		if ctx.Err() != nil {
			return
		}

		if err := step.Run(ctx); err != nil && onError != nil {
			onError(step, err)
		}
	}
}

func (r *Relay) bulkSyncSequence() Sequence {
	return Sequence{
		{Name: "medicines", At: 0, Run: r.publishMedicineList},
		{Name: "config", At: r.opts.BulkConfigDelay, Run: r.publishConfig},
		{Name: "recipients", At: r.opts.BulkRecipientsDelay, Run: r.publishRecipientList},
	}
}

// startBulkSync must run on the loop; the sequence itself runs on its own goroutine.
func (r *Relay) startBulkSync(start time.Time) {
	ctx := r.ctx
	seq := r.bulkSyncSequence()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		seq.Run(ctx, start, r.opts.Now, func(step Step, err error) {
			r.logger.Error().Err(err).Str("step", step.Name).Msg("Bulk sync step skipped")
		})
		r.logger.Debug().Dur("elapsed", r.opts.Now().Sub(start)).Msg("Bulk sync finished")
	}()
}

func (r *Relay) publishMedicineList(ctx context.Context) error {
	medicines, err := r.store.ListMedicines(ctx)
	if err != nil {
		return fmt.Errorf("failed to load medicines: %w", err)
	}

	if err := r.bus.PublishJSON(r.topics.GetDataTopic(), models.NewLoadMedicinesMessage(medicines)); err != nil {
		return fmt.Errorf("failed to publish medicines: %w", err)
	}

	r.logger.Info().Int("count", len(medicines)).Msg("Published medicines to cabinet")
	return nil
}

func (r *Relay) publishConfig(ctx context.Context) error {
	_, err := r.loadAndPublishConfig(ctx)
	return err
}

func (r *Relay) loadAndPublishConfig(ctx context.Context) (*models.CabinetConfig, error) {
	config, err := r.store.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := r.bus.PublishJSON(r.topics.GetConfigTopic(), models.NewConfigMessage(config)); err != nil {
		return nil, fmt.Errorf("failed to publish config: %w", err)
	}

	r.logger.Info().Int("servo_timeout", config.ServoTimeout).Msg("Published config to cabinet")
	return config, nil
}

func (r *Relay) publishRecipientList(ctx context.Context) error {
	recipients, err := r.store.ListRecipients(ctx)
	if err != nil {
		return fmt.Errorf("failed to load recipients: %w", err)
	}

	if err := r.bus.PublishJSON(r.topics.GetDataTopic(), models.NewLoadRecipientsMessage(recipients)); err != nil {
		return fmt.Errorf("failed to publish recipients: %w", err)
	}

	r.logger.Info().Int("count", len(recipients)).Msg("Published recipients to cabinet")
	return nil
}
