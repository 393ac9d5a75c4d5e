package listeners

import (
	"context"
	"github.com/rs/zerolog"
	"medbox-sync/internal/interfaces"
)

type ConfigSyncer interface {
	ConfigChanged()
}

type RecipientSyncer interface {
	RecipientsChanged()
}

type CabinetConfigTableListener struct {
	*BaseTableListener
	logger zerolog.Logger
	syncer ConfigSyncer
}

func NewCabinetConfigTableListener(logger zerolog.Logger, syncer ConfigSyncer) *CabinetConfigTableListener {
	return &CabinetConfigTableListener{
		BaseTableListener: NewBaseTableListener("cabinet_configs"),
		logger:            logger,
		syncer:            syncer,
	}
}

func (c *CabinetConfigTableListener) HandleChange(ctx context.Context, event *interfaces.TableChangeEvent) error {
	c.logger.Info().
		Str("operation", string(event.Operation)).
		Time("timestamp", event.Timestamp).
		Msg("Cabinet config change detected")

	c.syncer.ConfigChanged()
	return nil
}

type RecipientTableListener struct {
	*BaseTableListener
	logger zerolog.Logger
	syncer RecipientSyncer
}

func NewRecipientTableListener(logger zerolog.Logger, syncer RecipientSyncer) *RecipientTableListener {
	return &RecipientTableListener{
		BaseTableListener: NewBaseTableListener("recipients"),
		logger:            logger,
		syncer:            syncer,
	}
}

func (r *RecipientTableListener) HandleChange(ctx context.Context, event *interfaces.TableChangeEvent) error {
	r.logger.Info().
		Str("operation", string(event.Operation)).
		Time("timestamp", event.Timestamp).
		Msg("Recipient table change detected")

	r.syncer.RecipientsChanged()
	return nil
}
