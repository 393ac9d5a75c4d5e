package services

import (
	"context"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"medbox-sync/internal/interfaces"
	"medbox-sync/internal/models"
	"medbox-sync/internal/mqtt"
	"strings"
)

var ErrEmptyAction = errors.New("action required")

type CommandService struct {
	publisher    interfaces.IBusPublisher
	topicManager *mqtt.TopicManagerImpl
	logger       zerolog.Logger
}

func NewCommandService(publisher interfaces.IBusPublisher, topicManager *mqtt.TopicManagerImpl, logger zerolog.Logger) *CommandService {
	return &CommandService{
		publisher:    publisher,
		topicManager: topicManager,
		logger:       logger,
	}
}

// SendControl publishes a control command to the cabinet. Delivery is fire-and-forget.
func (s *CommandService) SendControl(ctx context.Context, action string) error {
	if strings.TrimSpace(action) == "" {
		return ErrEmptyAction
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	topic := s.topicManager.GetCommandsTopic()
	if err := s.publisher.PublishJSON(topic, models.NewControlCommand(action)); err != nil {
		return fmt.Errorf("failed to publish control command: %w", err)
	}

	s.logger.Info().
		Str("topic", topic).
		Str("action", action).
		Msg("Control command sent")
	return nil
}
