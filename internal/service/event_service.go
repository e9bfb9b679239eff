package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/unimeet/scheduler/internal/model"
	"github.com/unimeet/scheduler/internal/timegrid"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// EventWriter запись событий, нужная сервису жизненного цикла
type EventWriter interface {
	EventStore
	Create(ctx context.Context, event *model.Event) error
	Update(ctx context.Context, event *model.Event) error
	UpdateStatus(ctx context.Context, id int64, status model.EventStatus) error
}

// EventService управляет жизненным циклом события:
// CREATED -> COLLECTING_AVAIL -> SCHEDULING -> PUBLISHED
type EventService struct {
	events EventWriter
	logger *zap.Logger
}

func NewEventService(events EventWriter, logger *zap.Logger) *EventService {
	return &EventService{events: events, logger: logger}
}

// CreateEvent создаёт событие после проверки границ и каталога слотов
func (s *EventService) CreateEvent(ctx context.Context, event *model.Event) error {
	if err := validateEvent(event); err != nil {
		return err
	}

	if event.Status == "" {
		event.Status = model.EventStatusCreated
	}

	if err := s.events.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	s.logger.Info("Event created",
		zap.Int64("event_id", event.ID),
		zap.String("name", event.Name),
		zap.Int("min_faculty", event.MinFaculty),
		zap.Int("max_faculty", event.MaxFaculty),
	)

	return nil
}

// UpdateEvent обновляет конфигурацию события
func (s *EventService) UpdateEvent(ctx context.Context, event *model.Event) error {
	if err := validateEvent(event); err != nil {
		return err
	}

	if err := s.events.Update(ctx, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	s.logger.Info("Event updated", zap.Int64("event_id", event.ID))
	return nil
}

// UpdateStatus переводит событие в новый статус, недопустимые
// переходы отклоняются
func (s *EventService) UpdateStatus(ctx context.Context, eventID int64, target model.EventStatus) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	if event == nil {
		return ErrEventNotFound
	}

	if !model.CanTransition(event.Status, target) {
		return fmt.Errorf("transition %s -> %s: %w", event.Status, target, ErrInvalidTransition)
	}

	if err := s.events.UpdateStatus(ctx, eventID, target); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	s.logger.Info("Event status changed",
		zap.Int64("event_id", eventID),
		zap.String("from", string(event.Status)),
		zap.String("to", string(target)),
	)

	return nil
}

// validateEvent проверяет границы выбора преподавателей, окно времени
// и каталог слотов
func validateEvent(event *model.Event) error {
	if event.Name == "" {
		return fmt.Errorf("event name is required")
	}
	if event.MinFaculty < 1 {
		return fmt.Errorf("min faculty must be at least 1")
	}
	if event.MaxFaculty < event.MinFaculty {
		return fmt.Errorf("max faculty must be greater than or equal to min faculty")
	}

	// Окно должно само генерировать корректный каталог, даже если
	// явный каталог задан: это страховка от инвертированного окна
	if _, err := timegrid.GenerateSlots(event.StartTime, event.EndTime, event.SlotLen); err != nil {
		return fmt.Errorf("validate event window: %w", err)
	}

	for _, label := range event.Slots {
		if !timegrid.ValidSlotLabel(label) {
			return fmt.Errorf("invalid slot label %q", label)
		}
	}

	return nil
}
