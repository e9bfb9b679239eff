package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unimeet/scheduler/internal/matching"
	"github.com/unimeet/scheduler/internal/model"
	"github.com/unimeet/scheduler/internal/timegrid"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrEventNotScheduling = errors.New("event is not in scheduling status")
)

// EventStore чтение событий, нужное планировщику
type EventStore interface {
	GetByID(ctx context.Context, id int64) (*model.Event, error)
}

// AvailabilityStore чтение записей доступности преподавателей
type AvailabilityStore interface {
	GetByEventID(ctx context.Context, eventID int64) ([]*model.Availability, error)
}

// PreferenceStore чтение записей предпочтений студентов
type PreferenceStore interface {
	GetByEventID(ctx context.Context, eventID int64) ([]*model.Preference, error)
}

// MeetingStore публикация пакета встреч под новым run_id
type MeetingStore interface {
	PublishRun(ctx context.Context, eventID int64, meetings []*model.Meeting, underServed int) (*model.SchedulerRun, error)
}

// MatchingService собирает вход алгоритма из хранилища, запускает движок
// и публикует результат под новым номером запуска
type MatchingService struct {
	events   EventStore
	avails   AvailabilityStore
	prefs    PreferenceStore
	meetings MeetingStore
	logger   *zap.Logger
}

func NewMatchingService(
	events EventStore,
	avails AvailabilityStore,
	prefs PreferenceStore,
	meetings MeetingStore,
	logger *zap.Logger,
) *MatchingService {
	return &MatchingService{
		events:   events,
		avails:   avails,
		prefs:    prefs,
		meetings: meetings,
		logger:   logger,
	}
}

// PrepareInput собирает нормализованный вход алгоритма для события.
// Каталог слотов берётся из события, а при его отсутствии синтезируется
// из окна события. Чтение снимка данных, ничего не мутирует
func (s *MatchingService) PrepareInput(ctx context.Context, eventID int64) (*matching.Input, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	slots := event.Slots
	if len(slots) == 0 {
		slots, err = timegrid.GenerateSlots(event.StartTime, event.EndTime, event.SlotLen)
		if err != nil {
			return nil, fmt.Errorf("generate slot catalog: %w", err)
		}
	}

	avails, err := s.avails.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get availabilities: %w", err)
	}

	prefs, err := s.prefs.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	in := &matching.Input{
		EventID:    event.ID,
		Slots:      slots,
		MinFaculty: event.MinFaculty,
		MaxFaculty: event.MaxFaculty,
	}

	for _, av := range avails {
		in.Professors = append(in.Professors, matching.Professor{
			ID:             av.FacultyID,
			AvailableSlots: av.AvailableSlots,
		})
	}

	for _, pref := range prefs {
		in.Students = append(in.Students, matching.Student{
			ID:             pref.StudentID,
			Preferences:    pref.ProfessorIDs,
			AvailableSlots: pref.AvailableSlots,
		})
	}

	return in, nil
}

// RunScheduler выполняет полный цикл: вход, матчинг, публикация под
// новым run_id. Событие должно находиться в статусе SCHEDULING
func (s *MatchingService) RunScheduler(ctx context.Context, eventID int64) (*model.SchedulerRun, *matching.Result, error) {
	corrID := uuid.New().String()
	logger := s.logger.With(
		zap.Int64("event_id", eventID),
		zap.String("correlation_id", corrID),
	)

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	if event == nil {
		return nil, nil, ErrEventNotFound
	}
	if event.Status != model.EventStatusScheduling {
		return nil, nil, fmt.Errorf("event %d in status %s: %w", eventID, event.Status, ErrEventNotScheduling)
	}

	in, err := s.PrepareInput(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Matching input prepared",
		zap.Int("slots", len(in.Slots)),
		zap.Int("professors", len(in.Professors)),
		zap.Int("students", len(in.Students)),
	)

	result := matching.Match(*in)

	meetings := make([]*model.Meeting, 0, len(result.Meetings))
	for _, m := range result.Meetings {
		meetings = append(meetings, &model.Meeting{
			EventID:     eventID,
			ProfessorID: m.ProfessorID,
			StudentID:   m.StudentID,
			Slot:        m.Slot,
		})
	}

	run, err := s.meetings.PublishRun(ctx, eventID, meetings, len(result.UnderServed))
	if err != nil {
		return nil, nil, fmt.Errorf("publish run: %w", err)
	}

	logger.Info("Scheduler run published",
		zap.Int64("run_id", run.RunID),
		zap.Int("meetings", run.MeetingCount),
		zap.Int("under_served", run.UnderServedCount),
	)

	for _, us := range result.UnderServed {
		logger.Warn("Student under-served",
			zap.Int64("run_id", run.RunID),
			zap.Int64("student_id", us.StudentID),
			zap.Int("assigned", us.Assigned),
			zap.Int("required", us.Required),
			zap.Int64s("unmet_professors", us.UnmetProfessors),
		)
	}

	return run, &result, nil
}
