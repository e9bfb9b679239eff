package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/unimeet/scheduler/internal/model"
	"github.com/unimeet/scheduler/internal/timegrid"
)

var ErrSubmissionClosed = errors.New("event is not collecting inputs")

// UserStore чтение пользователей для проверки ролей
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// AvailabilityWriter запись доступности преподавателя
type AvailabilityWriter interface {
	Upsert(ctx context.Context, av *model.Availability) error
}

// PreferenceWriter запись предпочтений студента
type PreferenceWriter interface {
	Upsert(ctx context.Context, pref *model.Preference) error
}

// SubmissionService принимает доступность и предпочтения участников
// на фазе сбора входных данных
type SubmissionService struct {
	events EventStore
	users  UserStore
	avails AvailabilityWriter
	prefs  PreferenceWriter
	logger *zap.Logger
}

func NewSubmissionService(
	events EventStore,
	users UserStore,
	avails AvailabilityWriter,
	prefs PreferenceWriter,
	logger *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		events: events,
		users:  users,
		avails: avails,
		prefs:  prefs,
		logger: logger,
	}
}

// SubmitAvailability сохраняет доступность преподавателя для события.
// Слоты сортируются перед сохранением
func (s *SubmissionService) SubmitAvailability(ctx context.Context, facultyID, eventID int64, slots []string, notes string) error {
	if _, err := s.collectingEvent(ctx, eventID); err != nil {
		return err
	}

	if err := s.checkActiveUser(ctx, facultyID, model.UserRoleFaculty); err != nil {
		return err
	}

	if err := validateSlotLabels(slots); err != nil {
		return err
	}

	sorted := append([]string(nil), slots...)
	sort.Strings(sorted)

	av := &model.Availability{
		FacultyID:      facultyID,
		EventID:        eventID,
		AvailableSlots: sorted,
		Notes:          notes,
	}
	if err := s.avails.Upsert(ctx, av); err != nil {
		return fmt.Errorf("save availability: %w", err)
	}

	s.logger.Info("Availability submitted",
		zap.Int64("faculty_id", facultyID),
		zap.Int64("event_id", eventID),
		zap.Int("slots", len(sorted)),
	)

	return nil
}

// SubmitPreference сохраняет предпочтения студента для события.
// Число выбранных преподавателей ограничено границами события,
// дубли запрещены
func (s *SubmissionService) SubmitPreference(ctx context.Context, studentID, eventID int64, professorIDs []int64, slots []string, notes string) error {
	event, err := s.collectingEvent(ctx, eventID)
	if err != nil {
		return err
	}

	if err := s.checkActiveUser(ctx, studentID, model.UserRoleStudent); err != nil {
		return err
	}

	if len(professorIDs) < event.MinFaculty {
		return fmt.Errorf("must select at least %d professors", event.MinFaculty)
	}
	if len(professorIDs) > event.MaxFaculty {
		return fmt.Errorf("cannot select more than %d professors", event.MaxFaculty)
	}

	seen := make(map[int64]bool, len(professorIDs))
	for _, id := range professorIDs {
		if seen[id] {
			return fmt.Errorf("duplicate professor %d in preferences", id)
		}
		seen[id] = true
		if err := s.checkActiveUser(ctx, id, model.UserRoleFaculty); err != nil {
			return err
		}
	}

	if err := validateSlotLabels(slots); err != nil {
		return err
	}

	sorted := append([]string(nil), slots...)
	sort.Strings(sorted)

	pref := &model.Preference{
		StudentID:      studentID,
		EventID:        eventID,
		ProfessorIDs:   professorIDs,
		AvailableSlots: sorted,
		Notes:          notes,
	}
	if err := s.prefs.Upsert(ctx, pref); err != nil {
		return fmt.Errorf("save preference: %w", err)
	}

	s.logger.Info("Preference submitted",
		zap.Int64("student_id", studentID),
		zap.Int64("event_id", eventID),
		zap.Int("professors", len(professorIDs)),
	)

	return nil
}

// collectingEvent получает событие и проверяет что сбор входных данных открыт
func (s *SubmissionService) collectingEvent(ctx context.Context, eventID int64) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.Status != model.EventStatusCollectingAvail {
		return nil, fmt.Errorf("event %d in status %s: %w", eventID, event.Status, ErrSubmissionClosed)
	}
	return event, nil
}

// checkActiveUser проверяет что пользователь существует, активен
// и имеет ожидаемую роль
func (s *SubmissionService) checkActiveUser(ctx context.Context, id int64, role model.UserRole) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %d not found", id)
	}
	if user.Role != role {
		return fmt.Errorf("user %d is not a %s", id, role)
	}
	if user.Status != model.UserStatusActive {
		return fmt.Errorf("user %d is not active", id)
	}
	return nil
}

func validateSlotLabels(slots []string) error {
	for _, label := range slots {
		if !timegrid.ValidSlotLabel(label) {
			return fmt.Errorf("invalid slot label %q", label)
		}
	}
	return nil
}
