package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unimeet/scheduler/internal/model"
)

type fakeEventStore struct {
	events map[int64]*model.Event
}

func (f *fakeEventStore) GetByID(_ context.Context, id int64) (*model.Event, error) {
	return f.events[id], nil
}

type fakeAvailStore struct {
	records []*model.Availability
}

func (f *fakeAvailStore) GetByEventID(_ context.Context, eventID int64) ([]*model.Availability, error) {
	var out []*model.Availability
	for _, av := range f.records {
		if av.EventID == eventID {
			out = append(out, av)
		}
	}
	return out, nil
}

type fakePrefStore struct {
	records []*model.Preference
}

func (f *fakePrefStore) GetByEventID(_ context.Context, eventID int64) ([]*model.Preference, error) {
	var out []*model.Preference
	for _, pref := range f.records {
		if pref.EventID == eventID {
			out = append(out, pref)
		}
	}
	return out, nil
}

// fakeMeetingStore выделяет run_id под мьютексом, имитируя
// транзакционную дисциплину репозитория
type fakeMeetingStore struct {
	mu       sync.Mutex
	lastRun  map[int64]int64
	runs     []*model.SchedulerRun
	meetings []*model.Meeting
}

func newFakeMeetingStore() *fakeMeetingStore {
	return &fakeMeetingStore{lastRun: make(map[int64]int64)}
}

func (f *fakeMeetingStore) PublishRun(_ context.Context, eventID int64, meetings []*model.Meeting, underServed int) (*model.SchedulerRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	runID := f.lastRun[eventID] + 1
	f.lastRun[eventID] = runID

	for _, m := range meetings {
		m.EventID = eventID
		m.RunID = runID
		f.meetings = append(f.meetings, m)
	}

	run := &model.SchedulerRun{
		EventID:          eventID,
		RunID:            runID,
		MeetingCount:     len(meetings),
		UnderServedCount: underServed,
	}
	f.runs = append(f.runs, run)
	return run, nil
}

func twoSlots() []string {
	return []string{"09:00-09:30", "09:30-10:00"}
}

func schedulingEvent(id int64) *model.Event {
	return &model.Event{
		ID:         id,
		Name:       "Research Day",
		SlotLen:    30,
		Status:     model.EventStatusScheduling,
		StartTime:  "09:00",
		EndTime:    "10:00",
		Slots:      twoSlots(),
		MinFaculty: 1,
		MaxFaculty: 2,
	}
}

func newTestMatchingService(events *fakeEventStore, avails *fakeAvailStore, prefs *fakePrefStore, meetings *fakeMeetingStore) *MatchingService {
	return NewMatchingService(events, avails, prefs, meetings, zap.NewNop())
}

func TestPrepareInputEventNotFound(t *testing.T) {
	svc := newTestMatchingService(
		&fakeEventStore{events: map[int64]*model.Event{}},
		&fakeAvailStore{}, &fakePrefStore{}, newFakeMeetingStore())

	_, err := svc.PrepareInput(context.Background(), 42)
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestPrepareInputSynthesizesSlotCatalog(t *testing.T) {
	event := schedulingEvent(1)
	event.Slots = nil // каталог не задан, генерируем из окна события

	svc := newTestMatchingService(
		&fakeEventStore{events: map[int64]*model.Event{1: event}},
		&fakeAvailStore{}, &fakePrefStore{}, newFakeMeetingStore())

	in, err := svc.PrepareInput(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, twoSlots(), in.Slots)
}

func TestPrepareInputInvalidWindow(t *testing.T) {
	event := schedulingEvent(1)
	event.Slots = nil
	event.StartTime, event.EndTime = "10:00", "09:00"

	svc := newTestMatchingService(
		&fakeEventStore{events: map[int64]*model.Event{1: event}},
		&fakeAvailStore{}, &fakePrefStore{}, newFakeMeetingStore())

	_, err := svc.PrepareInput(context.Background(), 1)
	require.Error(t, err)
}

func TestPrepareInputAssemblesRecords(t *testing.T) {
	event := schedulingEvent(1)
	svc := newTestMatchingService(
		&fakeEventStore{events: map[int64]*model.Event{1: event}},
		&fakeAvailStore{records: []*model.Availability{
			{FacultyID: 101, EventID: 1, AvailableSlots: twoSlots()},
			{FacultyID: 102, EventID: 2, AvailableSlots: twoSlots()}, // другое событие
		}},
		&fakePrefStore{records: []*model.Preference{
			{StudentID: 201, EventID: 1, ProfessorIDs: []int64{101}, AvailableSlots: twoSlots()},
		}},
		newFakeMeetingStore())

	in, err := svc.PrepareInput(context.Background(), 1)
	require.NoError(t, err)

	require.Equal(t, int64(1), in.EventID)
	require.Equal(t, 1, in.MinFaculty)
	require.Equal(t, 2, in.MaxFaculty)
	require.Len(t, in.Professors, 1)
	require.Equal(t, int64(101), in.Professors[0].ID)
	require.Len(t, in.Students, 1)
	require.Equal(t, []int64{101}, in.Students[0].Preferences)
}

func TestRunSchedulerPublishesTaggedMeetings(t *testing.T) {
	event := schedulingEvent(1)
	meetings := newFakeMeetingStore()

	svc := newTestMatchingService(
		&fakeEventStore{events: map[int64]*model.Event{1: event}},
		&fakeAvailStore{records: []*model.Availability{
			{FacultyID: 101, EventID: 1, AvailableSlots: twoSlots()},
			{FacultyID: 102, EventID: 1, AvailableSlots: twoSlots()},
		}},
		&fakePrefStore{records: []*model.Preference{
			{StudentID: 201, EventID: 1, ProfessorIDs: []int64{101, 102}, AvailableSlots: twoSlots()},
		}},
		meetings)

	run, result, err := svc.RunScheduler(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), run.RunID)
	require.Len(t, result.Meetings, 2)
	require.Empty(t, result.UnderServed)

	for _, m := range meetings.meetings {
		require.Equal(t, int64(1), m.EventID)
		require.Equal(t, int64(1), m.RunID)
	}

	// Повторный запуск получает следующий номер, старые встречи не трогаются
	run2, _, err := svc.RunScheduler(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), run2.RunID)
	require.Len(t, meetings.meetings, 4)
}

func TestRunSchedulerRejectsWrongStatus(t *testing.T) {
	event := schedulingEvent(1)
	event.Status = model.EventStatusCollectingAvail

	svc := newTestMatchingService(
		&fakeEventStore{events: map[int64]*model.Event{1: event}},
		&fakeAvailStore{}, &fakePrefStore{}, newFakeMeetingStore())

	_, _, err := svc.RunScheduler(context.Background(), 1)
	require.ErrorIs(t, err, ErrEventNotScheduling)
}

func TestRunSchedulerEventNotFound(t *testing.T) {
	svc := newTestMatchingService(
		&fakeEventStore{events: map[int64]*model.Event{}},
		&fakeAvailStore{}, &fakePrefStore{}, newFakeMeetingStore())

	_, _, err := svc.RunScheduler(context.Background(), 7)
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestRunSchedulerConcurrentRunsGetDistinctIDs(t *testing.T) {
	event := schedulingEvent(1)
	meetings := newFakeMeetingStore()

	svc := newTestMatchingService(
		&fakeEventStore{events: map[int64]*model.Event{1: event}},
		&fakeAvailStore{records: []*model.Availability{
			{FacultyID: 101, EventID: 1, AvailableSlots: twoSlots()},
		}},
		&fakePrefStore{records: []*model.Preference{
			{StudentID: 201, EventID: 1, ProfessorIDs: []int64{101}, AvailableSlots: twoSlots()},
		}},
		meetings)

	const n = 8
	var wg sync.WaitGroup
	runIDs := make([]int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			run, _, err := svc.RunScheduler(context.Background(), 1)
			require.NoError(t, err)
			runIDs[i] = run.RunID
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, id := range runIDs {
		require.False(t, seen[id], "run id %d выдан дважды", id)
		seen[id] = true
	}
}
