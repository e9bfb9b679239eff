package matching

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func twoSlots() []string {
	return []string{"09:00-09:30", "09:30-10:00"}
}

func TestMatchOneStudentTwoProfessors(t *testing.T) {
	in := Input{
		EventID: 1,
		Slots:   twoSlots(),
		Professors: []Professor{
			{ID: 101, AvailableSlots: twoSlots()},
			{ID: 102, AvailableSlots: twoSlots()},
		},
		Students: []Student{
			{ID: 201, Preferences: []int64{101, 102}, AvailableSlots: twoSlots()},
		},
		MinFaculty: 2,
		MaxFaculty: 2,
	}

	res := Match(in)

	require.Len(t, res.Meetings, 2)
	require.Empty(t, res.UnderServed)

	profs := make(map[int64]bool)
	slots := make(map[string]bool)
	for _, m := range res.Meetings {
		require.Equal(t, int64(201), m.StudentID)
		profs[m.ProfessorID] = true
		slots[m.Slot] = true
	}
	require.Len(t, profs, 2, "по одной встрече на каждого преподавателя")
	require.Len(t, slots, 2, "встречи в разных слотах")
}

func TestMatchNoDoubleBooking(t *testing.T) {
	slots := []string{"09:00-09:30", "09:30-10:00", "10:00-10:30", "10:30-11:00"}
	in := Input{
		EventID: 1,
		Slots:   slots,
		Professors: []Professor{
			{ID: 101, AvailableSlots: slots},
			{ID: 102, AvailableSlots: slots},
			{ID: 103, AvailableSlots: slots[:2]},
		},
		Students: []Student{
			{ID: 201, Preferences: []int64{101, 102, 103}, AvailableSlots: slots},
			{ID: 202, Preferences: []int64{101, 102, 103}, AvailableSlots: slots},
			{ID: 203, Preferences: []int64{101, 103}, AvailableSlots: slots[:3]},
		},
		MinFaculty: 1,
		MaxFaculty: 3,
	}

	res := Match(in)
	requireFeasible(t, in, res)
}

// requireFeasible проверяет жёсткие ограничения на любом результате
func requireFeasible(t *testing.T, in Input, res Result) {
	t.Helper()

	profAvail := make(map[int64]map[string]bool)
	for _, p := range in.Professors {
		set := make(map[string]bool)
		for _, s := range p.AvailableSlots {
			set[s] = true
		}
		profAvail[p.ID] = set
	}
	stuAvail := make(map[int64]map[string]bool)
	for _, s := range in.Students {
		set := make(map[string]bool)
		for _, l := range s.AvailableSlots {
			set[l] = true
		}
		stuAvail[s.ID] = set
	}

	profSlot := make(map[[2]interface{}]bool)
	stuSlot := make(map[[2]interface{}]bool)
	pairs := make(map[[2]int64]bool)

	for _, m := range res.Meetings {
		require.True(t, profAvail[m.ProfessorID][m.Slot],
			"слот %s вне доступности преподавателя %d", m.Slot, m.ProfessorID)
		require.True(t, stuAvail[m.StudentID][m.Slot],
			"слот %s вне доступности студента %d", m.Slot, m.StudentID)

		pk := [2]interface{}{m.ProfessorID, m.Slot}
		require.False(t, profSlot[pk], "преподаватель %d занят дважды в %s", m.ProfessorID, m.Slot)
		profSlot[pk] = true

		sk := [2]interface{}{m.StudentID, m.Slot}
		require.False(t, stuSlot[sk], "студент %d занят дважды в %s", m.StudentID, m.Slot)
		stuSlot[sk] = true

		pair := [2]int64{m.StudentID, m.ProfessorID}
		require.False(t, pairs[pair], "пара (%d, %d) встречается дважды", m.StudentID, m.ProfessorID)
		pairs[pair] = true
	}
}

func TestMatchUnderServedStudent(t *testing.T) {
	in := Input{
		EventID: 1,
		Slots:   twoSlots(),
		Professors: []Professor{
			{ID: 101, AvailableSlots: twoSlots()},
			// 102 доступен только там, где студент недоступен
			{ID: 102, AvailableSlots: []string{"09:30-10:00"}},
		},
		Students: []Student{
			{ID: 201, Preferences: []int64{101, 102}, AvailableSlots: []string{"09:00-09:30"}},
		},
		MinFaculty: 2,
		MaxFaculty: 2,
	}

	res := Match(in)

	require.Len(t, res.Meetings, 1)
	require.Equal(t, int64(101), res.Meetings[0].ProfessorID)

	require.Len(t, res.UnderServed, 1)
	us := res.UnderServed[0]
	require.Equal(t, int64(201), us.StudentID)
	require.Equal(t, 1, us.Assigned)
	require.Equal(t, 2, us.Required)
	require.Equal(t, []int64{102}, us.UnmetProfessors)
}

func TestMatchDanglingPreferenceSkipped(t *testing.T) {
	in := Input{
		EventID: 1,
		Slots:   twoSlots(),
		Professors: []Professor{
			{ID: 101, AvailableSlots: twoSlots()},
		},
		Students: []Student{
			// 999 не подавал доступность, ссылка висячая
			{ID: 201, Preferences: []int64{999, 101}, AvailableSlots: twoSlots()},
		},
		MinFaculty: 1,
		MaxFaculty: 2,
	}

	res := Match(in)

	require.Len(t, res.Meetings, 1)
	require.Equal(t, int64(101), res.Meetings[0].ProfessorID)
	require.Empty(t, res.UnderServed)
}

func TestMatchEmptyInputs(t *testing.T) {
	res := Match(Input{EventID: 1, MinFaculty: 1, MaxFaculty: 3})
	require.Empty(t, res.Meetings)
	require.Empty(t, res.UnderServed)

	res = Match(Input{
		EventID:    1,
		Slots:      twoSlots(),
		Students:   []Student{{ID: 201, Preferences: []int64{101}, AvailableSlots: twoSlots()}},
		MinFaculty: 1,
		MaxFaculty: 3,
	})
	require.Empty(t, res.Meetings)
	require.Len(t, res.UnderServed, 1)
}

func TestMatchDeterministic(t *testing.T) {
	slots := []string{"09:00-09:30", "09:30-10:00", "10:00-10:30"}
	in := Input{
		EventID: 1,
		Slots:   slots,
		Professors: []Professor{
			{ID: 103, AvailableSlots: slots},
			{ID: 101, AvailableSlots: slots[1:]},
			{ID: 102, AvailableSlots: slots},
		},
		Students: []Student{
			{ID: 203, Preferences: []int64{101, 102}, AvailableSlots: slots},
			{ID: 201, Preferences: []int64{102, 103}, AvailableSlots: slots[:2]},
			{ID: 202, Preferences: []int64{101, 103}, AvailableSlots: slots},
		},
		MinFaculty: 1,
		MaxFaculty: 2,
	}

	first := Match(in)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Match(in))
	}
}

func TestMatchPrefersEarlierSlot(t *testing.T) {
	in := Input{
		EventID: 1,
		Slots:   twoSlots(),
		Professors: []Professor{
			{ID: 101, AvailableSlots: twoSlots()},
		},
		Students: []Student{
			{ID: 201, Preferences: []int64{101}, AvailableSlots: twoSlots()},
		},
		MinFaculty: 1,
		MaxFaculty: 1,
	}

	res := Match(in)
	require.Len(t, res.Meetings, 1)
	require.Equal(t, "09:00-09:30", res.Meetings[0].Slot)
}

func TestMatchRelocatesMeetingToFreeContestedSlot(t *testing.T) {
	// Единственный общий слот студента 202 с преподавателем занят
	// встречей студента 201, которого можно пересадить
	in := Input{
		EventID: 1,
		Slots:   twoSlots(),
		Professors: []Professor{
			{ID: 101, AvailableSlots: twoSlots()},
		},
		Students: []Student{
			{ID: 201, Preferences: []int64{101}, AvailableSlots: twoSlots()},
			{ID: 202, Preferences: []int64{101}, AvailableSlots: []string{"09:00-09:30"}},
		},
		MinFaculty: 1,
		MaxFaculty: 1,
	}

	res := Match(in)
	requireFeasible(t, in, res)

	require.Len(t, res.Meetings, 2)
	require.Empty(t, res.UnderServed)

	bySlot := make(map[string]int64)
	for _, m := range res.Meetings {
		bySlot[m.Slot] = m.StudentID
	}
	require.Equal(t, int64(202), bySlot["09:00-09:30"])
	require.Equal(t, int64(201), bySlot["09:30-10:00"])
}

func TestMatchRespectsMaxFaculty(t *testing.T) {
	slots := []string{"09:00-09:30", "09:30-10:00", "10:00-10:30"}
	in := Input{
		EventID: 1,
		Slots:   slots,
		Professors: []Professor{
			{ID: 101, AvailableSlots: slots},
			{ID: 102, AvailableSlots: slots},
			{ID: 103, AvailableSlots: slots},
		},
		Students: []Student{
			{ID: 201, Preferences: []int64{101, 102, 103}, AvailableSlots: slots},
		},
		MinFaculty: 1,
		MaxFaculty: 2,
	}

	res := Match(in)
	require.Len(t, res.Meetings, 2)
}

func TestMatchBalancesScarceCapacity(t *testing.T) {
	// Преподаватель 102 доступен в одном слоте, 101 в двух: дефицитный
	// должен достаться первым, чтобы оба студента получили по встрече
	in := Input{
		EventID: 1,
		Slots:   twoSlots(),
		Professors: []Professor{
			{ID: 101, AvailableSlots: twoSlots()},
			{ID: 102, AvailableSlots: []string{"09:00-09:30"}},
		},
		Students: []Student{
			{ID: 201, Preferences: []int64{101, 102}, AvailableSlots: twoSlots()},
			{ID: 202, Preferences: []int64{101, 102}, AvailableSlots: twoSlots()},
		},
		MinFaculty: 1,
		MaxFaculty: 2,
	}

	res := Match(in)
	requireFeasible(t, in, res)

	perStudent := make(map[int64]int)
	for _, m := range res.Meetings {
		perStudent[m.StudentID]++
	}
	require.GreaterOrEqual(t, perStudent[201], 1)
	require.GreaterOrEqual(t, perStudent[202], 1)
	require.Empty(t, res.UnderServed)
}
