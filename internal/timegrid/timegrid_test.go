package timegrid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateSlots(t *testing.T) {
	slots, err := GenerateSlots("09:00", "11:00", 30)
	require.NoError(t, err)
	require.Equal(t, []string{
		"09:00-09:30",
		"09:30-10:00",
		"10:00-10:30",
		"10:30-11:00",
	}, slots)
}

func TestGenerateSlotsCoversWindowWithoutGaps(t *testing.T) {
	slots, err := GenerateSlots("08:15", "12:45", 45)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	// Конкатенация слотов восстанавливает покрытое окно без дыр
	prevEnd := "08:15"
	for _, label := range slots {
		slot, err := ParseSlot(label)
		require.NoError(t, err)
		require.Equal(t, prevEnd, slot.Start)
		prevEnd = slot.End

		start, _ := ParseClock(slot.Start)
		end, _ := ParseClock(slot.End)
		require.Equal(t, 45, end-start)
	}
}

func TestGenerateSlotsDropsPartialTrailingSlot(t *testing.T) {
	// Окно 100 минут не делится на 30, хвост в 10 минут отбрасывается
	slots, err := GenerateSlots("09:00", "10:40", 30)
	require.NoError(t, err)
	require.Equal(t, []string{
		"09:00-09:30",
		"09:30-10:00",
		"10:00-10:30",
	}, slots)
}

func TestGenerateSlotsCrossesHourBoundary(t *testing.T) {
	slots, err := GenerateSlots("09:45", "10:35", 25)
	require.NoError(t, err)
	require.Equal(t, []string{"09:45-10:10", "10:10-10:35"}, slots)
}

func TestGenerateSlotsInvalidRange(t *testing.T) {
	_, err := GenerateSlots("11:00", "09:00", 30)
	require.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = GenerateSlots("09:00", "09:00", 30)
	require.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = GenerateSlots("09:00", "10:00", 0)
	require.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = GenerateSlots("9 am", "10:00", 30)
	require.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestParseClock(t *testing.T) {
	minutes, err := ParseClock("13:05")
	require.NoError(t, err)
	require.Equal(t, 13*60+5, minutes)

	_, err = ParseClock("24:00")
	require.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = ParseClock("12:60")
	require.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestValidSlotLabel(t *testing.T) {
	require.True(t, ValidSlotLabel("09:00-09:30"))
	require.False(t, ValidSlotLabel("9:00-9:30"))   // не каноническая форма
	require.False(t, ValidSlotLabel("09:30-09:00")) // инвертированный интервал
	require.False(t, ValidSlotLabel("morning"))
}
