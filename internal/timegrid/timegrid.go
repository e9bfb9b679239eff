package timegrid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidTimeRange возвращается когда конец окна не позже его начала
// или время не парсится как HH:MM
var ErrInvalidTimeRange = errors.New("invalid time range")

// Slot один интервал дня в каноническом виде "HH:MM-HH:MM"
type Slot struct {
	Start string
	End   string
}

// Label возвращает каноническую метку слота
func (s Slot) Label() string {
	return s.Start + "-" + s.End
}

// ParseClock парсит время вида "HH:MM" в минуты от полуночи
func ParseClock(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("parse clock %q: %w", value, ErrInvalidTimeRange)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", value, ErrInvalidTimeRange)
	}

	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", value, ErrInvalidTimeRange)
	}

	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock %q: %w", value, ErrInvalidTimeRange)
	}

	return h*60 + m, nil
}

// FormatClock форматирует минуты от полуночи в "HH:MM"
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// GenerateSlots генерирует упорядоченный список слотов длиной slotLen минут
// в полуоткрытом окне [startTime, endTime). Неполный последний слот отбрасывается
func GenerateSlots(startTime, endTime string, slotLen int) ([]string, error) {
	if slotLen <= 0 {
		return nil, fmt.Errorf("slot length %d: %w", slotLen, ErrInvalidTimeRange)
	}

	start, err := ParseClock(startTime)
	if err != nil {
		return nil, err
	}

	end, err := ParseClock(endTime)
	if err != nil {
		return nil, err
	}

	if end <= start {
		return nil, fmt.Errorf("window %s-%s: %w", startTime, endTime, ErrInvalidTimeRange)
	}

	var slots []string
	for cur := start; cur+slotLen <= end; cur += slotLen {
		slots = append(slots, FormatClock(cur)+"-"+FormatClock(cur+slotLen))
	}

	return slots, nil
}

// ParseSlot парсит метку "HH:MM-HH:MM" в слот
func ParseSlot(label string) (Slot, error) {
	parts := strings.SplitN(label, "-", 2)
	if len(parts) != 2 {
		return Slot{}, fmt.Errorf("parse slot %q: %w", label, ErrInvalidTimeRange)
	}

	start, err := ParseClock(strings.TrimSpace(parts[0]))
	if err != nil {
		return Slot{}, err
	}

	end, err := ParseClock(strings.TrimSpace(parts[1]))
	if err != nil {
		return Slot{}, err
	}

	if end <= start {
		return Slot{}, fmt.Errorf("parse slot %q: %w", label, ErrInvalidTimeRange)
	}

	return Slot{Start: FormatClock(start), End: FormatClock(end)}, nil
}

// ValidSlotLabel проверяет что метка слота каноническая
func ValidSlotLabel(label string) bool {
	slot, err := ParseSlot(label)
	if err != nil {
		return false
	}
	return slot.Label() == label
}
