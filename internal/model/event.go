package model

import "time"

type EventStatus string

const (
	EventStatusCreated         EventStatus = "CREATED"          // Настройка события
	EventStatusCollectingAvail EventStatus = "COLLECTING_AVAIL" // Сбор доступности и предпочтений
	EventStatusScheduling      EventStatus = "SCHEDULING"       // Готово к запуску алгоритма
	EventStatusPublished       EventStatus = "PUBLISHED"        // Расписание опубликовано
)

type Event struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Date       time.Time   `json:"date"`
	SlotLen    int         `json:"slot_len"` // длина слота в минутах
	Status     EventStatus `json:"status"`
	StartTime  string      `json:"start_time"` // "HH:MM"
	EndTime    string      `json:"end_time"`   // "HH:MM"
	Slots      []string    `json:"slots"`      // каталог слотов, может быть пустым
	MinFaculty int         `json:"min_faculty"`
	MaxFaculty int         `json:"max_faculty"`
	AutoRun    bool        `json:"auto_run"` // автозапуск матчинга фоновым воркером
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NextValidStatuses возвращает допустимые переходы из текущего статуса
func NextValidStatuses(current EventStatus) []EventStatus {
	switch current {
	case EventStatusCreated:
		return []EventStatus{EventStatusCollectingAvail}
	case EventStatusCollectingAvail:
		return []EventStatus{EventStatusCreated, EventStatusScheduling}
	case EventStatusScheduling:
		return []EventStatus{EventStatusCollectingAvail, EventStatusPublished}
	case EventStatusPublished:
		return []EventStatus{EventStatusScheduling, EventStatusCollectingAvail}
	default:
		return nil
	}
}

// CanTransition проверяет допустим ли переход статуса
func CanTransition(current, target EventStatus) bool {
	for _, s := range NextValidStatuses(current) {
		if s == target {
			return true
		}
	}
	return false
}
