package model

import "time"

// Availability запись доступности преподавателя для события.
// Одна запись на пару (faculty, event)
type Availability struct {
	ID             int64     `json:"id"`
	FacultyID      int64     `json:"faculty_id"`
	EventID        int64     `json:"event_id"`
	AvailableSlots []string  `json:"available_slots"` // метки слотов "HH:MM-HH:MM"
	Notes          string    `json:"notes"`
	UpdatedAt      time.Time `json:"updated_at"`
}
