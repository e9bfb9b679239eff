package model

import "time"

// Preference запись предпочтений студента для события.
// Одна запись на пару (student, event)
type Preference struct {
	ID             int64     `json:"id"`
	StudentID      int64     `json:"student_id"`
	EventID        int64     `json:"event_id"`
	ProfessorIDs   []int64   `json:"professor_ids"`   // выбранные преподаватели, без дублей
	AvailableSlots []string  `json:"available_slots"` // метки слотов "HH:MM-HH:MM"
	Notes          string    `json:"notes"`
	UpdatedAt      time.Time `json:"updated_at"`
}
