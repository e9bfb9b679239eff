package model

import "time"

// Meeting назначенная алгоритмом встреча один-на-один.
// Строки встреч никогда не мутируются, только вытесняются новым запуском
type Meeting struct {
	ID          int64     `json:"id"`
	EventID     int64     `json:"event_id"`
	ProfessorID int64     `json:"professor_id"`
	StudentID   int64     `json:"student_id"`
	Slot        string    `json:"slot"` // метка "HH:MM-HH:MM"
	RunID       int64     `json:"run_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// SchedulerRun итог одного запуска алгоритма для события.
// RunID монотонно растёт в рамках события, актуален только максимальный
type SchedulerRun struct {
	EventID          int64     `json:"event_id"`
	RunID            int64     `json:"run_id"`
	MeetingCount     int       `json:"meeting_count"`
	UnderServedCount int       `json:"under_served_count"`
	CreatedAt        time.Time `json:"created_at"`
}
