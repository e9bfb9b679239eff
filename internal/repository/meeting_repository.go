package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unimeet/scheduler/internal/model"
	"github.com/unimeet/scheduler/internal/repository/base"
)

// meetingRunLockKey пространство ключей advisory-локов выделения run_id
const meetingRunLockKey = int32(0x4d454554) // "MEET"

type MeetingRepository struct {
	*base.Repository
}

func NewMeetingRepository(pool *pgxpool.Pool) *MeetingRepository {
	return &MeetingRepository{Repository: base.NewRepository(pool)}
}

// PublishRun атомарно выделяет следующий run_id события и записывает
// пакет встреч под этим номером вместе со строкой аудита запуска.
// Сериализация по событию идёт через advisory-лок в рамках транзакции:
// два одновременных запуска не получат один номер, а упавший запуск
// не оставит встреч без номера
func (r *MeetingRepository) PublishRun(ctx context.Context, eventID int64, meetings []*model.Meeting, underServed int) (*model.SchedulerRun, error) {
	var run model.SchedulerRun

	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, meetingRunLockKey, int32(eventID))
		if err != nil {
			return fmt.Errorf("acquire run lock: %w", err)
		}

		var runID int64
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(run_id), 0) + 1 FROM scheduler_runs WHERE event_id = $1`,
			eventID,
		).Scan(&runID)
		if err != nil {
			return fmt.Errorf("allocate run id: %w", err)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO scheduler_runs (event_id, run_id, meeting_count, under_served_count)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`, eventID, runID, len(meetings), underServed).Scan(&run.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, m := range meetings {
			m.EventID = eventID
			m.RunID = runID
			err = tx.QueryRow(ctx, `
				INSERT INTO meetings (event_id, professor_id, student_id, slot, run_id)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id, created_at
			`, m.EventID, m.ProfessorID, m.StudentID, m.Slot, m.RunID).Scan(&m.ID, &m.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert meeting: %w", err)
			}
		}

		run.EventID = eventID
		run.RunID = runID
		run.MeetingCount = len(meetings)
		run.UnderServedCount = underServed
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &run, nil
}

// GetLatestRun получает последний запуск события, nil если запусков не было
func (r *MeetingRepository) GetLatestRun(ctx context.Context, eventID int64) (*model.SchedulerRun, error) {
	query := `
		SELECT event_id, run_id, meeting_count, under_served_count, created_at
		FROM scheduler_runs
		WHERE event_id = $1
		ORDER BY run_id DESC
		LIMIT 1
	`

	var run model.SchedulerRun
	err := r.QueryRow(ctx, query, eventID).Scan(
		&run.EventID,
		&run.RunID,
		&run.MeetingCount,
		&run.UnderServedCount,
		&run.CreatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest run: %w", err)
	}

	return &run, nil
}

// GetCurrentMeetings получает встречи последнего запуска события.
// Ранние запуски остаются в таблице для истории и никогда не мутируются
func (r *MeetingRepository) GetCurrentMeetings(ctx context.Context, eventID int64) ([]*model.Meeting, error) {
	query := `
		SELECT id, event_id, professor_id, student_id, slot, run_id, created_at
		FROM meetings
		WHERE event_id = $1
		  AND run_id = (SELECT COALESCE(MAX(run_id), 0) FROM meetings WHERE event_id = $1)
		ORDER BY slot, professor_id
	`

	return r.queryMeetings(ctx, query, eventID)
}

// GetMeetingsByRun получает встречи конкретного запуска
func (r *MeetingRepository) GetMeetingsByRun(ctx context.Context, eventID, runID int64) ([]*model.Meeting, error) {
	query := `
		SELECT id, event_id, professor_id, student_id, slot, run_id, created_at
		FROM meetings
		WHERE event_id = $1 AND run_id = $2
		ORDER BY slot, professor_id
	`

	return r.queryMeetings(ctx, query, eventID, runID)
}

func (r *MeetingRepository) queryMeetings(ctx context.Context, query string, args ...interface{}) ([]*model.Meeting, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get meetings: %w", err)
	}
	defer rows.Close()

	var meetings []*model.Meeting
	for rows.Next() {
		var m model.Meeting
		err := rows.Scan(
			&m.ID,
			&m.EventID,
			&m.ProfessorID,
			&m.StudentID,
			&m.Slot,
			&m.RunID,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		meetings = append(meetings, &m)
	}

	return meetings, rows.Err()
}
