package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unimeet/scheduler/internal/model"
)

type PreferenceRepository struct {
	pool *pgxpool.Pool
}

func NewPreferenceRepository(pool *pgxpool.Pool) *PreferenceRepository {
	return &PreferenceRepository{pool: pool}
}

// Upsert создаёт или обновляет предпочтения студента для события
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *model.Preference) error {
	rawProfs, err := json.Marshal(pref.ProfessorIDs)
	if err != nil {
		return fmt.Errorf("encode professor ids: %w", err)
	}

	rawSlots, err := model.EncodeSlotList(pref.AvailableSlots)
	if err != nil {
		return fmt.Errorf("encode slot list: %w", err)
	}

	query := `
		INSERT INTO preferences (student_id, event_id, professor_ids, available_slots, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (student_id, event_id)
		DO UPDATE SET professor_ids = $3, available_slots = $4, notes = $5, updated_at = NOW()
		RETURNING id, updated_at
	`

	err = r.pool.QueryRow(ctx, query, pref.StudentID, pref.EventID, rawProfs, rawSlots, pref.Notes).
		Scan(&pref.ID, &pref.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert preference: %w", err)
	}

	return nil
}

// GetByEventID получает все записи предпочтений для события
func (r *PreferenceRepository) GetByEventID(ctx context.Context, eventID int64) ([]*model.Preference, error) {
	query := `
		SELECT id, student_id, event_id, professor_ids, available_slots, notes, updated_at
		FROM preferences
		WHERE event_id = $1
		ORDER BY student_id
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("get preferences by event: %w", err)
	}
	defer rows.Close()

	var records []*model.Preference
	for rows.Next() {
		pref, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		records = append(records, pref)
	}

	return records, rows.Err()
}

// Get получает запись предпочтений пары (student, event)
func (r *PreferenceRepository) Get(ctx context.Context, studentID, eventID int64) (*model.Preference, error) {
	query := `
		SELECT id, student_id, event_id, professor_ids, available_slots, notes, updated_at
		FROM preferences
		WHERE student_id = $1 AND event_id = $2
	`

	pref, err := scanPreference(r.pool.QueryRow(ctx, query, studentID, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get preference: %w", err)
	}

	return pref, nil
}

func scanPreference(row pgx.Row) (*model.Preference, error) {
	var pref model.Preference
	var rawProfs, rawSlots []byte

	err := row.Scan(
		&pref.ID,
		&pref.StudentID,
		&pref.EventID,
		&rawProfs,
		&rawSlots,
		&pref.Notes,
		&pref.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Битый список преподавателей деградирует в пустой, запись не фатальна
	if err := json.Unmarshal(rawProfs, &pref.ProfessorIDs); err != nil {
		pref.ProfessorIDs = nil
	}
	pref.AvailableSlots = model.DecodeSlotList(rawSlots)

	return &pref, nil
}
