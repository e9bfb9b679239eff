package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unimeet/scheduler/internal/model"
)

type AvailabilityRepository struct {
	pool *pgxpool.Pool
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool}
}

// Upsert создаёт или обновляет доступность преподавателя для события
func (r *AvailabilityRepository) Upsert(ctx context.Context, av *model.Availability) error {
	rawSlots, err := model.EncodeSlotList(av.AvailableSlots)
	if err != nil {
		return fmt.Errorf("encode slot list: %w", err)
	}

	query := `
		INSERT INTO availabilities (faculty_id, event_id, available_slots, notes, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (faculty_id, event_id)
		DO UPDATE SET available_slots = $3, notes = $4, updated_at = NOW()
		RETURNING id, updated_at
	`

	err = r.pool.QueryRow(ctx, query, av.FacultyID, av.EventID, rawSlots, av.Notes).
		Scan(&av.ID, &av.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert availability: %w", err)
	}

	return nil
}

// GetByEventID получает все записи доступности для события
func (r *AvailabilityRepository) GetByEventID(ctx context.Context, eventID int64) ([]*model.Availability, error) {
	query := `
		SELECT id, faculty_id, event_id, available_slots, notes, updated_at
		FROM availabilities
		WHERE event_id = $1
		ORDER BY faculty_id
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("get availabilities by event: %w", err)
	}
	defer rows.Close()

	var records []*model.Availability
	for rows.Next() {
		av, err := scanAvailability(rows)
		if err != nil {
			return nil, fmt.Errorf("scan availability: %w", err)
		}
		records = append(records, av)
	}

	return records, rows.Err()
}

// Get получает запись доступности пары (faculty, event)
func (r *AvailabilityRepository) Get(ctx context.Context, facultyID, eventID int64) (*model.Availability, error) {
	query := `
		SELECT id, faculty_id, event_id, available_slots, notes, updated_at
		FROM availabilities
		WHERE faculty_id = $1 AND event_id = $2
	`

	av, err := scanAvailability(r.pool.QueryRow(ctx, query, facultyID, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get availability: %w", err)
	}

	return av, nil
}

func scanAvailability(row pgx.Row) (*model.Availability, error) {
	var av model.Availability
	var rawSlots []byte

	err := row.Scan(
		&av.ID,
		&av.FacultyID,
		&av.EventID,
		&rawSlots,
		&av.Notes,
		&av.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Исторические кодировки списка слотов разбираются с деградацией
	// в пустой список, битая запись не валит выборку
	av.AvailableSlots = model.DecodeSlotList(rawSlots)
	return &av, nil
}
