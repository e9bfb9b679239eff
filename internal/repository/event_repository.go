package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unimeet/scheduler/internal/model"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// Create создаёт новое событие
func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	rawSlots, err := model.EncodeSlotList(event.Slots)
	if err != nil {
		return fmt.Errorf("encode slot list: %w", err)
	}

	query := `
		INSERT INTO events (name, date, slot_len, status, start_time, end_time, available_slots, min_faculty, max_faculty, auto_run)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err = r.pool.QueryRow(
		ctx, query,
		event.Name,
		event.Date,
		event.SlotLen,
		event.Status,
		event.StartTime,
		event.EndTime,
		rawSlots,
		event.MinFaculty,
		event.MaxFaculty,
		event.AutoRun,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	return nil
}

// Update обновляет событие
func (r *EventRepository) Update(ctx context.Context, event *model.Event) error {
	rawSlots, err := model.EncodeSlotList(event.Slots)
	if err != nil {
		return fmt.Errorf("encode slot list: %w", err)
	}

	query := `
		UPDATE events
		SET name = $1, date = $2, slot_len = $3, start_time = $4, end_time = $5,
		    available_slots = $6, min_faculty = $7, max_faculty = $8, auto_run = $9, updated_at = NOW()
		WHERE id = $10
	`

	tag, err := r.pool.Exec(
		ctx, query,
		event.Name,
		event.Date,
		event.SlotLen,
		event.StartTime,
		event.EndTime,
		rawSlots,
		event.MinFaculty,
		event.MaxFaculty,
		event.AutoRun,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event not found")
	}

	return nil
}

// GetByID получает событие по ID
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	query := `
		SELECT id, name, date, slot_len, status, start_time, end_time, available_slots, min_faculty, max_faculty, auto_run, created_at, updated_at
		FROM events
		WHERE id = $1
	`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event by id: %w", err)
	}

	return event, nil
}

// GetByStatus получает события в заданном статусе, новые первыми
func (r *EventRepository) GetByStatus(ctx context.Context, status model.EventStatus) ([]*model.Event, error) {
	query := `
		SELECT id, name, date, slot_len, status, start_time, end_time, available_slots, min_faculty, max_faculty, auto_run, created_at, updated_at
		FROM events
		WHERE status = $1
		ORDER BY date DESC, id
	`

	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("get events by status: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// UpdateStatus обновляет статус события
func (r *EventRepository) UpdateStatus(ctx context.Context, id int64, status model.EventStatus) error {
	query := `
		UPDATE events
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	tag, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event not found")
	}

	return nil
}

// scanEvent читает одну строку события, каталог слотов разбирается
// из любой исторической кодировки
func scanEvent(row pgx.Row) (*model.Event, error) {
	var event model.Event
	var rawSlots []byte

	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Date,
		&event.SlotLen,
		&event.Status,
		&event.StartTime,
		&event.EndTime,
		&rawSlots,
		&event.MinFaculty,
		&event.MaxFaculty,
		&event.AutoRun,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Slots = model.DecodeSlotList(rawSlots)
	return &event, nil
}
