package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nevermarine/city-backend/internal/domain/events"
)

type EventRepository struct {
	db queryer
}

const eventColumns = `id, title, description, location, starts_at, ends_at, created_at, updated_at`

func scanEvent(row pgx.Row) (events.Event, error) {
	var event events.Event
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.StartsAt,
		&event.EndsAt,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	return event, err
}

func (r *EventRepository) Create(ctx context.Context, event events.Event) (events.Event, error) {
	created, err := scanEvent(r.db.QueryRow(ctx, `
INSERT INTO events (id, title, description, location, starts_at, ends_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+eventColumns,
		event.ID, event.Title, event.Description, event.Location, event.StartsAt, event.EndsAt,
	))
	if err != nil {
		return events.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return created, nil
}

func (r *EventRepository) Get(ctx context.Context, id string) (events.Event, error) {
	event, err := scanEvent(r.db.QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) List(ctx context.Context) ([]events.Event, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 ORDER BY starts_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := make([]events.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

func (r *EventRepository) Update(ctx context.Context, id string, params events.UpdateParams) (events.Event, error) {
	event, err := scanEvent(r.db.QueryRow(ctx, `
UPDATE events
   SET title       = COALESCE($2, title),
       description = COALESCE($3, description),
       location    = COALESCE($4, location),
       starts_at   = COALESCE($5, starts_at),
       ends_at     = COALESCE($6, ends_at),
       updated_at  = now()
 WHERE id = $1
RETURNING `+eventColumns,
		id, params.Title, params.Description, params.Location, params.StartsAt, params.EndsAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}
