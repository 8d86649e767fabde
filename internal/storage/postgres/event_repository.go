package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
)

const eventColumns = `id, name, description, ticket_price, total_tickets, sold_tickets, pool, starts_at, ends_at, cancelled, created_at`

func scanEvent(row pgx.Row) (domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Description,
		&e.TicketPrice,
		&e.TotalTickets,
		&e.SoldTickets,
		&e.Pool,
		&e.StartsAt,
		&e.EndsAt,
		&e.Cancelled,
		&e.CreatedAt,
	)
	return e, err
}

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *EventRepository) CreateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `
INSERT INTO events (id, name, description, ticket_price, total_tickets, sold_tickets, pool, starts_at, ends_at, cancelled, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.exec(ctx, stmt,
		event.ID,
		event.Name,
		event.Description,
		event.TicketPrice,
		event.TotalTickets,
		event.SoldTickets,
		event.Pool,
		event.StartsAt,
		event.EndsAt,
		event.Cancelled,
		event.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) CreateOrganizerCap(ctx context.Context, cap domain.OrganizerCap) error {
	const stmt = `
INSERT INTO organizer_caps (id, event_id, owner_account, created_at)
VALUES ($1, $2, $3, $4)`

	_, err := r.exec(ctx, stmt, cap.ID, cap.EventID, cap.Owner, cap.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("create organizer cap: %w", err)
	}
	return nil
}

func (r *EventRepository) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	return r.fetchEvent(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
}

func (r *EventRepository) GetEventForUpdate(ctx context.Context, id string) (domain.Event, error) {
	return r.fetchEvent(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id)
}

func (r *EventRepository) fetchEvent(ctx context.Context, query, id string) (domain.Event, error) {
	e, err := scanEvent(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Event{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (r *EventRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate events: %w", rows.Err())
	}
	return events, nil
}

func (r *EventRepository) UpdateDescription(ctx context.Context, id, description string) error {
	const stmt = `UPDATE events SET description = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, description)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update description: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) MarkCancelled(ctx context.Context, id string) error {
	const stmt = `UPDATE events SET cancelled = TRUE WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("mark cancelled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// DrainPool zeroes the pool. The caller reads the balance under the event
// row lock first; the drained amount is whatever that read saw.
func (r *EventRepository) DrainPool(ctx context.Context, id string) error {
	const stmt = `UPDATE events SET pool = 0 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("drain pool: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) GetOrganizerCap(ctx context.Context, capID string) (domain.OrganizerCap, error) {
	const query = `SELECT id, event_id, owner_account, created_at FROM organizer_caps WHERE id = $1`

	var c domain.OrganizerCap
	err := r.queryRow(ctx, query, capID).Scan(&c.ID, &c.EventID, &c.Owner, &c.CreatedAt)
	if err != nil {
		// A malformed cap key is indistinguishable from an unknown one.
		if isInvalidUUID(err) || err == pgx.ErrNoRows {
			return domain.OrganizerCap{}, domain.ErrCapNotFound
		}
		return domain.OrganizerCap{}, fmt.Errorf("get organizer cap: %w", err)
	}
	return c, nil
}

func (r *EventRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *EventRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
