package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
)

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func (r *TicketRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *TicketRepository) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	return r.fetchEvent(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
}

func (r *TicketRepository) GetEventForUpdate(ctx context.Context, id string) (domain.Event, error) {
	return r.fetchEvent(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id)
}

func (r *TicketRepository) fetchEvent(ctx context.Context, query, id string) (domain.Event, error) {
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

// RecordSale advances the sold counter and deposits the full payment in one
// statement, under the event row lock taken by the caller.
func (r *TicketRepository) RecordSale(ctx context.Context, eventID string, deposit int64) error {
	const stmt = `UPDATE events SET sold_tickets = sold_tickets + 1, pool = pool + $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, eventID, deposit)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrCapacityReached
		}
		return fmt.Errorf("record sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *TicketRepository) DepositPool(ctx context.Context, eventID string, amount int64) error {
	const stmt = `UPDATE events SET pool = pool + $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, eventID, amount)
	if err != nil {
		return fmt.Errorf("deposit pool: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// TakeFromPool withdraws an exact amount, refusing to drive the pool
// negative.
func (r *TicketRepository) TakeFromPool(ctx context.Context, eventID string, amount int64) error {
	const stmt = `UPDATE events SET pool = pool - $2 WHERE id = $1 AND pool >= $2`

	tag, err := r.exec(ctx, stmt, eventID, amount)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientPoolFunds
		}
		return fmt.Errorf("take from pool: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientPoolFunds
	}
	return nil
}

func (r *TicketRepository) CreateTicket(ctx context.Context, ticket domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (id, event_id, owner_account, status, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.exec(ctx, stmt,
		ticket.ID,
		ticket.EventID,
		ticket.Owner,
		ticket.Status,
		ticket.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) GetTicket(ctx context.Context, id string) (domain.Ticket, error) {
	return r.fetchTicket(ctx, `SELECT id, event_id, owner_account, status, created_at FROM tickets WHERE id = $1`, id)
}

func (r *TicketRepository) GetTicketForUpdate(ctx context.Context, id string) (domain.Ticket, error) {
	return r.fetchTicket(ctx, `SELECT id, event_id, owner_account, status, created_at FROM tickets WHERE id = $1 FOR UPDATE`, id)
}

func (r *TicketRepository) fetchTicket(ctx context.Context, query, id string) (domain.Ticket, error) {
	var t domain.Ticket
	var status string
	err := r.queryRow(ctx, query, id).Scan(&t.ID, &t.EventID, &t.Owner, &status, &t.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Ticket{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	t.Status = domain.TicketStatus(status)
	return t, nil
}

// DeleteTicket consumes the resource outright (destructive refund).
func (r *TicketRepository) DeleteTicket(ctx context.Context, id string) error {
	const stmt = `DELETE FROM tickets WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepository) MarkRefunded(ctx context.Context, id string) error {
	const stmt = `UPDATE tickets SET status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, domain.TicketStatusRefunded)
	if err != nil {
		return fmt.Errorf("mark refunded: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepository) UpdateTicketOwner(ctx context.Context, id, owner string) error {
	const stmt = `UPDATE tickets SET owner_account = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, owner)
	if err != nil {
		return fmt.Errorf("update ticket owner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepository) GetOrganizerCap(ctx context.Context, capID string) (domain.OrganizerCap, error) {
	const query = `SELECT id, event_id, owner_account, created_at FROM organizer_caps WHERE id = $1`

	var c domain.OrganizerCap
	err := r.queryRow(ctx, query, capID).Scan(&c.ID, &c.EventID, &c.Owner, &c.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) || err == pgx.ErrNoRows {
			return domain.OrganizerCap{}, domain.ErrCapNotFound
		}
		return domain.OrganizerCap{}, fmt.Errorf("get organizer cap: %w", err)
	}
	return c, nil
}

func (r *TicketRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *TicketRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
