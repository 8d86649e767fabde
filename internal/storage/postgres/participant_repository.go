package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
)

type ParticipantRepository struct {
	pool *pgxpool.Pool
}

func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

func (r *ParticipantRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *ParticipantRepository) CreateParticipant(ctx context.Context, p domain.Participant) error {
	const stmt = `
INSERT INTO participants (id, owner_account, created_at)
VALUES ($1, $2, $3)`

	_, err := r.exec(ctx, stmt, p.ID, p.Owner, p.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

func (r *ParticipantRepository) GetParticipant(ctx context.Context, id string) (domain.Participant, error) {
	return r.fetchParticipant(ctx, `SELECT id, owner_account, created_at FROM participants WHERE id = $1`, id)
}

// GetParticipantForUpdate locks the participant row, serializing list
// mutations for one participant.
func (r *ParticipantRepository) GetParticipantForUpdate(ctx context.Context, id string) (domain.Participant, error) {
	return r.fetchParticipant(ctx, `SELECT id, owner_account, created_at FROM participants WHERE id = $1 FOR UPDATE`, id)
}

func (r *ParticipantRepository) fetchParticipant(ctx context.Context, query, id string) (domain.Participant, error) {
	var p domain.Participant
	err := r.queryRow(ctx, query, id).Scan(&p.ID, &p.Owner, &p.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Participant{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Participant{}, domain.ErrParticipantNotFound
		}
		return domain.Participant{}, fmt.Errorf("get participant: %w", err)
	}

	registered, err := r.listRegistrations(ctx, id)
	if err != nil {
		return domain.Participant{}, err
	}
	p.Registered = registered

	notifications, err := r.listNotifications(ctx, id)
	if err != nil {
		return domain.Participant{}, err
	}
	p.Notifications = notifications

	return p, nil
}

func (r *ParticipantRepository) listRegistrations(ctx context.Context, participantID string) ([]string, error) {
	const query = `
SELECT event_id
FROM participant_registrations
WHERE participant_id = $1
ORDER BY id ASC`

	rows, err := r.query(ctx, query, participantID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var eventID string
		if err := rows.Scan(&eventID); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, eventID)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate registrations: %w", rows.Err())
	}
	return out, nil
}

func (r *ParticipantRepository) listNotifications(ctx context.Context, participantID string) ([]string, error) {
	const query = `
SELECT message
FROM participant_notifications
WHERE participant_id = $1
ORDER BY id ASC`

	rows, err := r.query(ctx, query, participantID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var message string
		if err := rows.Scan(&message); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, message)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate notifications: %w", rows.Err())
	}
	return out, nil
}

// FindEventName resolves an event's display name, doubling as the existence
// check for registration paths.
func (r *ParticipantRepository) FindEventName(ctx context.Context, eventID string) (string, error) {
	const query = `SELECT name FROM events WHERE id = $1`

	var name string
	err := r.queryRow(ctx, query, eventID).Scan(&name)
	if err != nil {
		if isInvalidUUID(err) {
			return "", domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return "", domain.ErrEventNotFound
		}
		return "", fmt.Errorf("find event name: %w", err)
	}
	return name, nil
}

// AddRegistration appends unconditionally; duplicate checking is the
// caller's decision, matching the two divergent registration paths.
func (r *ParticipantRepository) AddRegistration(ctx context.Context, participantID, eventID string, at time.Time) error {
	const stmt = `
INSERT INTO participant_registrations (participant_id, event_id, created_at)
VALUES ($1, $2, $3)`

	_, err := r.exec(ctx, stmt, participantID, eventID, at)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("add registration: %w", err)
	}
	return nil
}

func (r *ParticipantRepository) AppendNotification(ctx context.Context, participantID, message string, at time.Time) error {
	const stmt = `
INSERT INTO participant_notifications (participant_id, message, created_at)
VALUES ($1, $2, $3)`

	_, err := r.exec(ctx, stmt, participantID, message, at)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrParticipantNotFound
		}
		return fmt.Errorf("append notification: %w", err)
	}
	return nil
}

func (r *ParticipantRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ParticipantRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *ParticipantRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
