package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *ProfileRepository) CreateProfile(ctx context.Context, p domain.Profile) error {
	const stmt = `
INSERT INTO profiles (id, owner_account, verified, reputation, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.exec(ctx, stmt, p.ID, p.Owner, p.Verified, p.Reputation, p.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetProfile(ctx context.Context, id string) (domain.Profile, error) {
	const query = `SELECT id, owner_account, verified, reputation, created_at FROM profiles WHERE id = $1`

	var p domain.Profile
	err := r.queryRow(ctx, query, id).Scan(&p.ID, &p.Owner, &p.Verified, &p.Reputation, &p.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Profile{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Profile{}, domain.ErrProfileNotFound
		}
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *ProfileRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	const stmt = `UPDATE profiles SET verified = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, verified)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepository) SetReputation(ctx context.Context, id string, score int64) error {
	const stmt = `UPDATE profiles SET reputation = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, score)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidReputation
		}
		return fmt.Errorf("set reputation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// AdminCapExists reports whether the presented credential is on record. A
// malformed key reads as absent, not as a caller error.
func (r *ProfileRepository) AdminCapExists(ctx context.Context, capID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM admin_caps WHERE id = $1)`

	var exists bool
	if err := r.queryRow(ctx, query, capID).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return false, nil
		}
		return false, fmt.Errorf("check admin cap: %w", err)
	}
	return exists, nil
}

// EnsureAdminCap returns the existing admin credential or stores the given
// one. The created flag tells the caller whether cap was used.
func (r *ProfileRepository) EnsureAdminCap(ctx context.Context, cap domain.AdminCap) (domain.AdminCap, bool, error) {
	var out domain.AdminCap
	created := false

	err := r.WithTx(ctx, func(txCtx context.Context) error {
		const query = `SELECT id, created_at FROM admin_caps ORDER BY created_at ASC LIMIT 1`
		err := r.queryRow(txCtx, query).Scan(&out.ID, &out.CreatedAt)
		if err == nil {
			return nil
		}
		if err != pgx.ErrNoRows {
			return fmt.Errorf("find admin cap: %w", err)
		}

		const stmt = `INSERT INTO admin_caps (id, created_at) VALUES ($1, $2)`
		if _, err := r.exec(txCtx, stmt, cap.ID, cap.CreatedAt); err != nil {
			return fmt.Errorf("create admin cap: %w", err)
		}
		out = cap
		created = true
		return nil
	})
	if err != nil {
		return domain.AdminCap{}, false, err
	}
	return out, created, nil
}

func (r *ProfileRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ProfileRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
