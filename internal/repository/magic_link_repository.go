package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/astrxnomo/agendaun/internal/models"
)

// ErrAlreadyUsed is returned when a magic link was consumed concurrently.
var ErrAlreadyUsed = errors.New("magic link already used")

// MagicLinkRepository stores single-use sign-in tokens.
type MagicLinkRepository struct {
	db *sqlx.DB
}

// NewMagicLinkRepository constructs the repository.
func NewMagicLinkRepository(db *sqlx.DB) *MagicLinkRepository {
	return &MagicLinkRepository{db: db}
}

// Create inserts a magic link. The caller assigns the id.
func (r *MagicLinkRepository) Create(ctx context.Context, link *models.MagicLink) error {
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO magic_links (id, email, secret_hash, redirect_to, expires_at, used_at, created_at)
VALUES (:id, :email, :secret_hash, :redirect_to, :expires_at, :used_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("create magic link: %w", err)
	}
	return nil
}

// FindByID fetches a magic link.
func (r *MagicLinkRepository) FindByID(ctx context.Context, id string) (*models.MagicLink, error) {
	const query = `SELECT id, email, secret_hash, redirect_to, expires_at, used_at, created_at FROM magic_links WHERE id = $1`
	var link models.MagicLink
	if err := r.db.GetContext(ctx, &link, query, id); err != nil {
		return nil, err
	}
	return &link, nil
}

// MarkUsed flags the link as consumed. Only one caller can win; the others get
// ErrAlreadyUsed.
func (r *MagicLinkRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE magic_links SET used_at = $2 WHERE id = $1 AND used_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("mark magic link used: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark magic link used: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyUsed
	}
	return nil
}

// DeleteExpired purges links that expired before cutoff.
func (r *MagicLinkRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM magic_links WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired magic links: %w", err)
	}
	return res.RowsAffected()
}
