package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saccokit/sacco-ledger/internal/apperrors"
	"github.com/saccokit/sacco-ledger/internal/core/domain"
	portsrepo "github.com/saccokit/sacco-ledger/internal/core/ports/repositories"
	"github.com/saccokit/sacco-ledger/internal/models"
	"github.com/saccokit/sacco-ledger/internal/utils/mapping"
)

const withdrawalColumns = `withdrawal_id, member_id, account_id, withdrawal_type, amount, reference, description, txn_date, is_voided, voided_at, void_reason, created_at, created_by, last_updated_at, last_updated_by`

type PgxWithdrawalRepository struct {
	BaseRepository
}

// newPgxWithdrawalRepository creates a new repository for withdrawals.
func newPgxWithdrawalRepository(db DBConn) *PgxWithdrawalRepository {
	return &PgxWithdrawalRepository{BaseRepository{db: db}}
}

var _ portsrepo.WithdrawalRepository = (*PgxWithdrawalRepository)(nil)

func scanWithdrawal(row pgx.Row) (*models.Withdrawal, error) {
	var m models.Withdrawal
	err := row.Scan(
		&m.WithdrawalID,
		&m.MemberID,
		&m.AccountID,
		&m.WithdrawalType,
		&m.Amount,
		&m.Reference,
		&m.Description,
		&m.TxnDate,
		&m.IsVoided,
		&m.VoidedAt,
		&m.VoidReason,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveWithdrawal inserts a new withdrawal.
func (r *PgxWithdrawalRepository) SaveWithdrawal(ctx context.Context, withdrawal domain.Withdrawal) error {
	m := mapping.ToModelWithdrawal(withdrawal)

	query := `
		INSERT INTO withdrawals (` + withdrawalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.conn(ctx).Exec(ctx, query,
		m.WithdrawalID,
		m.MemberID,
		m.AccountID,
		m.WithdrawalType,
		m.Amount,
		m.Reference,
		m.Description,
		m.TxnDate,
		m.IsVoided,
		m.VoidedAt,
		m.VoidReason,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: withdrawal reference already used", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save withdrawal %s: %w", m.WithdrawalID, err)
	}
	return nil
}

// UpdateWithdrawal updates a withdrawal's mutable fields.
func (r *PgxWithdrawalRepository) UpdateWithdrawal(ctx context.Context, withdrawal domain.Withdrawal) error {
	m := mapping.ToModelWithdrawal(withdrawal)

	query := `
		UPDATE withdrawals
		SET member_id = $2, account_id = $3, amount = $4, description = $5, txn_date = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE withdrawal_id = $1;
	`
	tag, err := r.conn(ctx).Exec(ctx, query,
		m.WithdrawalID,
		m.MemberID,
		m.AccountID,
		m.Amount,
		m.Description,
		m.TxnDate,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update withdrawal %s: %w", m.WithdrawalID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindWithdrawalByID retrieves a withdrawal by its ID.
func (r *PgxWithdrawalRepository) FindWithdrawalByID(ctx context.Context, withdrawalID string) (*domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE withdrawal_id = $1;`

	m, err := scanWithdrawal(r.conn(ctx).QueryRow(ctx, query, withdrawalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find withdrawal %s: %w", withdrawalID, err)
	}
	withdrawal := mapping.ToDomainWithdrawal(*m)
	return &withdrawal, nil
}

// ListWithdrawals retrieves withdrawals newest first, optionally for one member.
func (r *PgxWithdrawalRepository) ListWithdrawals(ctx context.Context, memberID *string, limit int, offset int) ([]domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals`
	args := []any{}
	if memberID != nil {
		query += ` WHERE member_id = $1`
		args = append(args, *memberID)
	}
	query += fmt.Sprintf(` ORDER BY txn_date DESC, created_at DESC LIMIT $%d OFFSET $%d;`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	defer rows.Close()

	var withdrawals []models.Withdrawal
	for rows.Next() {
		m, err := scanWithdrawal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal row: %w", err)
		}
		withdrawals = append(withdrawals, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating withdrawal rows: %w", err)
	}
	return mapping.ToDomainWithdrawalSlice(withdrawals), nil
}

// MarkWithdrawalVoided flags a withdrawal voided with the reason and timestamp.
func (r *PgxWithdrawalRepository) MarkWithdrawalVoided(ctx context.Context, withdrawalID string, reason string, userID string, now time.Time) error {
	query := `
		UPDATE withdrawals
		SET is_voided = TRUE, voided_at = $2, void_reason = $3, last_updated_at = $2, last_updated_by = $4
		WHERE withdrawal_id = $1 AND NOT is_voided;
	`
	tag, err := r.conn(ctx).Exec(ctx, query, withdrawalID, now, reason, userID)
	if err != nil {
		return fmt.Errorf("failed to void withdrawal %s: %w", withdrawalID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: withdrawal %s is already voided or missing", apperrors.ErrConflict, withdrawalID)
	}
	return nil
}

// DeleteWithdrawal removes a withdrawal row.
func (r *PgxWithdrawalRepository) DeleteWithdrawal(ctx context.Context, withdrawalID string) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM withdrawals WHERE withdrawal_id = $1;`, withdrawalID)
	if err != nil {
		return fmt.Errorf("failed to delete withdrawal %s: %w", withdrawalID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
