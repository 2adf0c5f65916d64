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

const depositColumns = `deposit_id, member_id, account_id, deposit_type, amount, reference, description, txn_date, is_voided, voided_at, void_reason, created_at, created_by, last_updated_at, last_updated_by`

type PgxDepositRepository struct {
	BaseRepository
}

// newPgxDepositRepository creates a new repository for deposits.
func newPgxDepositRepository(db DBConn) *PgxDepositRepository {
	return &PgxDepositRepository{BaseRepository{db: db}}
}

var _ portsrepo.DepositRepository = (*PgxDepositRepository)(nil)

func scanDeposit(row pgx.Row) (*models.Deposit, error) {
	var m models.Deposit
	err := row.Scan(
		&m.DepositID,
		&m.MemberID,
		&m.AccountID,
		&m.DepositType,
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

// SaveDeposit inserts a new deposit.
func (r *PgxDepositRepository) SaveDeposit(ctx context.Context, deposit domain.Deposit) error {
	m := mapping.ToModelDeposit(deposit)

	query := `
		INSERT INTO deposits (` + depositColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.conn(ctx).Exec(ctx, query,
		m.DepositID,
		m.MemberID,
		m.AccountID,
		m.DepositType,
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
			return fmt.Errorf("%w: deposit reference already used", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save deposit %s: %w", m.DepositID, err)
	}
	return nil
}

// UpdateDeposit updates a deposit's mutable fields.
func (r *PgxDepositRepository) UpdateDeposit(ctx context.Context, deposit domain.Deposit) error {
	m := mapping.ToModelDeposit(deposit)

	query := `
		UPDATE deposits
		SET member_id = $2, account_id = $3, amount = $4, description = $5, txn_date = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE deposit_id = $1;
	`
	tag, err := r.conn(ctx).Exec(ctx, query,
		m.DepositID,
		m.MemberID,
		m.AccountID,
		m.Amount,
		m.Description,
		m.TxnDate,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update deposit %s: %w", m.DepositID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindDepositByID retrieves a deposit by its ID.
func (r *PgxDepositRepository) FindDepositByID(ctx context.Context, depositID string) (*domain.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE deposit_id = $1;`

	m, err := scanDeposit(r.conn(ctx).QueryRow(ctx, query, depositID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find deposit %s: %w", depositID, err)
	}
	deposit := mapping.ToDomainDeposit(*m)
	return &deposit, nil
}

// ListDeposits retrieves deposits newest first, optionally for one member.
func (r *PgxDepositRepository) ListDeposits(ctx context.Context, memberID *string, limit int, offset int) ([]domain.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits`
	args := []any{}
	if memberID != nil {
		query += ` WHERE member_id = $1`
		args = append(args, *memberID)
	}
	query += fmt.Sprintf(` ORDER BY txn_date DESC, created_at DESC LIMIT $%d OFFSET $%d;`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list deposits: %w", err)
	}
	defer rows.Close()

	var deposits []models.Deposit
	for rows.Next() {
		m, err := scanDeposit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit row: %w", err)
		}
		deposits = append(deposits, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deposit rows: %w", err)
	}
	return mapping.ToDomainDepositSlice(deposits), nil
}

// MarkDepositVoided flags a deposit voided with the reason and timestamp.
func (r *PgxDepositRepository) MarkDepositVoided(ctx context.Context, depositID string, reason string, userID string, now time.Time) error {
	query := `
		UPDATE deposits
		SET is_voided = TRUE, voided_at = $2, void_reason = $3, last_updated_at = $2, last_updated_by = $4
		WHERE deposit_id = $1 AND NOT is_voided;
	`
	tag, err := r.conn(ctx).Exec(ctx, query, depositID, now, reason, userID)
	if err != nil {
		return fmt.Errorf("failed to void deposit %s: %w", depositID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: deposit %s is already voided or missing", apperrors.ErrConflict, depositID)
	}
	return nil
}

// DeleteDeposit removes a deposit row.
func (r *PgxDepositRepository) DeleteDeposit(ctx context.Context, depositID string) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM deposits WHERE deposit_id = $1;`, depositID)
	if err != nil {
		return fmt.Errorf("failed to delete deposit %s: %w", depositID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
