package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saccokit/sacco-ledger/internal/apperrors"
	"github.com/saccokit/sacco-ledger/internal/core/domain"
	portsrepo "github.com/saccokit/sacco-ledger/internal/core/ports/repositories"
	"github.com/saccokit/sacco-ledger/internal/models"
	"github.com/saccokit/sacco-ledger/internal/utils/mapping"
)

const repaymentColumns = `repayment_id, loan_id, member_id, account_id, amount, fines_portion, interest_portion, principal_portion, reference, description, txn_date, is_voided, voided_at, void_reason, created_at, created_by, last_updated_at, last_updated_by`

type PgxRepaymentRepository struct {
	BaseRepository
}

// newPgxRepaymentRepository creates a new repository for repayments and
// their fine payments.
func newPgxRepaymentRepository(db DBConn) *PgxRepaymentRepository {
	return &PgxRepaymentRepository{BaseRepository{db: db}}
}

var _ portsrepo.RepaymentRepository = (*PgxRepaymentRepository)(nil)

func scanRepayment(row pgx.Row) (*models.Repayment, error) {
	var m models.Repayment
	err := row.Scan(
		&m.RepaymentID,
		&m.LoanID,
		&m.MemberID,
		&m.AccountID,
		&m.Amount,
		&m.FinesPortion,
		&m.InterestPortion,
		&m.PrincipalPortion,
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

// SaveRepayment inserts a repayment with its fine payment links.
func (r *PgxRepaymentRepository) SaveRepayment(ctx context.Context, repayment domain.Repayment, finePayments []domain.FinePayment) error {
	m := mapping.ToModelRepayment(repayment)

	query := `
		INSERT INTO repayments (` + repaymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := r.conn(ctx).Exec(ctx, query,
		m.RepaymentID,
		m.LoanID,
		m.MemberID,
		m.AccountID,
		m.Amount,
		m.FinesPortion,
		m.InterestPortion,
		m.PrincipalPortion,
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
			return fmt.Errorf("%w: repayment reference already used", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save repayment %s: %w", m.RepaymentID, err)
	}

	if len(finePayments) == 0 {
		return nil
	}

	fpQuery := `
		INSERT INTO fine_payments (fine_payment_id, repayment_id, fine_id, amount)
		VALUES ($1, $2, $3, $4);
	`
	batch := &pgx.Batch{}
	for _, fp := range finePayments {
		batch.Queue(fpQuery, uuid.NewString(), m.RepaymentID, fp.FineID, fp.Amount)
	}
	results := r.conn(ctx).SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert fine payment: %w", err)
		}
	}
	return nil
}

// UpdateRepayment rewrites a repayment's mutable columns and replaces its
// fine payment links.
func (r *PgxRepaymentRepository) UpdateRepayment(ctx context.Context, repayment domain.Repayment, finePayments []domain.FinePayment) error {
	m := mapping.ToModelRepayment(repayment)

	query := `
		UPDATE repayments
		SET account_id = $2, amount = $3, fines_portion = $4, interest_portion = $5,
		    principal_portion = $6, reference = $7, description = $8, txn_date = $9,
		    last_updated_at = $10, last_updated_by = $11
		WHERE repayment_id = $1;
	`
	tag, err := r.conn(ctx).Exec(ctx, query,
		m.RepaymentID,
		m.AccountID,
		m.Amount,
		m.FinesPortion,
		m.InterestPortion,
		m.PrincipalPortion,
		m.Reference,
		m.Description,
		m.TxnDate,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: repayment reference already used", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to update repayment %s: %w", m.RepaymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM fine_payments WHERE repayment_id = $1;`, m.RepaymentID); err != nil {
		return fmt.Errorf("failed to delete fine payments for repayment %s: %w", m.RepaymentID, err)
	}
	if len(finePayments) == 0 {
		return nil
	}

	fpQuery := `
		INSERT INTO fine_payments (fine_payment_id, repayment_id, fine_id, amount)
		VALUES ($1, $2, $3, $4);
	`
	batch := &pgx.Batch{}
	for _, fp := range finePayments {
		batch.Queue(fpQuery, uuid.NewString(), m.RepaymentID, fp.FineID, fp.Amount)
	}
	results := r.conn(ctx).SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert fine payment: %w", err)
		}
	}
	return nil
}

// FindRepaymentByID retrieves a repayment by its ID.
func (r *PgxRepaymentRepository) FindRepaymentByID(ctx context.Context, repaymentID string) (*domain.Repayment, error) {
	query := `SELECT ` + repaymentColumns + ` FROM repayments WHERE repayment_id = $1;`

	m, err := scanRepayment(r.conn(ctx).QueryRow(ctx, query, repaymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find repayment %s: %w", repaymentID, err)
	}
	repayment := mapping.ToDomainRepayment(*m)
	return &repayment, nil
}

// ListRepaymentsByLoan retrieves a loan's repayments oldest first.
func (r *PgxRepaymentRepository) ListRepaymentsByLoan(ctx context.Context, loanID string) ([]domain.Repayment, error) {
	query := `
		SELECT ` + repaymentColumns + `
		FROM repayments
		WHERE loan_id = $1
		ORDER BY txn_date, created_at;
	`
	rows, err := r.conn(ctx).Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list repayments for loan %s: %w", loanID, err)
	}
	defer rows.Close()

	var repayments []models.Repayment
	for rows.Next() {
		m, err := scanRepayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repayment row: %w", err)
		}
		repayments = append(repayments, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repayment rows: %w", err)
	}
	return mapping.ToDomainRepaymentSlice(repayments), nil
}

// FindFinePaymentsByRepayment retrieves the fine payments one repayment made.
func (r *PgxRepaymentRepository) FindFinePaymentsByRepayment(ctx context.Context, repaymentID string) ([]domain.FinePayment, error) {
	query := `SELECT fine_id, amount FROM fine_payments WHERE repayment_id = $1 ORDER BY fine_payment_id;`

	rows, err := r.conn(ctx).Query(ctx, query, repaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find fine payments for repayment %s: %w", repaymentID, err)
	}
	defer rows.Close()

	var payments []domain.FinePayment
	for rows.Next() {
		var fp domain.FinePayment
		if err := rows.Scan(&fp.FineID, &fp.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan fine payment row: %w", err)
		}
		payments = append(payments, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fine payment rows: %w", err)
	}
	return payments, nil
}

// MarkRepaymentVoided flags a repayment voided with the reason and timestamp.
func (r *PgxRepaymentRepository) MarkRepaymentVoided(ctx context.Context, repaymentID string, reason string, userID string, now time.Time) error {
	query := `
		UPDATE repayments
		SET is_voided = TRUE, voided_at = $2, void_reason = $3, last_updated_at = $2, last_updated_by = $4
		WHERE repayment_id = $1 AND NOT is_voided;
	`
	tag, err := r.conn(ctx).Exec(ctx, query, repaymentID, now, reason, userID)
	if err != nil {
		return fmt.Errorf("failed to void repayment %s: %w", repaymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: repayment %s is already voided or missing", apperrors.ErrConflict, repaymentID)
	}
	return nil
}

// DeleteRepayment removes a repayment row and its fine payment links.
func (r *PgxRepaymentRepository) DeleteRepayment(ctx context.Context, repaymentID string) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM fine_payments WHERE repayment_id = $1;`, repaymentID); err != nil {
		return fmt.Errorf("failed to delete fine payments for repayment %s: %w", repaymentID, err)
	}

	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM repayments WHERE repayment_id = $1;`, repaymentID)
	if err != nil {
		return fmt.Errorf("failed to delete repayment %s: %w", repaymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
