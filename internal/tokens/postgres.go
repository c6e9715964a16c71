package tokens

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantbasket/quantbasket/internal/platform"
)

// PostgresEngine persists token holdings as append-only mutation entries in
// PostgreSQL. Balances are the per-symbol sums of those entries.
type PostgresEngine struct {
	db *pgxpool.Pool
}

// NewPostgresEngine constructs a Postgres-backed token engine.
func NewPostgresEngine(db *pgxpool.Pool) *PostgresEngine {
	return &PostgresEngine{db: db}
}

// Balances returns the full ledger for a holder.
func (e *PostgresEngine) Balances(ctx context.Context, userID string) (platform.TokenLedger, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q", userID)
	}
	rows, err := e.db.Query(ctx, `SELECT category, symbol, SUM(amount)
        FROM token_entries WHERE user_id = $1 GROUP BY category, symbol`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ledger := platform.TokenLedger{}
	for rows.Next() {
		var (
			rawCategory string
			symbol      string
			amount      float64
		)
		if err := rows.Scan(&rawCategory, &symbol, &amount); err != nil {
			return nil, err
		}
		category, err := platform.ParseCategory(rawCategory)
		if err != nil {
			return nil, err
		}
		bucket, ok := ledger[category]
		if !ok {
			bucket = make(map[string]float64)
			ledger[category] = bucket
		}
		bucket[symbol] = amount
	}
	return ledger, rows.Err()
}

// Credit appends a positive entry for the symbol.
func (e *PostgresEngine) Credit(ctx context.Context, userID string, category platform.Category, symbol string, amount float64, kind, clientMutID string) (MutationResult, error) {
	return e.mutate(ctx, userID, category, symbol, amount, kind, clientMutID, false)
}

// Debit appends a negative entry for the symbol, refusing to overdraw.
func (e *PostgresEngine) Debit(ctx context.Context, userID string, category platform.Category, symbol string, amount float64, kind, clientMutID string) (MutationResult, error) {
	return e.mutate(ctx, userID, category, symbol, amount, kind, clientMutID, true)
}

func (e *PostgresEngine) mutate(ctx context.Context, userID string, category platform.Category, symbol string, amount float64, kind, clientMutID string, debit bool) (MutationResult, error) {
	if amount <= 0 {
		return MutationResult{}, fmt.Errorf("amount must be positive")
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return MutationResult{}, fmt.Errorf("invalid user id %q", userID)
	}

	tx, err := e.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return MutationResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	const existingQuery = `SELECT id FROM token_mutations WHERE client_mut_id = $1 AND kind = $2`
	var existingID uuid.UUID
	if err := tx.QueryRow(ctx, existingQuery, clientMutID, kind).Scan(&existingID); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return MutationResult{}, err
		}
	} else {
		balance, balErr := symbolBalance(ctx, tx, uid, category, symbol)
		if balErr != nil {
			return MutationResult{}, balErr
		}
		return MutationResult{MutationID: existingID.String(), Balance: balance}, ErrDuplicateMutation
	}

	delta := amount
	if debit {
		balance, err := symbolBalance(ctx, tx, uid, category, symbol)
		if err != nil {
			return MutationResult{}, err
		}
		if balance < amount {
			return MutationResult{}, ErrInsufficientBalance
		}
		delta = -amount
	}

	mutID := uuid.New()
	if _, err := tx.Exec(ctx, `INSERT INTO token_mutations (id, client_mut_id, kind) VALUES ($1, $2, $3)`, mutID, clientMutID, kind); err != nil {
		return MutationResult{}, err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO token_entries (id, mutation_id, user_id, category, symbol, amount)
        VALUES ($1, $2, $3, $4, $5, $6)`, uuid.New(), mutID, uid, string(category), symbol, delta); err != nil {
		return MutationResult{}, err
	}

	balance, err := symbolBalance(ctx, tx, uid, category, symbol)
	if err != nil {
		return MutationResult{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return MutationResult{}, err
	}

	return MutationResult{MutationID: mutID.String(), Balance: balance}, nil
}

// Reverse appends a compensating entry for a debited mutation and frees its
// client mutation id. The ledger stays append-only; the original record is
// re-keyed rather than deleted so its entries keep their reference.
func (e *PostgresEngine) Reverse(ctx context.Context, userID string, category platform.Category, symbol string, amount float64, kind, clientMutID string) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q", userID)
	}

	tx, err := e.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var originalID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM token_mutations WHERE client_mut_id = $1 AND kind = $2`, clientMutID, kind).Scan(&originalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE token_mutations SET client_mut_id = client_mut_id || ':reversed:' || id WHERE id = $1`, originalID); err != nil {
		return err
	}

	reversalID := uuid.New()
	if _, err := tx.Exec(ctx, `INSERT INTO token_mutations (id, client_mut_id, kind) VALUES ($1, $2, $3)`,
		reversalID, clientMutID+":reversal", kind+"_reversal"); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO token_entries (id, mutation_id, user_id, category, symbol, amount)
        VALUES ($1, $2, $3, $4, $5, $6)`, uuid.New(), reversalID, uid, string(category), symbol, amount); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func symbolBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID, category platform.Category, symbol string) (float64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM token_entries
        WHERE user_id = $1 AND category = $2 AND symbol = $3`
	var balance float64
	if err := tx.QueryRow(ctx, query, userID, string(category), symbol).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return balance, nil
}
