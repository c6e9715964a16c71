package coins

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantbasket/quantbasket/internal/platform"
)

// ErrCoinNotFound indicates the catalog has no coin with the identifier.
var ErrCoinNotFound = errors.New("coin not found")

// Repository persists the coin catalog and per-user favorites.
type Repository interface {
	List(ctx context.Context) ([]platform.Coin, error)
	Get(ctx context.Context, coinID string) (platform.Coin, error)
	Insert(ctx context.Context, coin platform.Coin) error
	Favorites(ctx context.Context, userID string) ([]platform.Coin, error)
	AddFavorite(ctx context.Context, userID, coinID string) error
	RemoveFavorite(ctx context.Context, userID, coinID string) error
}

// PostgresRepository stores the catalog in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed coin repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const coinColumns = `id, symbol, name, category, price, created_at`

// List returns the full catalog ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]platform.Coin, error) {
	rows, err := r.db.Query(ctx, `SELECT `+coinColumns+` FROM coins ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCoins(rows)
}

// Get fetches a single coin.
func (r *PostgresRepository) Get(ctx context.Context, coinID string) (platform.Coin, error) {
	id, err := uuid.Parse(coinID)
	if err != nil {
		return platform.Coin{}, ErrCoinNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+coinColumns+` FROM coins WHERE id = $1`, id)
	coin, err := scanCoin(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return platform.Coin{}, ErrCoinNotFound
	}
	return coin, err
}

// Insert adds a coin to the catalog.
func (r *PostgresRepository) Insert(ctx context.Context, coin platform.Coin) error {
	id, err := uuid.Parse(coin.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO coins (id, symbol, name, category, price, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		id, coin.Symbol, coin.Name, string(coin.Category), coin.Price, coin.CreatedAt.UTC())
	return err
}

// Favorites lists the coins a user has starred.
func (r *PostgresRepository) Favorites(ctx context.Context, userID string) ([]platform.Coin, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT c.id, c.symbol, c.name, c.category, c.price, c.created_at
        FROM coins c INNER JOIN favorites f ON f.coin_id = c.id
        WHERE f.user_id = $1 ORDER BY f.created_at`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCoins(rows)
}

// AddFavorite stars a coin for the user. Starring twice is a no-op.
func (r *PostgresRepository) AddFavorite(ctx context.Context, userID, coinID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ErrCoinNotFound
	}
	cid, err := uuid.Parse(coinID)
	if err != nil {
		return ErrCoinNotFound
	}
	_, err = r.db.Exec(ctx, `INSERT INTO favorites (user_id, coin_id, created_at) VALUES ($1, $2, $3)
        ON CONFLICT (user_id, coin_id) DO NOTHING`, uid, cid, time.Now().UTC())
	return err
}

// RemoveFavorite unstars a coin for the user.
func (r *PostgresRepository) RemoveFavorite(ctx context.Context, userID, coinID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}
	cid, err := uuid.Parse(coinID)
	if err != nil {
		return nil
	}
	_, err = r.db.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND coin_id = $2`, uid, cid)
	return err
}

func scanCoin(row pgx.Row) (platform.Coin, error) {
	var (
		coin        platform.Coin
		id          uuid.UUID
		rawCategory string
		createdAt   time.Time
	)
	if err := row.Scan(&id, &coin.Symbol, &coin.Name, &rawCategory, &coin.Price, &createdAt); err != nil {
		return platform.Coin{}, err
	}
	category, err := platform.ParseCategory(rawCategory)
	if err != nil {
		return platform.Coin{}, err
	}
	coin.ID = id.String()
	coin.Category = category
	coin.CreatedAt = createdAt.UTC()
	return coin, nil
}

func scanCoins(rows pgx.Rows) ([]platform.Coin, error) {
	var coins []platform.Coin
	for rows.Next() {
		coin, err := scanCoin(rows)
		if err != nil {
			return nil, err
		}
		coins = append(coins, coin)
	}
	return coins, rows.Err()
}
