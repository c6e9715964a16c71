package profiles

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantbasket/quantbasket/internal/platform"
)

// ErrProfileNotFound indicates no profile exists for the user.
var ErrProfileNotFound = errors.New("profile not found")

// Repository persists user profiles.
type Repository interface {
	Create(ctx context.Context, profile platform.Profile) error
	Get(ctx context.Context, userID string) (platform.Profile, error)
	Save(ctx context.Context, profile platform.Profile) error
}

// PostgresRepository stores profiles in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a profile row.
func (r *PostgresRepository) Create(ctx context.Context, profile platform.Profile) error {
	userID, err := uuid.Parse(profile.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO profiles
        (user_id, full_name, phone_number, location, avatar_url, kyc_status, referral_code, wallet_connected, wallet_address, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		userID, profile.FullName, profile.PhoneNumber, profile.Location, profile.AvatarURL,
		profile.KYCStatus, profile.ReferralCode, profile.WalletConnected, profile.WalletAddress, profile.UpdatedAt.UTC())
	return err
}

// Get fetches the profile for a user.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (platform.Profile, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return platform.Profile{}, ErrProfileNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT user_id, full_name, phone_number, location, avatar_url, kyc_status,
        referral_code, wallet_connected, wallet_address, updated_at
        FROM profiles WHERE user_id = $1`, id)
	var (
		profile   platform.Profile
		uid       uuid.UUID
		updatedAt time.Time
	)
	if err := row.Scan(&uid, &profile.FullName, &profile.PhoneNumber, &profile.Location, &profile.AvatarURL,
		&profile.KYCStatus, &profile.ReferralCode, &profile.WalletConnected, &profile.WalletAddress, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return platform.Profile{}, ErrProfileNotFound
		}
		return platform.Profile{}, err
	}
	profile.UserID = uid.String()
	profile.UpdatedAt = updatedAt.UTC()
	return profile, nil
}

// Save overwrites the profile row.
func (r *PostgresRepository) Save(ctx context.Context, profile platform.Profile) error {
	id, err := uuid.Parse(profile.UserID)
	if err != nil {
		return ErrProfileNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE profiles SET full_name = $1, phone_number = $2, location = $3,
        avatar_url = $4, kyc_status = $5, referral_code = $6, wallet_connected = $7, wallet_address = $8, updated_at = $9
        WHERE user_id = $10`,
		profile.FullName, profile.PhoneNumber, profile.Location, profile.AvatarURL, profile.KYCStatus,
		profile.ReferralCode, profile.WalletConnected, profile.WalletAddress, profile.UpdatedAt.UTC(), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}
