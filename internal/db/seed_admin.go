package db

import (
	"context"
	"errors"

	"github.com/Nmomos/hedgehog-reservation/internal/config"
	"github.com/Nmomos/hedgehog-reservation/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser seeds a superuser account when ADMIN_EMAIL/ADMIN_PASSWORD
// are configured. Idempotent: does nothing if the email already exists.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	salt, hash, err := security.CreateSaltAndHash(cfg.AdminPassword)

	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	var adminID int64

	err = tx.QueryRow(ctx,
		`INSERT INTO users (username, email, email_verified, is_superuser, salt, password)
		 VALUES ($1, $2, TRUE, TRUE, $3, $4)
		 RETURNING id`,
		cfg.AdminUsername, cfg.AdminEmail, salt, hash,
	).Scan(&adminID)

	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `INSERT INTO profiles (user_id) VALUES ($1)`, adminID)

	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
