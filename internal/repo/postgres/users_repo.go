package postgres

import (
	"context"
	"errors"

	"github.com/Nmomos/hedgehog-reservation/internal/domain/user"
	"github.com/Nmomos/hedgehog-reservation/internal/observability"
	"github.com/Nmomos/hedgehog-reservation/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, email_verified, password,
	 salt, is_active, is_superuser, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.EmailVerified,
		&u.PasswordHash,
		&u.Salt,
		&u.IsActive,
		&u.IsSuperuser,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_email", func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`,
			email,
		))
		return err
	})

	return u, err
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_username", func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE username = $1`,
			username,
		))
		return err
	})

	return u, err
}

// Register creates a user plus their empty companion profile in one
// transaction. Friendly uniqueness checks run first so the common duplicate
// case gets a clean conflict error; the unique constraints still back-stop a
// concurrent registration race, and a violation from the insert maps to the
// same errors.
func (r *UsersRepo) Register(ctx context.Context, req user.CreateRequest) (user.User, error) {
	_, err := r.GetByEmail(ctx, req.Email)

	if err == nil {
		return user.User{}, user.ErrEmailTaken
	}

	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}

	_, err = r.GetByUsername(ctx, req.Username)

	if err == nil {
		return user.User{}, user.ErrUsernameTaken
	}

	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}

	salt, hash, err := security.CreateSaltAndHash(req.Password)

	if err != nil {
		return user.User{}, err
	}

	var created user.User

	err = r.observe("users.register", func() error {
		tx, err := r.pool.Begin(ctx)

		if err != nil {
			return err
		}

		defer func() { _ = tx.Rollback(ctx) }()

		created, err = scanUser(tx.QueryRow(
			ctx,
			`INSERT INTO users (username, email, password, salt)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+userColumns,
			req.Username, req.Email, hash, salt,
		))

		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `INSERT INTO profiles (user_id) VALUES ($1)`, created.ID)

		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			// lost a race against a concurrent registration
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.ConstraintName == "users_username_key" {
				return user.User{}, user.ErrUsernameTaken
			}
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return created, nil
}

// Authenticate looks the user up by email and verifies the password against
// the stored salt+hash. Unknown email and bad password are indistinguishable
// to the caller.
func (r *UsersRepo) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	u, err := r.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, user.ErrInvalidCredentials
		}

		return user.User{}, err
	}

	if !security.VerifyPassword(password, u.Salt, u.PasswordHash) {
		return user.User{}, user.ErrInvalidCredentials
	}

	return u, nil
}
