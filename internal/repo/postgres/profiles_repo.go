package postgres

import (
	"context"
	"errors"

	"github.com/Nmomos/hedgehog-reservation/internal/domain/profile"
	"github.com/Nmomos/hedgehog-reservation/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileColumns = `p.id, p.user_id, p.full_name, p.phone_number, p.bio, p.image,
	 u.username, u.email, p.created_at, p.updated_at`

type ProfilesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProfilesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProfilesRepo {
	return &ProfilesRepo{pool: pool, prom: prom}
}

func (r *ProfilesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanProfile(row pgx.Row) (profile.Profile, error) {
	var p profile.Profile

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.FullName,
		&p.PhoneNumber,
		&p.Bio,
		&p.Image,
		&p.Username,
		&p.Email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}

		return profile.Profile{}, err
	}

	return p, nil
}

func (r *ProfilesRepo) GetByUsername(ctx context.Context, username string) (profile.Profile, error) {
	var p profile.Profile
	var err error

	err = r.observe("profiles.get_by_username", func() error {
		p, err = scanProfile(r.pool.QueryRow(
			ctx,
			`SELECT `+profileColumns+`
			 FROM profiles p
			 JOIN users u ON u.id = p.user_id
			 WHERE u.username = $1`,
			username,
		))
		return err
	})

	return p, err
}

func (r *ProfilesRepo) GetByUserID(ctx context.Context, userID int64) (profile.Profile, error) {
	var p profile.Profile
	var err error

	err = r.observe("profiles.get_by_user_id", func() error {
		p, err = scanProfile(r.pool.QueryRow(
			ctx,
			`SELECT `+profileColumns+`
			 FROM profiles p
			 JOIN users u ON u.id = p.user_id
			 WHERE p.user_id = $1`,
			userID,
		))
		return err
	})

	return p, err
}

// UpdateForUser applies a partial update to the caller's own profile.
// COALESCE keeps the stored value wherever the patch field is nil.
func (r *ProfilesRepo) UpdateForUser(ctx context.Context, userID int64, req profile.UpdateRequest) (profile.Profile, error) {
	var p profile.Profile
	var err error

	err = r.observe("profiles.update_for_user", func() error {
		p, err = scanProfile(r.pool.QueryRow(
			ctx,
			`UPDATE profiles p
				SET full_name    = COALESCE($2, p.full_name),
					phone_number = COALESCE($3, p.phone_number),
					bio          = COALESCE($4, p.bio),
					image        = COALESCE($5, p.image)
			 FROM users u
			 WHERE p.user_id = $1 AND u.id = p.user_id
			 RETURNING `+profileColumns,
			userID, req.FullName, req.PhoneNumber, req.Bio, req.Image,
		))
		return err
	})

	return p, err
}
