package postgres

import (
	"context"
	"errors"

	"github.com/Nmomos/hedgehog-reservation/internal/domain/hedgehog"
	"github.com/Nmomos/hedgehog-reservation/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const hedgehogColumns = `id, name, description, age, color_type, owner, created_at, updated_at`

type HedgehogsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewHedgehogsRepo(pool *pgxpool.Pool, prom *observability.Prom) *HedgehogsRepo {
	return &HedgehogsRepo{pool: pool, prom: prom}
}

func (r *HedgehogsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanHedgehog(row pgx.Row) (hedgehog.Hedgehog, error) {
	var h hedgehog.Hedgehog

	err := row.Scan(
		&h.ID,
		&h.Name,
		&h.Description,
		&h.Age,
		&h.ColorType,
		&h.Owner,
		&h.CreatedAt,
		&h.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return hedgehog.Hedgehog{}, hedgehog.ErrNotFound
		}

		return hedgehog.Hedgehog{}, err
	}

	return h, nil
}

// Create inserts a row owned by the authenticated caller. Owner always comes
// from the verified identity, never the payload.
func (r *HedgehogsRepo) Create(ctx context.Context, req hedgehog.CreateRequest, ownerID int64) (hedgehog.Hedgehog, error) {
	var h hedgehog.Hedgehog
	var err error

	err = r.observe("hedgehogs.create", func() error {
		h, err = scanHedgehog(r.pool.QueryRow(
			ctx,
			`INSERT INTO hedgehogs (name, description, age, color_type, owner)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING `+hedgehogColumns,
			req.Name, req.Description, req.Age, req.ColorType, ownerID,
		))
		return err
	})

	return h, err
}

func (r *HedgehogsRepo) GetByID(ctx context.Context, id int64) (hedgehog.Hedgehog, error) {
	var h hedgehog.Hedgehog
	var err error

	err = r.observe("hedgehogs.get_by_id", func() error {
		h, err = scanHedgehog(r.pool.QueryRow(
			ctx,
			`SELECT `+hedgehogColumns+` FROM hedgehogs WHERE id = $1`,
			id,
		))
		return err
	})

	return h, err
}

func (r *HedgehogsRepo) ListForOwner(ctx context.Context, ownerID int64) ([]hedgehog.Hedgehog, error) {
	var out []hedgehog.Hedgehog

	err := r.observe("hedgehogs.list_for_owner", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT `+hedgehogColumns+` FROM hedgehogs WHERE owner = $1 ORDER BY id ASC`,
			ownerID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]hedgehog.Hedgehog, 0)

		for rows.Next() {
			h, err := scanHedgehog(rows)

			if err != nil {
				return err
			}

			out = append(out, h)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// Update persists a row already merged with the patch by the domain layer.
// Owner and created_at are preserved; updated_at comes from the DB trigger.
func (r *HedgehogsRepo) Update(ctx context.Context, merged hedgehog.Hedgehog) (hedgehog.Hedgehog, error) {
	var h hedgehog.Hedgehog
	var err error

	err = r.observe("hedgehogs.update", func() error {
		h, err = scanHedgehog(r.pool.QueryRow(
			ctx,
			`UPDATE hedgehogs
				SET name = $2,
					description = $3,
					age = $4,
					color_type = $5
			 WHERE id = $1
			 RETURNING `+hedgehogColumns,
			merged.ID, merged.Name, merged.Description, merged.Age, merged.ColorType,
		))
		return err
	})

	return h, err
}

// Delete removes the row and returns the deleted id.
func (r *HedgehogsRepo) Delete(ctx context.Context, id int64) (int64, error) {
	var deleted int64

	err := r.observe("hedgehogs.delete", func() error {
		err := r.pool.QueryRow(
			ctx,
			`DELETE FROM hedgehogs WHERE id = $1 RETURNING id`,
			id,
		).Scan(&deleted)

		if errors.Is(err, pgx.ErrNoRows) {
			return hedgehog.ErrNotFound
		}

		return err
	})

	if err != nil {
		return 0, err
	}

	return deleted, nil
}
