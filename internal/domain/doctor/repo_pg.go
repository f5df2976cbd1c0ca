package doctor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctor (id, username, password_hash, display_name, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		d.ID, d.Username, d.PasswordHash, d.DisplayName, d.CreatedAt,
	)
	return err
}

func (r *repoPG) GetByUsername(ctx context.Context, username string) (*Doctor, error) {
	var d Doctor
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, display_name, created_at
		FROM doctor WHERE username = $1`, username,
	).Scan(&d.ID, &d.Username, &d.PasswordHash, &d.DisplayName, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnknownDoctor
		}
		return nil, err
	}
	return &d, nil
}
