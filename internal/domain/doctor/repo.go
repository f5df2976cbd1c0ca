package doctor

import "context"

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByUsername(ctx context.Context, username string) (*Doctor, error)
}
