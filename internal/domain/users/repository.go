package users

import "context"

// Repository persiste cuentas. Create devuelve ErrEmailTaken si el email ya existe.
type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}
