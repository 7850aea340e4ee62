package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sweetshop/internal/application/dto"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

// CatalogAPI is the outbound port to the backend inventory resource. The
// backend is authoritative for every item; implementations must not cache.
type CatalogAPI interface {
	// List returns the items matching the filter. An entirely empty filter
	// hits the unfiltered listing endpoint.
	List(ctx context.Context, filter dto.FilterCriteria) ([]entity.Sweet, error)
	Create(ctx context.Context, in dto.CreateSweetRequest) (*entity.Sweet, error)
	// UpdatePrice is a partial update: only the price travels.
	UpdatePrice(ctx context.Context, id string, price decimal.Decimal) (*entity.Sweet, error)
	Remove(ctx context.Context, id string) error
	Purchase(ctx context.Context, id string, quantity int) (*entity.Sweet, error)
	Restock(ctx context.Context, id string, quantity int) (*entity.Sweet, error)
}

// AuthAPI is the outbound port for authentication flows.
type AuthAPI interface {
	// Login exchanges credentials for an access token.
	Login(ctx context.Context, email, password string) (string, error)
	// Register creates an account and returns its access token.
	// Self-registration can never mint an admin.
	Register(ctx context.Context, email, password, fullName string) (string, error)
	// WhoAmI resolves the identity behind a token.
	WhoAmI(ctx context.Context, token string) (*entity.User, error)
}

// TokenStorage persists the session token across process restarts. The session
// store is the only writer; everything else reads the token through it.
type TokenStorage interface {
	Save(ctx context.Context, token string) error
	// Load returns the persisted token, or "" when none is stored.
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}
