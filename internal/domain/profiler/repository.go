package profiler

import (
	"context"

	"github.com/google/uuid"
)

// ClientRepository persists profiler clients.
type ClientRepository interface {
	Create(ctx context.Context, client *Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	Save(ctx context.Context, client *Client) error
	// Delete fails with a conflict while profiles reference the client.
	Delete(ctx context.Context, id uuid.UUID) error
}

// BankRepository persists profiler banks.
type BankRepository interface {
	Create(ctx context.Context, bank *Bank) error
	FindByID(ctx context.Context, id uuid.UUID) (*Bank, error)
	Save(ctx context.Context, bank *Bank) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileRepository persists profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	// FindByIDForUpdate reads the profile and locks its row until the
	// surrounding database transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Profile, error)
	Save(ctx context.Context, profile *Profile) error
	// Delete fails with a conflict while the profile has transactions.
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionRepository persists profiler transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	Save(ctx context.Context, tx *Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
}
