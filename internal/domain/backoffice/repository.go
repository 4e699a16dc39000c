package backoffice

import (
	"context"

	"github.com/google/uuid"
)

// ClientRepository persists clients.
type ClientRepository interface {
	Create(ctx context.Context, client *Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	Save(ctx context.Context, client *Client) error
	// Delete removes the client, failing with a conflict while transactions reference it.
	Delete(ctx context.Context, id uuid.UUID) error
}

// BankRepository persists banks.
type BankRepository interface {
	Create(ctx context.Context, bank *Bank) error
	FindByID(ctx context.Context, id uuid.UUID) (*Bank, error)
	Save(ctx context.Context, bank *Bank) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CardRepository persists cards.
type CardRepository interface {
	Create(ctx context.Context, card *Card) error
	FindByID(ctx context.Context, id uuid.UUID) (*Card, error)
	Save(ctx context.Context, card *Card) error
	// Delete removes the card. With cascade the card is detached from its
	// transactions in the same database transaction; without it a referenced
	// card is a conflict.
	Delete(ctx context.Context, id uuid.UUID, cascade bool) error
}

// TransactionRepository persists transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	Save(ctx context.Context, tx *Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
}
