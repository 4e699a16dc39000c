package backoffice

import (
	"context"
	"net/url"

	"github.com/finops/backend/internal/application/listing"
	"github.com/finops/backend/internal/domain/backoffice"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionService handles back-office transactions
type TransactionService struct {
	repo    backoffice.TransactionRepository
	clients backoffice.ClientRepository
	banks   backoffice.BankRepository
	cards   backoffice.CardRepository
	reader  listing.Reader[backoffice.TransactionRecord]
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	repo backoffice.TransactionRepository,
	clients backoffice.ClientRepository,
	banks backoffice.BankRepository,
	cards backoffice.CardRepository,
	reader listing.Reader[backoffice.TransactionRecord],
) *TransactionService {
	return &TransactionService{
		repo:    repo,
		clients: clients,
		banks:   banks,
		cards:   cards,
		reader:  reader,
	}
}

// Create records a transaction after checking its references exist
func (s *TransactionService) Create(ctx context.Context, req CreateTransactionRequest) (*TransactionResponse, error) {
	in := backoffice.TransactionInput{
		ClientID: req.ClientID,
		BankID:   req.BankID,
		CardID:   req.CardID,
		Type:     shared.TransactionType(req.TransactionType),
		Remark:   req.Remark,
	}
	if req.TransactionAmount != nil {
		in.Amount = *req.TransactionAmount
	}
	in.ChargePercentage = decimal.Zero
	if req.WidthdrawCharges != nil {
		in.ChargePercentage = *req.WidthdrawCharges
	}

	tx, err := backoffice.NewTransaction(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, &tx.ClientID, tx.BankID, tx.CardID); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, tx.ID)
}

// GetByID returns a transaction with its counterpart names
func (s *TransactionService) GetByID(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	row, err := s.reader.First(ctx, "transaction", byID("t", id))
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(*row)
	return &resp, nil
}

// List returns a filtered, searched, sorted page of transactions
func (s *TransactionService) List(ctx context.Context, params url.Values) (*listing.Result[TransactionResponse], error) {
	return listing.List(ctx, s.reader, TransactionList, params, ToTransactionResponse)
}

// Update applies a selective update; amount and percentage are re-validated
func (s *TransactionService) Update(ctx context.Context, id uuid.UUID, req UpdateTransactionRequest) (*TransactionResponse, error) {
	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch := req.patch()
	if err := tx.Apply(patch); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, patch.ClientID, attached(patch.BankID), attached(patch.CardID)); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, tx); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete hard-deletes a transaction
func (s *TransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *TransactionService) checkReferences(ctx context.Context, client, bank, card *uuid.UUID) error {
	if client != nil {
		if _, err := s.clients.FindByID(ctx, *client); err != nil {
			return err
		}
	}
	if bank != nil {
		if _, err := s.banks.FindByID(ctx, *bank); err != nil {
			return err
		}
	}
	if card != nil {
		if _, err := s.cards.FindByID(ctx, *card); err != nil {
			return err
		}
	}
	return nil
}

// attached drops detach markers (nil UUID) so only real references are checked.
func attached(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id
}
