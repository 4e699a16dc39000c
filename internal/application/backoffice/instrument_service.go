package backoffice

import (
	"context"
	"net/url"

	"github.com/finops/backend/internal/application/listing"
	"github.com/finops/backend/internal/domain/backoffice"
	"github.com/google/uuid"
)

// BankService handles bank-related business operations
type BankService struct {
	repo   backoffice.BankRepository
	reader listing.Reader[backoffice.InstrumentSummary]
}

// NewBankService creates a new BankService
func NewBankService(repo backoffice.BankRepository, reader listing.Reader[backoffice.InstrumentSummary]) *BankService {
	return &BankService{repo: repo, reader: reader}
}

// Create creates a new bank
func (s *BankService) Create(ctx context.Context, req CreateInstrumentRequest) (*InstrumentResponse, error) {
	bank, err := backoffice.NewBank(req.Name, req.Remark)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, bank); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, bank.ID)
}

// GetByID returns a bank with its transaction count
func (s *BankService) GetByID(ctx context.Context, id uuid.UUID) (*InstrumentResponse, error) {
	row, err := s.reader.First(ctx, "bank", byID("b", id))
	if err != nil {
		return nil, err
	}
	resp := ToInstrumentResponse(*row)
	return &resp, nil
}

// List returns a page of banks
func (s *BankService) List(ctx context.Context, params url.Values) (*listing.Result[InstrumentResponse], error) {
	return listing.List(ctx, s.reader, BankList, params, ToInstrumentResponse)
}

// Update applies a selective update
func (s *BankService) Update(ctx context.Context, id uuid.UUID, req UpdateInstrumentRequest) (*InstrumentResponse, error) {
	bank, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := bank.Apply(backoffice.BankPatch{Name: req.Name, Remark: req.Remark}); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, bank); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete deletes a bank that has no transactions
func (s *BankService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// CardService handles card-related business operations
type CardService struct {
	repo   backoffice.CardRepository
	reader listing.Reader[backoffice.InstrumentSummary]
}

// NewCardService creates a new CardService
func NewCardService(repo backoffice.CardRepository, reader listing.Reader[backoffice.InstrumentSummary]) *CardService {
	return &CardService{repo: repo, reader: reader}
}

// Create creates a new card
func (s *CardService) Create(ctx context.Context, req CreateInstrumentRequest) (*InstrumentResponse, error) {
	card, err := backoffice.NewCard(req.Name, req.Remark)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, card); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, card.ID)
}

// GetByID returns a card with its transaction count
func (s *CardService) GetByID(ctx context.Context, id uuid.UUID) (*InstrumentResponse, error) {
	row, err := s.reader.First(ctx, "card", byID("k", id))
	if err != nil {
		return nil, err
	}
	resp := ToInstrumentResponse(*row)
	return &resp, nil
}

// List returns a page of cards
func (s *CardService) List(ctx context.Context, params url.Values) (*listing.Result[InstrumentResponse], error) {
	return listing.List(ctx, s.reader, CardList, params, ToInstrumentResponse)
}

// Update applies a selective update
func (s *CardService) Update(ctx context.Context, id uuid.UUID, req UpdateInstrumentRequest) (*InstrumentResponse, error) {
	card, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := card.Apply(backoffice.CardPatch{Name: req.Name, Remark: req.Remark}); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, card); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete deletes a card. With cascade its transactions are detached first.
func (s *CardService) Delete(ctx context.Context, id uuid.UUID, cascade bool) error {
	return s.repo.Delete(ctx, id, cascade)
}
