package profiler

import (
	"context"
	"net/url"

	"github.com/finops/backend/internal/application/listing"
	"github.com/finops/backend/internal/domain/profiler"
	"github.com/google/uuid"
)

// ClientService manages profiler clients
type ClientService struct {
	repo   profiler.ClientRepository
	reader listing.Reader[profiler.ClientSummary]
}

// NewClientService creates a new ClientService
func NewClientService(repo profiler.ClientRepository, reader listing.Reader[profiler.ClientSummary]) *ClientService {
	return &ClientService{repo: repo, reader: reader}
}

// Create creates a new profiler client
func (s *ClientService) Create(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	client, err := profiler.NewClient(req.Name, req.Email, req.MobileNumber, req.Remark)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, client.ID)
}

// GetByID returns a profiler client with its profile count
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	row, err := s.reader.First(ctx, "profiler client", byID("pc", id))
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(*row)
	return &resp, nil
}

// List returns a page of profiler clients
func (s *ClientService) List(ctx context.Context, params url.Values) (*listing.Result[ClientResponse], error) {
	return listing.List(ctx, s.reader, ClientList, params, ToClientResponse)
}

// Update applies a selective update
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := client.Apply(profiler.ClientPatch{
		Name:         req.Name,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Remark:       req.Remark,
	}); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, client); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete deletes a profiler client without profiles
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// BankService manages profiler banks
type BankService struct {
	repo   profiler.BankRepository
	reader listing.Reader[profiler.BankSummary]
}

// NewBankService creates a new BankService
func NewBankService(repo profiler.BankRepository, reader listing.Reader[profiler.BankSummary]) *BankService {
	return &BankService{repo: repo, reader: reader}
}

// Create creates a new profiler bank
func (s *BankService) Create(ctx context.Context, req CreateBankRequest) (*BankResponse, error) {
	bank, err := profiler.NewBank(req.BankName, req.Remark)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, bank); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, bank.ID)
}

// GetByID returns a profiler bank with its profile count
func (s *BankService) GetByID(ctx context.Context, id uuid.UUID) (*BankResponse, error) {
	row, err := s.reader.First(ctx, "profiler bank", byID("pb", id))
	if err != nil {
		return nil, err
	}
	resp := ToBankResponse(*row)
	return &resp, nil
}

// List returns a page of profiler banks
func (s *BankService) List(ctx context.Context, params url.Values) (*listing.Result[BankResponse], error) {
	return listing.List(ctx, s.reader, BankList, params, ToBankResponse)
}

// Update applies a selective update
func (s *BankService) Update(ctx context.Context, id uuid.UUID, req UpdateBankRequest) (*BankResponse, error) {
	bank, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := bank.Apply(profiler.BankPatch{BankName: req.BankName, Remark: req.Remark}); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, bank); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete deletes a profiler bank without profiles
func (s *BankService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
