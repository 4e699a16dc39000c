package backoffice

import (
	"context"
	"net/url"

	"github.com/finops/backend/internal/application/listing"
	"github.com/finops/backend/internal/domain/backoffice"
	"github.com/google/uuid"
)

// ClientService handles client-related business operations
type ClientService struct {
	repo   backoffice.ClientRepository
	reader listing.Reader[backoffice.ClientSummary]
}

// NewClientService creates a new ClientService
func NewClientService(repo backoffice.ClientRepository, reader listing.Reader[backoffice.ClientSummary]) *ClientService {
	return &ClientService{repo: repo, reader: reader}
}

// Create creates a new client
func (s *ClientService) Create(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	client, err := backoffice.NewClient(backoffice.ClientInput{
		Name:         req.Name,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Address:      req.Address,
		Remark:       req.Remark,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, client.ID)
}

// GetByID returns a client with its transaction count
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	row, err := s.reader.First(ctx, "client", byID("c", id))
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(*row)
	return &resp, nil
}

// List returns a filtered, searched, sorted page of clients
func (s *ClientService) List(ctx context.Context, params url.Values) (*listing.Result[ClientResponse], error) {
	return listing.List(ctx, s.reader, ClientList, params, ToClientResponse)
}

// Update applies a selective update
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := client.Apply(backoffice.ClientPatch{
		Name:         req.Name,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Address:      req.Address,
		Remark:       req.Remark,
	}); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, client); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete deletes a client that has no transactions
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
