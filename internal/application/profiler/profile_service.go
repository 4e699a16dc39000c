package profiler

import (
	"context"
	"net/url"
	"time"

	"github.com/finops/backend/internal/application/listing"
	"github.com/finops/backend/internal/domain/profiler"
	"github.com/finops/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProfileService manages profiles and their lifecycle
type ProfileService struct {
	clients  profiler.ClientRepository
	banks    profiler.BankRepository
	profiles profiler.ProfileRepository
	scope    TransactionScope
	reader   listing.Reader[profiler.ProfileRecord]
	logger   *zap.Logger
	now      func() time.Time
}

// NewProfileService creates a new ProfileService
func NewProfileService(
	clients profiler.ClientRepository,
	banks profiler.BankRepository,
	profiles profiler.ProfileRepository,
	scope TransactionScope,
	reader listing.Reader[profiler.ProfileRecord],
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		clients:  clients,
		banks:    banks,
		profiles: profiles,
		scope:    scope,
		reader:   reader,
		logger:   logger,
		now:      time.Now,
	}
}

// Create opens an active profile for an existing client and bank
func (s *ProfileService) Create(ctx context.Context, req CreateProfileRequest) (*ProfileResponse, error) {
	in := profiler.ProfileInput{
		ClientID:                req.ClientID,
		BankID:                  req.BankID,
		PrePlannedDepositAmount: decimal.Zero,
		CarryForwardEnabled:     req.CarryForwardEnabled,
		Notes:                   req.Notes,
	}
	if req.PrePlannedDepositAmount != nil {
		in.PrePlannedDepositAmount = *req.PrePlannedDepositAmount
	}
	profile, err := profiler.NewProfile(in)
	if err != nil {
		return nil, err
	}
	if _, err := s.clients.FindByID(ctx, req.ClientID); err != nil {
		return nil, err
	}
	if _, err := s.banks.FindByID(ctx, req.BankID); err != nil {
		return nil, err
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, profile.ID)
}

// GetByID returns a profile with balances and transaction count
func (s *ProfileService) GetByID(ctx context.Context, id uuid.UUID) (*ProfileResponse, error) {
	row, err := s.reader.First(ctx, "profile", byID("p", id))
	if err != nil {
		return nil, err
	}
	resp := ToProfileResponse(*row)
	return &resp, nil
}

// List returns a page of profiles
func (s *ProfileService) List(ctx context.Context, params url.Values) (*listing.Result[ProfileResponse], error) {
	return listing.List(ctx, s.reader, ProfileList, params, ToProfileResponse)
}

// Update applies a selective update under the profile lock
func (s *ProfileService) Update(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*ProfileResponse, error) {
	err := s.scope.Execute(ctx, func(repos LedgerRepositories) error {
		profile, err := repos.Profiles().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := profile.Apply(profiler.ProfilePatch{
			PrePlannedDepositAmount: req.PrePlannedDepositAmount,
			CarryForwardEnabled:     req.CarryForwardEnabled,
			Notes:                   req.Notes,
		}); err != nil {
			return err
		}
		return repos.Profiles().Save(ctx, profile)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete deletes a profile without transactions
func (s *ProfileService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.profiles.Delete(ctx, id)
}

// MarkDone closes an active profile. With carry-forward enabled and a positive
// remaining balance, the successor is opened in the same database transaction.
func (s *ProfileService) MarkDone(ctx context.Context, id uuid.UUID) (*MarkDoneResponse, error) {
	var successor *profiler.Profile
	err := s.scope.Execute(ctx, func(repos LedgerRepositories) error {
		profile, err := repos.Profiles().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := profile.MarkDone(s.now().UTC()); err != nil {
			return err
		}
		if err := repos.Profiles().Save(ctx, profile); err != nil {
			return err
		}
		next, err := profile.CarryForward()
		if err != nil || next == nil {
			return err
		}
		if err := repos.Profiles().Create(ctx, next); err != nil {
			return err
		}
		successor = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	done, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &MarkDoneResponse{Profile: *done}
	if successor != nil {
		logger.For(ctx, s.logger).Info("Profile carried forward",
			zap.String("profile_id", id.String()),
			zap.String("successor_id", successor.ID.String()),
			zap.String("opening_balance", successor.PrePlannedDepositAmount.String()),
		)
		next, err := s.GetByID(ctx, successor.ID)
		if err != nil {
			return nil, err
		}
		resp.CarriedForward = next
	}
	return resp, nil
}
