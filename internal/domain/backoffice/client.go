// Package backoffice holds the client, bank, card and transaction aggregates
// together with their list filters.
package backoffice

import (
	"strings"

	"github.com/finops/backend/internal/domain/shared"
)

// Client is a customer whose transactions are recorded by the back office.
type Client struct {
	shared.BaseEntity
	Name         string
	Email        string
	MobileNumber string
	Address      string
	Remark       string
}

// ClientInput carries the fields of a new client.
type ClientInput struct {
	Name         string
	Email        string
	MobileNumber string
	Address      string
	Remark       string
}

// ClientPatch is a selective update. Nil fields are left untouched.
type ClientPatch struct {
	Name         *string
	Email        *string
	MobileNumber *string
	Address      *string
	Remark       *string
}

// NewClient creates a new client
func NewClient(in ClientInput) (*Client, error) {
	name, err := requireName("name", in.Name)
	if err != nil {
		return nil, err
	}
	return &Client{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         name,
		Email:        strings.TrimSpace(in.Email),
		MobileNumber: strings.TrimSpace(in.MobileNumber),
		Address:      strings.TrimSpace(in.Address),
		Remark:       in.Remark,
	}, nil
}

// Apply updates the fields set in p.
func (c *Client) Apply(p ClientPatch) error {
	if p.Name != nil {
		name, err := requireName("name", *p.Name)
		if err != nil {
			return err
		}
		c.Name = name
	}
	if p.Email != nil {
		c.Email = strings.TrimSpace(*p.Email)
	}
	if p.MobileNumber != nil {
		c.MobileNumber = strings.TrimSpace(*p.MobileNumber)
	}
	if p.Address != nil {
		c.Address = strings.TrimSpace(*p.Address)
	}
	if p.Remark != nil {
		c.Remark = *p.Remark
	}
	c.Touch()
	return nil
}

const maxNameLength = 200

func requireName(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", shared.NewValidationError("Invalid request parameters",
			shared.FieldError{Field: field, Message: "is required"})
	}
	if len(value) > maxNameLength {
		return "", shared.NewValidationError("Invalid request parameters",
			shared.FieldError{Field: field, Message: "must be at most 200 characters"})
	}
	return value, nil
}
