package profiler

import (
	"strings"

	"github.com/finops/backend/internal/domain/shared"
)

// Client is a profiler client.
type Client struct {
	shared.BaseEntity
	Name         string
	Email        string
	MobileNumber string
	Remark       string
}

// ClientPatch is a selective update of a profiler client.
type ClientPatch struct {
	Name         *string
	Email        *string
	MobileNumber *string
	Remark       *string
}

// NewClient creates a new profiler client
func NewClient(name, email, mobile, remark string) (*Client, error) {
	name, err := requireText("name", name)
	if err != nil {
		return nil, err
	}
	return &Client{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         name,
		Email:        strings.TrimSpace(email),
		MobileNumber: strings.TrimSpace(mobile),
		Remark:       remark,
	}, nil
}

// Apply updates the fields set in p.
func (c *Client) Apply(p ClientPatch) error {
	if p.Name != nil {
		name, err := requireText("name", *p.Name)
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
	if p.Remark != nil {
		c.Remark = *p.Remark
	}
	c.Touch()
	return nil
}

// Bank is a profiler bank.
type Bank struct {
	shared.BaseEntity
	BankName string
	Remark   string
}

// BankPatch is a selective update of a profiler bank.
type BankPatch struct {
	BankName *string
	Remark   *string
}

// NewBank creates a new profiler bank
func NewBank(bankName, remark string) (*Bank, error) {
	bankName, err := requireText("bank_name", bankName)
	if err != nil {
		return nil, err
	}
	return &Bank{BaseEntity: shared.NewBaseEntity(), BankName: bankName, Remark: remark}, nil
}

// Apply updates the fields set in p.
func (b *Bank) Apply(p BankPatch) error {
	if p.BankName != nil {
		name, err := requireText("bank_name", *p.BankName)
		if err != nil {
			return err
		}
		b.BankName = name
	}
	if p.Remark != nil {
		b.Remark = *p.Remark
	}
	b.Touch()
	return nil
}

func requireText(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", shared.NewValidationError("Invalid request parameters",
			shared.FieldError{Field: field, Message: "is required"})
	}
	return value, nil
}
