package backoffice

import "github.com/finops/backend/internal/domain/shared"

// Bank is a bank account transactions can be routed through.
type Bank struct {
	shared.BaseEntity
	Name   string
	Remark string
}

// BankPatch is a selective update of a bank.
type BankPatch struct {
	Name   *string
	Remark *string
}

// NewBank creates a new bank
func NewBank(name, remark string) (*Bank, error) {
	name, err := requireName("name", name)
	if err != nil {
		return nil, err
	}
	return &Bank{BaseEntity: shared.NewBaseEntity(), Name: name, Remark: remark}, nil
}

// Apply updates the fields set in p.
func (b *Bank) Apply(p BankPatch) error {
	if p.Name != nil {
		name, err := requireName("name", *p.Name)
		if err != nil {
			return err
		}
		b.Name = name
	}
	if p.Remark != nil {
		b.Remark = *p.Remark
	}
	b.Touch()
	return nil
}

// Card is a payment card transactions can be made with.
type Card struct {
	shared.BaseEntity
	Name   string
	Remark string
}

// CardPatch is a selective update of a card.
type CardPatch struct {
	Name   *string
	Remark *string
}

// NewCard creates a new card
func NewCard(name, remark string) (*Card, error) {
	name, err := requireName("name", name)
	if err != nil {
		return nil, err
	}
	return &Card{BaseEntity: shared.NewBaseEntity(), Name: name, Remark: remark}, nil
}

// Apply updates the fields set in p.
func (c *Card) Apply(p CardPatch) error {
	if p.Name != nil {
		name, err := requireName("name", *p.Name)
		if err != nil {
			return err
		}
		c.Name = name
	}
	if p.Remark != nil {
		c.Remark = *p.Remark
	}
	c.Touch()
	return nil
}
