package models

import (
	"github.com/shopman/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// SupplierModel is the persistence model for the Supplier domain entity.
type SupplierModel struct {
	AggregateModel
	Name          string `gorm:"type:varchar(200);not null;index"`
	ContactPerson string `gorm:"type:varchar(100)"`
	Phone         string `gorm:"type:varchar(20)"`
	Email         string `gorm:"type:varchar(200)"`
	Address       string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.Root(),
		Name:              m.Name,
		ContactPerson:     m.ContactPerson,
		Phone:             m.Phone,
		Email:             m.Email,
		Address:           m.Address,
	}
}

// FromDomain populates the persistence model from a domain Supplier entity.
func (m *SupplierModel) FromDomain(s *partner.Supplier) {
	m.SetRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.ContactPerson = s.ContactPerson
	m.Phone = s.Phone
	m.Email = s.Email
	m.Address = s.Address
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier entity.
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{}
	m.FromDomain(s)
	return m
}

// CustomerModel is the persistence model for the Customer domain entity.
// Phone is the natural key used to link walk-in sales.
type CustomerModel struct {
	AggregateModel
	Name        string          `gorm:"type:varchar(200);not null;index"`
	Phone       string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	Email       string          `gorm:"type:varchar(200)"`
	Address     string          `gorm:"type:text"`
	TotalDue    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(12,2);not null;default:10000"`
	IsActive    bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.Root(),
		Name:              m.Name,
		Phone:             m.Phone,
		Email:             m.Email,
		Address:           m.Address,
		TotalDue:          m.TotalDue,
		CreditLimit:       m.CreditLimit,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.SetRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Phone = c.Phone
	m.Email = c.Email
	m.Address = c.Address
	m.TotalDue = c.TotalDue
	m.CreditLimit = c.CreditLimit
	m.IsActive = c.IsActive
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
