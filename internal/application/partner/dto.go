package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/finance"
	"github.com/shopman/backend/internal/domain/partner"
	"github.com/shopman/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest registers a customer
type CreateCustomerRequest struct {
	Name        string           `json:"name" binding:"required,min=1,max=200"`
	Phone       string           `json:"phone" binding:"required,max=20"`
	Email       string           `json:"email" binding:"omitempty,email"`
	Address     string           `json:"address"`
	CreditLimit *decimal.Decimal `json:"credit_limit"`
}

// UpdateCustomerRequest carries a partial customer update
type UpdateCustomerRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Phone       *string          `json:"phone" binding:"omitempty,max=20"`
	Email       *string          `json:"email" binding:"omitempty,email"`
	Address     *string          `json:"address"`
	CreditLimit *decimal.Decimal `json:"credit_limit"`
	IsActive    *bool            `json:"is_active"`
}

// CustomerListFilter filters the customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	WithDue  bool   `form:"with_due"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CustomerResponse is the API view of a customer
type CustomerResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Phone           string          `json:"phone"`
	Email           string          `json:"email,omitempty"`
	Address         string          `json:"address,omitempty"`
	TotalDue        decimal.Decimal `json:"total_due"`
	CreditLimit     decimal.Decimal `json:"credit_limit"`
	AvailableCredit decimal.Decimal `json:"available_credit"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToCustomerResponse converts the domain customer
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:              c.ID,
		Name:            c.Name,
		Phone:           c.Phone,
		Email:           c.Email,
		Address:         c.Address,
		TotalDue:        c.TotalDue,
		CreditLimit:     c.CreditLimit,
		AvailableCredit: c.AvailableCredit(),
		IsActive:        c.IsActive,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// OpenSale is an invoice still carrying money owed
type OpenSale struct {
	SaleID        uuid.UUID           `json:"sale_id"`
	InvoiceNumber string              `json:"invoice_number"`
	SaleDate      time.Time           `json:"sale_date"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	PaidAmount    decimal.Decimal     `json:"paid_amount"`
	DueAmount     decimal.Decimal     `json:"due_amount"`
	PaymentStatus trade.PaymentStatus `json:"payment_status"`
}

// DuePaymentSummary is a past customer payment with its allocation
type DuePaymentSummary struct {
	ID               uuid.UUID                `json:"id"`
	ReceiptNumber    string                   `json:"receipt_number"`
	PaymentDate      time.Time                `json:"payment_date"`
	Amount           decimal.Decimal          `json:"amount"`
	Method           finance.PaymentMethod    `json:"payment_method"`
	ReferenceNumber  string                   `json:"reference_number,omitempty"`
	AllocatedDetails []finance.AllocationLine `json:"allocated_details"`
}

// ToDuePaymentSummary converts a domain due payment
func ToDuePaymentSummary(p *finance.DuePayment) DuePaymentSummary {
	return DuePaymentSummary{
		ID:               p.ID,
		ReceiptNumber:    p.ReceiptNumber,
		PaymentDate:      p.PaymentDate,
		Amount:           p.Amount,
		Method:           p.Method,
		ReferenceNumber:  p.ReferenceNumber,
		AllocatedDetails: p.AllocatedDetails,
	}
}

// CustomerDueDetails combines a customer's open invoices and payment history
type CustomerDueDetails struct {
	Customer    CustomerResponse    `json:"customer"`
	OpenSales   []OpenSale          `json:"open_sales"`
	Payments    []DuePaymentSummary `json:"payments"`
	OpenTotal   decimal.Decimal     `json:"open_total"`
	CreditAlert bool                `json:"credit_alert"`
}

// CreateSupplierRequest registers a supplier
type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=200"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone" binding:"omitempty,max=20"`
	Email         string `json:"email" binding:"omitempty,email"`
	Address       string `json:"address"`
}

// SupplierResponse is the API view of a supplier
type SupplierResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToSupplierResponse converts the domain supplier
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Phone:         s.Phone,
		Email:         s.Email,
		Address:       s.Address,
		CreatedAt:     s.CreatedAt,
	}
}
