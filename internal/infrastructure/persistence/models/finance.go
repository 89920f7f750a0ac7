package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SupplierBillModel is the persistence model for the SupplierBill aggregate root.
// One bill per purchase order.
type SupplierBillModel struct {
	AggregateModel
	BillNumber      string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	PurchaseOrderID uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex"`
	SupplierID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	BillDate        time.Time          `gorm:"type:date;not null"`
	DueDate         time.Time          `gorm:"type:date;not null;index"`
	TotalAmount     decimal.Decimal    `gorm:"type:decimal(12,2);not null"`
	PaidAmount      decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0"`
	ReturnedAmount  decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0"`
	DueAmount       decimal.Decimal    `gorm:"type:decimal(12,2);not null"`
	Status          finance.BillStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	Notes           string             `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SupplierBillModel) TableName() string {
	return "supplier_bills"
}

// ToDomain converts the persistence model to a domain SupplierBill entity.
func (m *SupplierBillModel) ToDomain() *finance.SupplierBill {
	return &finance.SupplierBill{
		BaseAggregateRoot: m.Root(),
		BillNumber:        m.BillNumber,
		PurchaseOrderID:   m.PurchaseOrderID,
		SupplierID:        m.SupplierID,
		BillDate:          m.BillDate,
		DueDate:           m.DueDate,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		ReturnedAmount:    m.ReturnedAmount,
		DueAmount:         m.DueAmount,
		Status:            m.Status,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain SupplierBill entity.
func (m *SupplierBillModel) FromDomain(b *finance.SupplierBill) {
	m.SetRoot(b.BaseAggregateRoot)
	m.BillNumber = b.BillNumber
	m.PurchaseOrderID = b.PurchaseOrderID
	m.SupplierID = b.SupplierID
	m.BillDate = b.BillDate
	m.DueDate = b.DueDate
	m.TotalAmount = b.TotalAmount
	m.PaidAmount = b.PaidAmount
	m.ReturnedAmount = b.ReturnedAmount
	m.DueAmount = b.DueAmount
	m.Status = b.Status
	m.Notes = b.Notes
}

// SupplierBillModelFromDomain creates a new persistence model from a domain SupplierBill entity.
func SupplierBillModelFromDomain(b *finance.SupplierBill) *SupplierBillModel {
	m := &SupplierBillModel{}
	m.FromDomain(b)
	return m
}

// BillPaymentModel is the persistence model for a payment made against a supplier bill.
type BillPaymentModel struct {
	BaseModel
	BillID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	PaymentDate     time.Time             `gorm:"not null"`
	Amount          decimal.Decimal       `gorm:"type:decimal(12,2);not null"`
	Method          finance.PaymentMethod `gorm:"column:payment_method;type:varchar(20);not null"`
	ReferenceNumber string                `gorm:"type:varchar(100)"`
	Notes           string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (BillPaymentModel) TableName() string {
	return "bill_payments"
}

// ToDomain converts the persistence model to a domain BillPayment.
func (m *BillPaymentModel) ToDomain() *finance.BillPayment {
	return &finance.BillPayment{
		BaseEntity:      m.Entity(),
		BillID:          m.BillID,
		PaymentDate:     m.PaymentDate,
		Amount:          m.Amount,
		Method:          m.Method,
		ReferenceNumber: m.ReferenceNumber,
		Notes:           m.Notes,
	}
}

// FromDomain populates the persistence model from a domain BillPayment.
func (m *BillPaymentModel) FromDomain(p *finance.BillPayment) {
	m.SetEntity(p.BaseEntity)
	m.BillID = p.BillID
	m.PaymentDate = p.PaymentDate
	m.Amount = p.Amount
	m.Method = p.Method
	m.ReferenceNumber = p.ReferenceNumber
	m.Notes = p.Notes
}

// DuePaymentModel is the persistence model for a customer payment against outstanding sales.
// The FIFO allocation breakdown is kept as JSON text.
type DuePaymentModel struct {
	AggregateModel
	ReceiptNumber        string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID           uuid.UUID             `gorm:"type:uuid;not null;index"`
	PaymentDate          time.Time             `gorm:"not null;index"`
	Amount               decimal.Decimal       `gorm:"type:decimal(12,2);not null"`
	Method               finance.PaymentMethod `gorm:"column:payment_method;type:varchar(20);not null"`
	ReferenceNumber      string                `gorm:"type:varchar(100)"`
	Notes                string                `gorm:"type:text"`
	AllocatedDetailsJSON string                `gorm:"column:allocated_details;type:text"`
}

// TableName returns the table name for GORM
func (DuePaymentModel) TableName() string {
	return "due_payments"
}

// ToDomain converts the persistence model to a domain DuePayment entity.
func (m *DuePaymentModel) ToDomain() *finance.DuePayment {
	payment := &finance.DuePayment{
		BaseAggregateRoot: m.Root(),
		ReceiptNumber:     m.ReceiptNumber,
		CustomerID:        m.CustomerID,
		PaymentDate:       m.PaymentDate,
		Amount:            m.Amount,
		Method:            m.Method,
		ReferenceNumber:   m.ReferenceNumber,
		Notes:             m.Notes,
	}
	if m.AllocatedDetailsJSON != "" && m.AllocatedDetailsJSON != "[]" {
		var lines []finance.AllocationLine
		if err := json.Unmarshal([]byte(m.AllocatedDetailsJSON), &lines); err != nil {
			modelLogger.Warn("failed to parse due payment allocation",
				zap.String("receipt_number", m.ReceiptNumber),
				zap.String("raw_json", m.AllocatedDetailsJSON),
				zap.Error(err))
		} else {
			payment.AllocatedDetails = lines
		}
	}
	return payment
}

// FromDomain populates the persistence model from a domain DuePayment entity.
func (m *DuePaymentModel) FromDomain(p *finance.DuePayment) {
	m.SetRoot(p.BaseAggregateRoot)
	m.ReceiptNumber = p.ReceiptNumber
	m.CustomerID = p.CustomerID
	m.PaymentDate = p.PaymentDate
	m.Amount = p.Amount
	m.Method = p.Method
	m.ReferenceNumber = p.ReferenceNumber
	m.Notes = p.Notes

	m.AllocatedDetailsJSON = "[]"
	if len(p.AllocatedDetails) > 0 {
		if jsonBytes, err := json.Marshal(p.AllocatedDetails); err == nil {
			m.AllocatedDetailsJSON = string(jsonBytes)
		}
	}
}

// DuePaymentModelFromDomain creates a new persistence model from a domain DuePayment entity.
func DuePaymentModelFromDomain(p *finance.DuePayment) *DuePaymentModel {
	m := &DuePaymentModel{}
	m.FromDomain(p)
	return m
}
