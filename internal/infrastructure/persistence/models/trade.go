package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var modelLogger = zap.L().Named("persistence.models")

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	AggregateModel
	PONumber     string                    `gorm:"column:po_number;type:varchar(50);not null;uniqueIndex"`
	SupplierID   uuid.UUID                 `gorm:"type:uuid;not null;index"`
	SupplierName string                    `gorm:"type:varchar(200);not null"`
	Status       trade.PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	OrderDate    time.Time                 `gorm:"not null"`
	ExpectedDate time.Time                 `gorm:"not null"`
	TotalAmount  decimal.Decimal           `gorm:"type:decimal(12,2);not null;default:0"`
	Notes        string                    `gorm:"type:text"`
	CompletedAt  *time.Time
	Items        []PurchaseOrderItemModel `gorm:"foreignKey:PurchaseOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	order := &trade.PurchaseOrder{
		BaseAggregateRoot: m.Root(),
		PONumber:          m.PONumber,
		SupplierID:        m.SupplierID,
		SupplierName:      m.SupplierName,
		Status:            m.Status,
		OrderDate:         m.OrderDate,
		ExpectedDate:      m.ExpectedDate,
		TotalAmount:       m.TotalAmount,
		Notes:             m.Notes,
		CompletedAt:       m.CompletedAt,
		Items:             make([]trade.PurchaseOrderItem, len(m.Items)),
	}
	for i := range m.Items {
		order.Items[i] = *m.Items[i].ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) FromDomain(o *trade.PurchaseOrder) {
	m.SetRoot(o.BaseAggregateRoot)
	m.PONumber = o.PONumber
	m.SupplierID = o.SupplierID
	m.SupplierName = o.SupplierName
	m.Status = o.Status
	m.OrderDate = o.OrderDate
	m.ExpectedDate = o.ExpectedDate
	m.TotalAmount = o.TotalAmount
	m.Notes = o.Notes
	m.CompletedAt = o.CompletedAt
	m.Items = make([]PurchaseOrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i].FromDomain(&o.Items[i])
	}
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder entity.
func PurchaseOrderModelFromDomain(o *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// PurchaseOrderItemModel is the persistence model for a purchase order line.
type PurchaseOrderItemModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName     string          `gorm:"type:varchar(200);not null"`
	Quantity        int             `gorm:"not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BatchNumber     string          `gorm:"type:varchar(100)"`
	ExpiryDate      *time.Time      `gorm:"type:date"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain PurchaseOrderItem.
func (m *PurchaseOrderItemModel) ToDomain() *trade.PurchaseOrderItem {
	return &trade.PurchaseOrderItem{
		ID:              m.ID,
		PurchaseOrderID: m.PurchaseOrderID,
		ProductID:       m.ProductID,
		ProductName:     m.ProductName,
		Quantity:        m.Quantity,
		UnitCost:        m.UnitCost,
		TotalCost:       m.TotalCost,
		BatchNumber:     m.BatchNumber,
		ExpiryDate:      m.ExpiryDate,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain PurchaseOrderItem.
func (m *PurchaseOrderItemModel) FromDomain(i *trade.PurchaseOrderItem) {
	m.ID = i.ID
	m.PurchaseOrderID = i.PurchaseOrderID
	m.ProductID = i.ProductID
	m.ProductName = i.ProductName
	m.Quantity = i.Quantity
	m.UnitCost = i.UnitCost
	m.TotalCost = i.TotalCost
	m.BatchNumber = i.BatchNumber
	m.ExpiryDate = i.ExpiryDate
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// PurchaseOrderCancellationModel records why a pending order was cancelled.
type PurchaseOrderCancellationModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Reason          string    `gorm:"type:text;not null"`
	CancelledAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderCancellationModel) TableName() string {
	return "purchase_order_cancellations"
}

// ToDomain converts the persistence model to a domain PurchaseOrderCancellation.
func (m *PurchaseOrderCancellationModel) ToDomain() *trade.PurchaseOrderCancellation {
	return &trade.PurchaseOrderCancellation{
		ID:              m.ID,
		PurchaseOrderID: m.PurchaseOrderID,
		Reason:          m.Reason,
		CancelledAt:     m.CancelledAt,
	}
}

// FromDomain populates the persistence model from a domain PurchaseOrderCancellation.
func (m *PurchaseOrderCancellationModel) FromDomain(c *trade.PurchaseOrderCancellation) {
	m.ID = c.ID
	m.PurchaseOrderID = c.PurchaseOrderID
	m.Reason = c.Reason
	m.CancelledAt = c.CancelledAt
}

// PurchaseReturnModel is the persistence model for the PurchaseReturn aggregate root.
type PurchaseReturnModel struct {
	AggregateModel
	ReturnNumber    string                     `gorm:"type:varchar(50);not null;uniqueIndex"`
	PurchaseOrderID uuid.UUID                  `gorm:"type:uuid;not null;index"`
	SupplierID      uuid.UUID                  `gorm:"type:uuid;not null;index"`
	Reason          trade.PurchaseReturnReason `gorm:"type:varchar(20);not null"`
	Status          trade.PurchaseReturnStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ReturnDate      time.Time                  `gorm:"not null"`
	ReturnAmount    decimal.Decimal            `gorm:"type:decimal(12,2);not null;default:0"`
	Notes           string                     `gorm:"type:text"`
	CompletedAt     *time.Time
	Items           []PurchaseReturnItemModel `gorm:"foreignKey:PurchaseReturnID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseReturnModel) TableName() string {
	return "purchase_returns"
}

// ToDomain converts the persistence model to a domain PurchaseReturn entity.
func (m *PurchaseReturnModel) ToDomain() *trade.PurchaseReturn {
	ret := &trade.PurchaseReturn{
		BaseAggregateRoot: m.Root(),
		ReturnNumber:      m.ReturnNumber,
		PurchaseOrderID:   m.PurchaseOrderID,
		SupplierID:        m.SupplierID,
		Reason:            m.Reason,
		Status:            m.Status,
		ReturnDate:        m.ReturnDate,
		ReturnAmount:      m.ReturnAmount,
		Notes:             m.Notes,
		CompletedAt:       m.CompletedAt,
		Items:             make([]trade.PurchaseReturnItem, len(m.Items)),
	}
	for i := range m.Items {
		ret.Items[i] = *m.Items[i].ToDomain()
	}
	return ret
}

// FromDomain populates the persistence model from a domain PurchaseReturn entity.
func (m *PurchaseReturnModel) FromDomain(r *trade.PurchaseReturn) {
	m.SetRoot(r.BaseAggregateRoot)
	m.ReturnNumber = r.ReturnNumber
	m.PurchaseOrderID = r.PurchaseOrderID
	m.SupplierID = r.SupplierID
	m.Reason = r.Reason
	m.Status = r.Status
	m.ReturnDate = r.ReturnDate
	m.ReturnAmount = r.ReturnAmount
	m.Notes = r.Notes
	m.CompletedAt = r.CompletedAt
	m.Items = make([]PurchaseReturnItemModel, len(r.Items))
	for i := range r.Items {
		m.Items[i].FromDomain(&r.Items[i])
	}
}

// PurchaseReturnModelFromDomain creates a new persistence model from a domain PurchaseReturn entity.
func PurchaseReturnModelFromDomain(r *trade.PurchaseReturn) *PurchaseReturnModel {
	m := &PurchaseReturnModel{}
	m.FromDomain(r)
	return m
}

// PurchaseReturnItemModel is the persistence model for a supplier return line.
type PurchaseReturnItemModel struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key"`
	PurchaseReturnID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseOrderItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID           uuid.UUID       `gorm:"type:uuid;not null"`
	BatchID             *uuid.UUID      `gorm:"type:uuid"`
	Quantity            int             `gorm:"not null"`
	UnitCost            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalCost           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt           time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseReturnItemModel) TableName() string {
	return "purchase_return_items"
}

// ToDomain converts the persistence model to a domain PurchaseReturnItem.
func (m *PurchaseReturnItemModel) ToDomain() *trade.PurchaseReturnItem {
	return &trade.PurchaseReturnItem{
		ID:                  m.ID,
		PurchaseReturnID:    m.PurchaseReturnID,
		PurchaseOrderItemID: m.PurchaseOrderItemID,
		ProductID:           m.ProductID,
		BatchID:             m.BatchID,
		Quantity:            m.Quantity,
		UnitCost:            m.UnitCost,
		TotalCost:           m.TotalCost,
		CreatedAt:           m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain PurchaseReturnItem.
func (m *PurchaseReturnItemModel) FromDomain(i *trade.PurchaseReturnItem) {
	m.ID = i.ID
	m.PurchaseReturnID = i.PurchaseReturnID
	m.PurchaseOrderItemID = i.PurchaseOrderItemID
	m.ProductID = i.ProductID
	m.BatchID = i.BatchID
	m.Quantity = i.Quantity
	m.UnitCost = i.UnitCost
	m.TotalCost = i.TotalCost
	m.CreatedAt = i.CreatedAt
}

// SaleModel is the persistence model for the Sale aggregate root.
type SaleModel struct {
	AggregateModel
	InvoiceNumber      string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID         *uuid.UUID          `gorm:"type:uuid;index:idx_sale_customer_status,priority:1"`
	CustomerName       string              `gorm:"type:varchar(200)"`
	CustomerPhone      string              `gorm:"type:varchar(20)"`
	Subtotal           decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	TaxAmount          decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountAmount     decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount        decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	TaxPercentage      decimal.Decimal     `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountPercentage decimal.Decimal     `gorm:"type:decimal(5,2);not null;default:0"`
	PaidAmount         decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	ChangeAmount       decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	ReturnedAmount     decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentStatus      trade.PaymentStatus `gorm:"type:varchar(20);not null;index:idx_sale_customer_status,priority:2"`
	SaleDate           time.Time           `gorm:"not null;index"`
	Notes              string              `gorm:"type:text"`
	Items              []SaleItemModel     `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale entity.
func (m *SaleModel) ToDomain() *trade.Sale {
	sale := &trade.Sale{
		BaseAggregateRoot:  m.Root(),
		InvoiceNumber:      m.InvoiceNumber,
		CustomerID:         m.CustomerID,
		CustomerName:       m.CustomerName,
		CustomerPhone:      m.CustomerPhone,
		Subtotal:           m.Subtotal,
		TaxAmount:          m.TaxAmount,
		DiscountAmount:     m.DiscountAmount,
		TotalAmount:        m.TotalAmount,
		TaxPercentage:      m.TaxPercentage,
		DiscountPercentage: m.DiscountPercentage,
		PaidAmount:         m.PaidAmount,
		ChangeAmount:       m.ChangeAmount,
		ReturnedAmount:     m.ReturnedAmount,
		PaymentStatus:      m.PaymentStatus,
		SaleDate:           m.SaleDate,
		Notes:              m.Notes,
		Items:              make([]trade.SaleItem, len(m.Items)),
	}
	for i := range m.Items {
		sale.Items[i] = *m.Items[i].ToDomain()
	}
	return sale
}

// FromDomain populates the persistence model from a domain Sale entity.
func (m *SaleModel) FromDomain(s *trade.Sale) {
	m.SetRoot(s.BaseAggregateRoot)
	m.InvoiceNumber = s.InvoiceNumber
	m.CustomerID = s.CustomerID
	m.CustomerName = s.CustomerName
	m.CustomerPhone = s.CustomerPhone
	m.Subtotal = s.Subtotal
	m.TaxAmount = s.TaxAmount
	m.DiscountAmount = s.DiscountAmount
	m.TotalAmount = s.TotalAmount
	m.TaxPercentage = s.TaxPercentage
	m.DiscountPercentage = s.DiscountPercentage
	m.PaidAmount = s.PaidAmount
	m.ChangeAmount = s.ChangeAmount
	m.ReturnedAmount = s.ReturnedAmount
	m.PaymentStatus = s.PaymentStatus
	m.SaleDate = s.SaleDate
	m.Notes = s.Notes
	m.Items = make([]SaleItemModel, len(s.Items))
	for i := range s.Items {
		m.Items[i].FromDomain(&s.Items[i])
	}
}

// SaleModelFromDomain creates a new persistence model from a domain Sale entity.
func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// allocationRecord is the stored shape of one lot drawn for a sale line
type allocationRecord struct {
	BatchID     uuid.UUID `json:"batch_id"`
	BatchNumber string    `json:"batch_number"`
	Quantity    int       `json:"quantity"`
}

// SaleItemModel is the persistence model for a sale line.
// The lots a line was drawn from are kept as JSON text.
type SaleItemModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName     string          `gorm:"type:varchar(200);not null"`
	Quantity        int             `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	BatchID         *uuid.UUID      `gorm:"type:uuid"`
	AllocationsJSON string          `gorm:"column:allocations;type:text"`
	CreatedAt       time.Time       `gorm:"not null"`

	// ReturnedQuantity is filled by the repository from completed returns
	ReturnedQuantity int `gorm:"-"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain SaleItem.
func (m *SaleItemModel) ToDomain() *trade.SaleItem {
	item := &trade.SaleItem{
		ID:               m.ID,
		SaleID:           m.SaleID,
		ProductID:        m.ProductID,
		ProductName:      m.ProductName,
		Quantity:         m.Quantity,
		UnitPrice:        m.UnitPrice,
		TotalPrice:       m.TotalPrice,
		CostPrice:        m.CostPrice,
		BatchID:          m.BatchID,
		ReturnedQuantity: m.ReturnedQuantity,
		CreatedAt:        m.CreatedAt,
	}
	if m.AllocationsJSON != "" && m.AllocationsJSON != "[]" {
		var records []allocationRecord
		if err := json.Unmarshal([]byte(m.AllocationsJSON), &records); err != nil {
			modelLogger.Warn("failed to parse sale item allocations",
				zap.String("sale_item_id", m.ID.String()),
				zap.String("raw_json", m.AllocationsJSON),
				zap.Error(err))
		} else {
			item.Allocations = make([]trade.SaleItemAllocation, len(records))
			for i, r := range records {
				item.Allocations[i] = trade.SaleItemAllocation{BatchID: r.BatchID, BatchNumber: r.BatchNumber, Quantity: r.Quantity}
			}
		}
	}
	return item
}

// FromDomain populates the persistence model from a domain SaleItem.
func (m *SaleItemModel) FromDomain(i *trade.SaleItem) {
	m.ID = i.ID
	m.SaleID = i.SaleID
	m.ProductID = i.ProductID
	m.ProductName = i.ProductName
	m.Quantity = i.Quantity
	m.UnitPrice = i.UnitPrice
	m.TotalPrice = i.TotalPrice
	m.CostPrice = i.CostPrice
	m.BatchID = i.BatchID
	m.ReturnedQuantity = i.ReturnedQuantity
	m.CreatedAt = i.CreatedAt

	m.AllocationsJSON = "[]"
	if len(i.Allocations) > 0 {
		records := make([]allocationRecord, len(i.Allocations))
		for k, a := range i.Allocations {
			records[k] = allocationRecord{BatchID: a.BatchID, BatchNumber: a.BatchNumber, Quantity: a.Quantity}
		}
		if jsonBytes, err := json.Marshal(records); err == nil {
			m.AllocationsJSON = string(jsonBytes)
		}
	}
}

// SaleReturnModel is the persistence model for the SaleReturn aggregate root.
type SaleReturnModel struct {
	AggregateModel
	ReturnNumber      string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	SaleID            uuid.UUID              `gorm:"type:uuid;not null;index"`
	InvoiceNumber     string                 `gorm:"type:varchar(50);not null"`
	CustomerID        *uuid.UUID             `gorm:"type:uuid;index"`
	ReturnType        trade.SaleReturnType   `gorm:"type:varchar(20);not null"`
	Reason            trade.SaleReturnReason `gorm:"type:varchar(20);not null"`
	Status            trade.SaleReturnStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	RefundAmount      decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	BalanceAmount     decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	ExchangeProductID *uuid.UUID             `gorm:"type:uuid"`
	ExchangeQuantity  int                    `gorm:"not null;default:0"`
	ExchangeValue     decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	Description       string                 `gorm:"type:text"`
	ProcessedAt       *time.Time
	Items             []SaleReturnItemModel `gorm:"foreignKey:SaleReturnID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleReturnModel) TableName() string {
	return "sale_returns"
}

// ToDomain converts the persistence model to a domain SaleReturn entity.
func (m *SaleReturnModel) ToDomain() *trade.SaleReturn {
	ret := &trade.SaleReturn{
		BaseAggregateRoot: m.Root(),
		ReturnNumber:      m.ReturnNumber,
		SaleID:            m.SaleID,
		InvoiceNumber:     m.InvoiceNumber,
		CustomerID:        m.CustomerID,
		ReturnType:        m.ReturnType,
		Reason:            m.Reason,
		Status:            m.Status,
		RefundAmount:      m.RefundAmount,
		BalanceAmount:     m.BalanceAmount,
		ExchangeProductID: m.ExchangeProductID,
		ExchangeQuantity:  m.ExchangeQuantity,
		ExchangeValue:     m.ExchangeValue,
		Description:       m.Description,
		ProcessedAt:       m.ProcessedAt,
		Items:             make([]trade.SaleReturnItem, len(m.Items)),
	}
	for i := range m.Items {
		ret.Items[i] = *m.Items[i].ToDomain()
	}
	return ret
}

// FromDomain populates the persistence model from a domain SaleReturn entity.
func (m *SaleReturnModel) FromDomain(r *trade.SaleReturn) {
	m.SetRoot(r.BaseAggregateRoot)
	m.ReturnNumber = r.ReturnNumber
	m.SaleID = r.SaleID
	m.InvoiceNumber = r.InvoiceNumber
	m.CustomerID = r.CustomerID
	m.ReturnType = r.ReturnType
	m.Reason = r.Reason
	m.Status = r.Status
	m.RefundAmount = r.RefundAmount
	m.BalanceAmount = r.BalanceAmount
	m.ExchangeProductID = r.ExchangeProductID
	m.ExchangeQuantity = r.ExchangeQuantity
	m.ExchangeValue = r.ExchangeValue
	m.Description = r.Description
	m.ProcessedAt = r.ProcessedAt
	m.Items = make([]SaleReturnItemModel, len(r.Items))
	for i := range r.Items {
		m.Items[i].FromDomain(&r.Items[i])
	}
}

// SaleReturnModelFromDomain creates a new persistence model from a domain SaleReturn entity.
func SaleReturnModelFromDomain(r *trade.SaleReturn) *SaleReturnModel {
	m := &SaleReturnModel{}
	m.FromDomain(r)
	return m
}

// SaleReturnItemModel is the persistence model for a customer return line.
type SaleReturnItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleReturnID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleItemID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null"`
	BatchID      *uuid.UUID      `gorm:"type:uuid"`
	Quantity     int             `gorm:"not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleReturnItemModel) TableName() string {
	return "sale_return_items"
}

// ToDomain converts the persistence model to a domain SaleReturnItem.
func (m *SaleReturnItemModel) ToDomain() *trade.SaleReturnItem {
	return &trade.SaleReturnItem{
		ID:           m.ID,
		SaleReturnID: m.SaleReturnID,
		SaleItemID:   m.SaleItemID,
		ProductID:    m.ProductID,
		BatchID:      m.BatchID,
		Quantity:     m.Quantity,
		UnitPrice:    m.UnitPrice,
		TotalPrice:   m.TotalPrice,
		CreatedAt:    m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain SaleReturnItem.
func (m *SaleReturnItemModel) FromDomain(i *trade.SaleReturnItem) {
	m.ID = i.ID
	m.SaleReturnID = i.SaleReturnID
	m.SaleItemID = i.SaleItemID
	m.ProductID = i.ProductID
	m.BatchID = i.BatchID
	m.Quantity = i.Quantity
	m.UnitPrice = i.UnitPrice
	m.TotalPrice = i.TotalPrice
	m.CreatedAt = i.CreatedAt
}
