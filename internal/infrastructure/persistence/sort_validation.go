package persistence

import (
	"strings"

	"github.com/shopman/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// withCommon extends a whitelist with the base entity columns
func withCommon(fields ...string) map[string]bool {
	allowed := map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
	}
	for _, f := range fields {
		allowed[f] = true
	}
	return allowed
}

// Allowed sort fields per table
var (
	CategorySortFields       = withCommon("name")
	SupplierSortFields       = withCommon("name", "contact_person")
	CustomerSortFields       = withCommon("name", "phone", "total_due", "credit_limit")
	ProductSortFields        = withCommon("name", "sku", "barcode", "current_stock", "selling_price", "cost_price")
	BatchSortFields          = withCommon("batch_number", "expiry_date", "current_quantity")
	PurchaseOrderSortFields  = withCommon("po_number", "order_date", "expected_date", "total_amount", "status")
	PurchaseReturnSortFields = withCommon("return_number", "return_date", "return_amount", "status")
	SaleSortFields           = withCommon("invoice_number", "sale_date", "total_amount", "payment_status")
	SaleReturnSortFields     = withCommon("return_number", "refund_amount", "status")
	SupplierBillSortFields   = withCommon("bill_number", "bill_date", "due_date", "due_amount", "status")
)

// applyOrderAndPage applies whitelisted ordering and pagination.
// A PageSize of zero means no limit.
func applyOrderAndPage(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// likePattern builds a case-insensitive LIKE argument that works on both postgres and sqlite
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
