package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/finance"
	"github.com/shopman/backend/internal/domain/partner"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo   partner.CustomerRepository
	saleRepo       trade.SaleRepository
	duePaymentRepo finance.DuePaymentRepository
	logger         *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	customerRepo partner.CustomerRepository,
	saleRepo trade.SaleRepository,
	duePaymentRepo finance.DuePaymentRepository,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo:   customerRepo,
		saleRepo:       saleRepo,
		duePaymentRepo: duePaymentRepo,
		logger:         logger,
	}
}

// Register creates a customer; phone numbers are unique
func (s *CustomerService) Register(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	exists, err := s.customerRepo.ExistsByPhone(ctx, req.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Customer with this phone already exists")
	}

	customer, err := partner.NewCustomer(req.Name, req.Phone)
	if err != nil {
		return nil, err
	}
	if req.Email != "" || req.Address != "" {
		if err := customer.Update(customer.Name, customer.Phone, req.Email, req.Address); err != nil {
			return nil, err
		}
	}
	if req.CreditLimit != nil {
		if err := customer.SetCreditLimit(*req.CreditLimit); err != nil {
			return nil, err
		}
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	s.logger.Info("customer registered",
		zap.String("customer_id", customer.ID.String()),
		zap.String("phone", customer.Phone))

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetByPhone finds the customer behind a phone number typed at the till
func (s *CustomerService) GetByPhone(ctx context.Context, phone string) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// List retrieves a page of customers
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.OrderBy = "name"
	domainFilter.OrderDir = "asc"
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	if filter.WithDue {
		domainFilter.Filters["with_due"] = true
	}

	customers, err := s.customerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, ToCustomerResponse(&customers[i]))
	}
	return out, total, nil
}

// Update applies a partial update. The due balance is never writable here.
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Phone != nil && *req.Phone != customer.Phone {
		exists, err := s.customerRepo.ExistsByPhone(ctx, *req.Phone)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Customer with this phone already exists")
		}
	}

	name, phone, email, address := customer.Name, customer.Phone, customer.Email, customer.Address
	if req.Name != nil {
		name = *req.Name
	}
	if req.Phone != nil {
		phone = *req.Phone
	}
	if req.Email != nil {
		email = *req.Email
	}
	if req.Address != nil {
		address = *req.Address
	}
	if err := customer.Update(name, phone, email, address); err != nil {
		return nil, err
	}
	if req.CreditLimit != nil {
		if err := customer.SetCreditLimit(*req.CreditLimit); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		if *req.IsActive {
			customer.Activate()
		} else {
			customer.Deactivate()
		}
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetDueDetails lists the customer's open invoices oldest first, with payment history
func (s *CustomerService) GetDueDetails(ctx context.Context, id uuid.UUID) (*CustomerDueDetails, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sales, err := s.saleRepo.FindOpenByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.duePaymentRepo.FindByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	details := &CustomerDueDetails{
		Customer:    ToCustomerResponse(customer),
		OpenSales:   make([]OpenSale, 0, len(sales)),
		Payments:    make([]DuePaymentSummary, 0, len(payments)),
		OpenTotal:   decimal.Zero,
		CreditAlert: !customer.CanMakeCreditSale(),
	}
	for i := range sales {
		sale := &sales[i]
		details.OpenSales = append(details.OpenSales, OpenSale{
			SaleID:        sale.ID,
			InvoiceNumber: sale.InvoiceNumber,
			SaleDate:      sale.SaleDate,
			TotalAmount:   sale.TotalAmount,
			PaidAmount:    sale.PaidAmount,
			DueAmount:     sale.RemainingDue(),
			PaymentStatus: sale.PaymentStatus,
		})
		details.OpenTotal = details.OpenTotal.Add(sale.RemainingDue())
	}
	for i := range payments {
		details.Payments = append(details.Payments, ToDuePaymentSummary(&payments[i]))
	}
	return details, nil
}
