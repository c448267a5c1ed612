package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/kwamkid/joolz-factory-sub002/internal/logger"
	"github.com/kwamkid/joolz-factory-sub002/internal/models"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"

	"gorm.io/gorm"
)

// CustomerService 客户服务
type CustomerService struct {
	customerRepo    repository.CustomerRepository
	addressRepo     repository.AddressRepository
	chatContactRepo repository.ChatContactRepository
	branchRepo      repository.BranchRepository
	metricsRepo     repository.MetricsRepository
}

// NewCustomerService 创建客户服务
func NewCustomerService(customerRepo repository.CustomerRepository, addressRepo repository.AddressRepository, chatContactRepo repository.ChatContactRepository, branchRepo repository.BranchRepository, metricsRepo repository.MetricsRepository) *CustomerService {
	return &CustomerService{
		customerRepo:    customerRepo,
		addressRepo:     addressRepo,
		chatContactRepo: chatContactRepo,
		branchRepo:      branchRepo,
		metricsRepo:     metricsRepo,
	}
}

// CustomerListEntry 客户列表项
type CustomerListEntry struct {
	models.Customer
	BranchName  string              `json:"branch_name,omitempty"`
	ChatContact *models.ChatContact `json:"chat_contact,omitempty"`
}

// CustomerStats 客户订单派生指标
type CustomerStats struct {
	TotalOrders           int          `json:"total_orders"`
	TotalSpent            models.Money `json:"total_spent"`
	LastOrderDate         *time.Time   `json:"last_order_date"`
	DaysSinceLastOrder    *int         `json:"days_since_last_order"`
	AvgOrderFrequencyDays *int         `json:"avg_order_frequency_days"`
	FollowUpLevel         string       `json:"follow_up_level,omitempty"`
}

// CustomerDetail 客户详情
type CustomerDetail struct {
	models.Customer
	BranchName  string              `json:"branch_name,omitempty"`
	ChatContact *models.ChatContact `json:"chat_contact,omitempty"`
	Stats       CustomerStats       `json:"stats"`
}

// AddressInput 收货地址输入
type AddressInput struct {
	Label        string
	AddressLine  string
	District     string
	Province     string
	PostalCode   string
	ContactPhone string
	IsDefault    bool
}

// UpdateAddressInput 收货地址更新输入
type UpdateAddressInput struct {
	Label        *string
	AddressLine  *string
	District     *string
	Province     *string
	PostalCode   *string
	ContactPhone *string
	IsDefault    *bool
}

// CreateCustomerInput 创建客户输入
type CreateCustomerInput struct {
	Code        string
	Name        string
	ContactName string
	Phone       string
	Email       string
	BranchID    *uint
	Notes       string
	CreatedBy   string
	Addresses   []AddressInput
}

// UpdateCustomerInput 更新客户输入
type UpdateCustomerInput struct {
	Code        *string
	Name        *string
	ContactName *string
	Phone       *string
	Email       *string
	BranchID    *uint
	Notes       *string
	IsActive    *bool
}

// LinkChatContactInput 绑定聊天联系人输入
// ChatContactID 与 ProviderUserID 二选一，后者不存在时自动建档。
type LinkChatContactInput struct {
	ChatContactID  uint
	ProviderUserID string
	DisplayName    string
	PictureURL     string
}

// ListCustomers 客户列表
func (s *CustomerService) ListCustomers(filter repository.CustomerListFilter) ([]CustomerListEntry, int64, error) {
	customers, total, err := s.customerRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	entries, err := s.decorateCustomers(customers)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// GetCustomer 客户详情，附带订单派生指标
func (s *CustomerService) GetCustomer(customerID uint) (*CustomerDetail, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	entries, err := s.decorateCustomers([]models.Customer{*customer})
	if err != nil {
		return nil, err
	}
	detail := &CustomerDetail{
		Customer:    entries[0].Customer,
		BranchName:  entries[0].BranchName,
		ChatContact: entries[0].ChatContact,
	}

	rows, err := s.metricsRepo.ListOrderRowsByCustomer(customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	stats := aggregateOrderRows(rows)
	entry := buildFollowUpEntry(*customer, stats[customerID], time.Now())
	detail.Stats = CustomerStats{
		TotalOrders:           entry.TotalOrders,
		TotalSpent:            entry.TotalSpent,
		LastOrderDate:         entry.LastOrderDate,
		DaysSinceLastOrder:    entry.DaysSinceLastOrder,
		AvgOrderFrequencyDays: entry.AvgOrderFrequencyDays,
		FollowUpLevel:         entry.FollowUpLevel,
	}
	return detail, nil
}

// CreateCustomer 创建客户，可同时写入初始收货地址
func (s *CustomerService) CreateCustomer(input CreateCustomerInput) (*models.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, newValidationError("Customer name is required")
	}
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		generated, err := s.generateCustomerCode()
		if err != nil {
			return nil, err
		}
		code = generated
	} else {
		taken, err := s.customerRepo.CountByCode(code, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
		}
		if taken > 0 {
			return nil, ErrCustomerCodeTaken
		}
	}
	if input.BranchID != nil {
		if err := s.ensureBranchExists(*input.BranchID); err != nil {
			return nil, err
		}
	}
	for i, address := range input.Addresses {
		if strings.TrimSpace(address.AddressLine) == "" {
			return nil, newValidationError("Address line is required for address #%d", i+1)
		}
	}

	customer := &models.Customer{
		Code:        code,
		Name:        name,
		ContactName: strings.TrimSpace(input.ContactName),
		Phone:       strings.TrimSpace(input.Phone),
		Email:       strings.TrimSpace(input.Email),
		BranchID:    input.BranchID,
		Notes:       input.Notes,
		IsActive:    true,
		CreatedBy:   input.CreatedBy,
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		customerRepo := s.customerRepo.WithTx(tx)
		if err := customerRepo.Create(customer); err != nil {
			return err
		}
		addressRepo := s.addressRepo.WithTx(tx)
		defaultSeen := false
		for i, in := range input.Addresses {
			isDefault := in.IsDefault || (i == 0 && !hasDefaultAddress(input.Addresses))
			if isDefault && defaultSeen {
				isDefault = false
			}
			if isDefault {
				defaultSeen = true
			}
			address := &models.ShippingAddress{
				CustomerID:   customer.ID,
				Label:        strings.TrimSpace(in.Label),
				AddressLine:  strings.TrimSpace(in.AddressLine),
				District:     strings.TrimSpace(in.District),
				Province:     strings.TrimSpace(in.Province),
				PostalCode:   strings.TrimSpace(in.PostalCode),
				ContactPhone: strings.TrimSpace(in.ContactPhone),
				IsDefault:    isDefault,
			}
			if err := addressRepo.Create(address); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Warnw("customer_create_failed", "code", code, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCustomerWriteFailed, err)
	}

	logger.Infow("customer_created", "customer_id", customer.ID, "code", customer.Code)
	return s.customerRepo.GetByID(customer.ID)
}

// UpdateCustomer 更新客户资料
func (s *CustomerService) UpdateCustomer(customerID uint, input UpdateCustomerInput) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	updates := map[string]interface{}{}
	if input.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*input.Code))
		if code == "" {
			return nil, newValidationError("Customer code must not be empty")
		}
		if code != customer.Code {
			taken, err := s.customerRepo.CountByCode(code, customerID)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
			}
			if taken > 0 {
				return nil, ErrCustomerCodeTaken
			}
			updates["code"] = code
		}
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, newValidationError("Customer name must not be empty")
		}
		updates["name"] = name
	}
	if input.ContactName != nil {
		updates["contact_name"] = strings.TrimSpace(*input.ContactName)
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.Email != nil {
		updates["email"] = strings.TrimSpace(*input.Email)
	}
	if input.BranchID != nil {
		if *input.BranchID != 0 {
			if err := s.ensureBranchExists(*input.BranchID); err != nil {
				return nil, err
			}
			updates["branch_id"] = *input.BranchID
		} else {
			updates["branch_id"] = nil
		}
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) == 0 {
		return customer, nil
	}
	if err := s.customerRepo.UpdateFields(customerID, updates); err != nil {
		logger.Warnw("customer_update_failed", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCustomerWriteFailed, err)
	}
	return s.customerRepo.GetByID(customerID)
}

// LinkChatContact 绑定聊天联系人，不存在时按平台用户 ID 自动建档
func (s *CustomerService) LinkChatContact(customerID uint, input LinkChatContactInput) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	var contact *models.ChatContact
	switch {
	case input.ChatContactID != 0:
		contact, err = s.chatContactRepo.GetByID(input.ChatContactID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
		}
		if contact == nil {
			return nil, ErrChatContactNotFound
		}
	case strings.TrimSpace(input.ProviderUserID) != "":
		providerUserID := strings.TrimSpace(input.ProviderUserID)
		contact, err = s.chatContactRepo.GetByProviderUserID(providerUserID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
		}
		if contact == nil {
			contact = &models.ChatContact{
				ProviderUserID: providerUserID,
				DisplayName:    strings.TrimSpace(input.DisplayName),
				PictureURL:     strings.TrimSpace(input.PictureURL),
			}
			if err := s.chatContactRepo.Create(contact); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCustomerWriteFailed, err)
			}
		}
	default:
		return nil, newValidationError("chat_contact_id or provider_user_id is required")
	}

	linked, err := s.customerRepo.CountByChatContactID(contact.ID, customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	if linked > 0 {
		return nil, ErrChatContactLinked
	}

	if err := s.customerRepo.UpdateFields(customerID, map[string]interface{}{"chat_contact_id": contact.ID}); err != nil {
		logger.Warnw("customer_link_chat_failed", "customer_id", customerID, "chat_contact_id", contact.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCustomerWriteFailed, err)
	}
	logger.Infow("customer_chat_linked", "customer_id", customerID, "chat_contact_id", contact.ID)
	return s.customerRepo.GetByID(customerID)
}

// UnlinkChatContact 解绑聊天联系人
func (s *CustomerService) UnlinkChatContact(customerID uint) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	if customer.ChatContactID == nil {
		return customer, nil
	}
	if err := s.customerRepo.UpdateFields(customerID, map[string]interface{}{"chat_contact_id": nil}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCustomerWriteFailed, err)
	}
	return s.customerRepo.GetByID(customerID)
}

// ListAddresses 客户收货地址列表
func (s *CustomerService) ListAddresses(customerID uint) ([]models.ShippingAddress, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	addresses, err := s.addressRepo.ListByCustomer(customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	return addresses, nil
}

// CreateAddress 新增收货地址，设为默认时清除同客户旧默认
func (s *CustomerService) CreateAddress(customerID uint, input AddressInput) (*models.ShippingAddress, error) {
	customer, err := s.customerRepo.GetByID(customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	if strings.TrimSpace(input.AddressLine) == "" {
		return nil, newValidationError("Address line is required")
	}

	address := &models.ShippingAddress{
		CustomerID:   customerID,
		Label:        strings.TrimSpace(input.Label),
		AddressLine:  strings.TrimSpace(input.AddressLine),
		District:     strings.TrimSpace(input.District),
		Province:     strings.TrimSpace(input.Province),
		PostalCode:   strings.TrimSpace(input.PostalCode),
		ContactPhone: strings.TrimSpace(input.ContactPhone),
		IsDefault:    input.IsDefault,
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.addressRepo.WithTx(tx)
		if input.IsDefault {
			if err := repo.ClearDefault(customerID); err != nil {
				return err
			}
		}
		return repo.Create(address)
	})
	if err != nil {
		logger.Warnw("address_create_failed", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCustomerWriteFailed, err)
	}
	return address, nil
}

// UpdateAddress 更新收货地址，校验归属
func (s *CustomerService) UpdateAddress(customerID, addressID uint, input UpdateAddressInput) (*models.ShippingAddress, error) {
	address, err := s.addressRepo.GetByID(addressID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	if address == nil || address.CustomerID != customerID {
		return nil, ErrAddressNotFound
	}

	if input.Label != nil {
		address.Label = strings.TrimSpace(*input.Label)
	}
	if input.AddressLine != nil {
		line := strings.TrimSpace(*input.AddressLine)
		if line == "" {
			return nil, newValidationError("Address line must not be empty")
		}
		address.AddressLine = line
	}
	if input.District != nil {
		address.District = strings.TrimSpace(*input.District)
	}
	if input.Province != nil {
		address.Province = strings.TrimSpace(*input.Province)
	}
	if input.PostalCode != nil {
		address.PostalCode = strings.TrimSpace(*input.PostalCode)
	}
	if input.ContactPhone != nil {
		address.ContactPhone = strings.TrimSpace(*input.ContactPhone)
	}
	makeDefault := input.IsDefault != nil && *input.IsDefault && !address.IsDefault
	if input.IsDefault != nil {
		address.IsDefault = *input.IsDefault
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.addressRepo.WithTx(tx)
		if makeDefault {
			if err := repo.ClearDefault(customerID); err != nil {
				return err
			}
		}
		return repo.Update(address)
	})
	if err != nil {
		logger.Warnw("address_update_failed", "address_id", addressID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCustomerWriteFailed, err)
	}
	return address, nil
}

// DeleteAddress 删除收货地址，校验归属
func (s *CustomerService) DeleteAddress(customerID, addressID uint) error {
	address, err := s.addressRepo.GetByID(addressID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	if address == nil || address.CustomerID != customerID {
		return ErrAddressNotFound
	}
	if err := s.addressRepo.Delete(addressID); err != nil {
		logger.Warnw("address_delete_failed", "address_id", addressID, "error", err)
		return fmt.Errorf("%w: %v", ErrCustomerWriteFailed, err)
	}
	return nil
}

// decorateCustomers 批量回填门店名称与聊天联系人
func (s *CustomerService) decorateCustomers(customers []models.Customer) ([]CustomerListEntry, error) {
	branchIDs := make([]uint, 0)
	contactIDs := make([]uint, 0)
	seenBranches := make(map[uint]bool)
	seenContacts := make(map[uint]bool)
	for _, customer := range customers {
		if customer.BranchID != nil && !seenBranches[*customer.BranchID] {
			seenBranches[*customer.BranchID] = true
			branchIDs = append(branchIDs, *customer.BranchID)
		}
		if customer.ChatContactID != nil && !seenContacts[*customer.ChatContactID] {
			seenContacts[*customer.ChatContactID] = true
			contactIDs = append(contactIDs, *customer.ChatContactID)
		}
	}

	branches := make(map[uint]models.Branch)
	if len(branchIDs) > 0 {
		rows, err := s.branchRepo.ListByIDs(branchIDs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
		}
		for _, row := range rows {
			branches[row.ID] = row
		}
	}
	contacts := make(map[uint]models.ChatContact)
	if len(contactIDs) > 0 {
		rows, err := s.chatContactRepo.ListByIDs(contactIDs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
		}
		for _, row := range rows {
			contacts[row.ID] = row
		}
	}

	entries := make([]CustomerListEntry, 0, len(customers))
	for _, customer := range customers {
		entry := CustomerListEntry{Customer: customer}
		if customer.BranchID != nil {
			if branch, ok := branches[*customer.BranchID]; ok {
				entry.BranchName = branch.Name
			}
		}
		if customer.ChatContactID != nil {
			if contact, ok := contacts[*customer.ChatContactID]; ok {
				c := contact
				entry.ChatContact = &c
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// generateCustomerCode 生成客户编码，冲突时重试
func (s *CustomerService) generateCustomerCode() (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code := fmt.Sprintf("CU%s", randNumeric(6))
		taken, err := s.customerRepo.CountByCode(code, 0)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
		}
		if taken == 0 {
			return code, nil
		}
	}
	return fmt.Sprintf("CU%s%s", time.Now().Format("060102150405"), randNumeric(2)), nil
}

func (s *CustomerService) ensureBranchExists(branchID uint) error {
	branch, err := s.branchRepo.GetByID(branchID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCustomerFetchFailed, err)
	}
	if branch == nil {
		return ErrBranchNotFound
	}
	return nil
}

func hasDefaultAddress(addresses []AddressInput) bool {
	for _, address := range addresses {
		if address.IsDefault {
			return true
		}
	}
	return false
}
