package api

import (
	"strings"

	"github.com/kwamkid/joolz-factory-sub002/internal/http/handlers/shared"
	"github.com/kwamkid/joolz-factory-sub002/internal/http/response"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"
	"github.com/kwamkid/joolz-factory-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

// addressRequest 收货地址请求
type addressRequest struct {
	Label        string `json:"label"`
	AddressLine  string `json:"address_line"`
	District     string `json:"district"`
	Province     string `json:"province"`
	PostalCode   string `json:"postal_code"`
	ContactPhone string `json:"contact_phone"`
	IsDefault    bool   `json:"is_default"`
}

// createCustomerRequest 创建客户请求
type createCustomerRequest struct {
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	ContactName string           `json:"contact_name"`
	Phone       string           `json:"phone"`
	Email       string           `json:"email"`
	BranchID    *uint            `json:"branch_id"`
	Notes       string           `json:"notes"`
	Addresses   []addressRequest `json:"addresses"`
}

// updateCustomerRequest 更新客户请求
type updateCustomerRequest struct {
	Code        *string `json:"code"`
	Name        *string `json:"name"`
	ContactName *string `json:"contact_name"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	BranchID    *uint   `json:"branch_id"`
	Notes       *string `json:"notes"`
	IsActive    *bool   `json:"is_active"`
}

// updateAddressRequest 更新收货地址请求
type updateAddressRequest struct {
	Label        *string `json:"label"`
	AddressLine  *string `json:"address_line"`
	District     *string `json:"district"`
	Province     *string `json:"province"`
	PostalCode   *string `json:"postal_code"`
	ContactPhone *string `json:"contact_phone"`
	IsDefault    *bool   `json:"is_default"`
}

// linkChatContactRequest 绑定聊天联系人请求
type linkChatContactRequest struct {
	ChatContactID  uint   `json:"chat_contact_id"`
	ProviderUserID string `json:"provider_user_id"`
	DisplayName    string `json:"display_name"`
	PictureURL     string `json:"picture_url"`
}

func addressInputsFromRequest(addresses []addressRequest) []service.AddressInput {
	inputs := make([]service.AddressInput, 0, len(addresses))
	for _, address := range addresses {
		inputs = append(inputs, service.AddressInput{
			Label:        address.Label,
			AddressLine:  address.AddressLine,
			District:     address.District,
			Province:     address.Province,
			PostalCode:   address.PostalCode,
			ContactPhone: address.ContactPhone,
			IsDefault:    address.IsDefault,
		})
	}
	return inputs
}

// ListCustomers 客户列表
func (h *Handler) ListCustomers(c *gin.Context) {
	page, limit := shared.ParsePagination(c)
	filter := repository.CustomerListFilter{
		Page:     page,
		PageSize: limit,
		Search:   strings.TrimSpace(c.Query("search")),
		BranchID: shared.ParseUintQuery(c, "branch_id"),
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		active := raw == "true" || raw == "1"
		filter.IsActive = &active
	}

	customers, total, err := h.CustomerService.ListCustomers(filter)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.Paginated(c, "customers", customers, response.NewPagination(page, limit, total))
}

// GetCustomer 客户详情
func (h *Handler) GetCustomer(c *gin.Context) {
	customerID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid customer id")
		return
	}
	customer, err := h.CustomerService.GetCustomer(customerID)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"customer": customer})
}

// CreateCustomer 创建客户
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	customer, err := h.CustomerService.CreateCustomer(service.CreateCustomerInput{
		Code:        req.Code,
		Name:        req.Name,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Email:       req.Email,
		BranchID:    req.BranchID,
		Notes:       req.Notes,
		CreatedBy:   shared.CurrentUserID(c),
		Addresses:   addressInputsFromRequest(req.Addresses),
	})
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "customer": customer, "id": customer.ID})
}

// UpdateCustomer 更新客户
func (h *Handler) UpdateCustomer(c *gin.Context) {
	customerID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid customer id")
		return
	}
	var req updateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	customer, err := h.CustomerService.UpdateCustomer(customerID, service.UpdateCustomerInput{
		Code:        req.Code,
		Name:        req.Name,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Email:       req.Email,
		BranchID:    req.BranchID,
		Notes:       req.Notes,
		IsActive:    req.IsActive,
	})
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "customer": customer})
}

// ListCustomerOrders 客户订单列表
func (h *Handler) ListCustomerOrders(c *gin.Context) {
	customerID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid customer id")
		return
	}
	page, limit := shared.ParsePagination(c)
	orders, total, err := h.OrderService.ListOrdersByCustomer(customerID, page, limit)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.Paginated(c, "orders", orders, response.NewPagination(page, limit, total))
}

// LinkChatContact 绑定聊天联系人
func (h *Handler) LinkChatContact(c *gin.Context) {
	customerID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid customer id")
		return
	}
	var req linkChatContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	customer, err := h.CustomerService.LinkChatContact(customerID, service.LinkChatContactInput{
		ChatContactID:  req.ChatContactID,
		ProviderUserID: req.ProviderUserID,
		DisplayName:    req.DisplayName,
		PictureURL:     req.PictureURL,
	})
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "customer": customer})
}

// UnlinkChatContact 解绑聊天联系人
func (h *Handler) UnlinkChatContact(c *gin.Context) {
	customerID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid customer id")
		return
	}
	customer, err := h.CustomerService.UnlinkChatContact(customerID)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "customer": customer})
}

// ListAddresses 客户收货地址列表
func (h *Handler) ListAddresses(c *gin.Context) {
	customerID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid customer id")
		return
	}
	addresses, err := h.CustomerService.ListAddresses(customerID)
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"addresses": addresses})
}

// CreateAddress 新增收货地址
func (h *Handler) CreateAddress(c *gin.Context) {
	customerID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid customer id")
		return
	}
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	address, err := h.CustomerService.CreateAddress(customerID, service.AddressInput{
		Label:        req.Label,
		AddressLine:  req.AddressLine,
		District:     req.District,
		Province:     req.Province,
		PostalCode:   req.PostalCode,
		ContactPhone: req.ContactPhone,
		IsDefault:    req.IsDefault,
	})
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "address": address, "id": address.ID})
}

// UpdateAddress 更新收货地址
func (h *Handler) UpdateAddress(c *gin.Context) {
	customerID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid customer id")
		return
	}
	addressID, ok := shared.ParseUintParam(c, "addressId")
	if !ok {
		response.BadRequest(c, "Invalid address id")
		return
	}
	var req updateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	address, err := h.CustomerService.UpdateAddress(customerID, addressID, service.UpdateAddressInput{
		Label:        req.Label,
		AddressLine:  req.AddressLine,
		District:     req.District,
		Province:     req.Province,
		PostalCode:   req.PostalCode,
		ContactPhone: req.ContactPhone,
		IsDefault:    req.IsDefault,
	})
	if err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "address": address})
}

// DeleteAddress 删除收货地址
func (h *Handler) DeleteAddress(c *gin.Context) {
	customerID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid customer id")
		return
	}
	addressID, ok := shared.ParseUintParam(c, "addressId")
	if !ok {
		response.BadRequest(c, "Invalid address id")
		return
	}
	if err := h.CustomerService.DeleteAddress(customerID, addressID); err != nil {
		shared.WriteError(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}
