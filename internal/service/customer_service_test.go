package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kwamkid/joolz-factory-sub002/internal/models"
	"github.com/kwamkid/joolz-factory-sub002/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type customerTestEnv struct {
	db  *gorm.DB
	svc *CustomerService
}

func newCustomerTestEnv(t *testing.T, name string) *customerTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Branch{},
		&models.ChatContact{},
		&models.Customer{},
		&models.ShippingAddress{},
		&models.Order{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	svc := NewCustomerService(
		repository.NewCustomerRepository(db),
		repository.NewAddressRepository(db),
		repository.NewChatContactRepository(db),
		repository.NewBranchRepository(db),
		repository.NewMetricsRepository(db),
	)
	return &customerTestEnv{db: db, svc: svc}
}

func TestCreateCustomerGeneratesCode(t *testing.T) {
	env := newCustomerTestEnv(t, "customer_gen_code")

	customer, err := env.svc.CreateCustomer(CreateCustomerInput{Name: "Bangkok Juice Bar"})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	if !strings.HasPrefix(customer.Code, "CU") || len(customer.Code) != 8 {
		t.Fatalf("generated code want CU+6 digits, got %s", customer.Code)
	}
	if !customer.IsActive {
		t.Fatalf("new customer should be active")
	}
}

func TestCreateCustomerUppercasesCode(t *testing.T) {
	env := newCustomerTestEnv(t, "customer_upper_code")

	customer, err := env.svc.CreateCustomer(CreateCustomerInput{Code: " cust-0001 ", Name: "Bangkok Juice Bar"})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	if customer.Code != "CUST-0001" {
		t.Fatalf("code want CUST-0001 got %s", customer.Code)
	}
}

func TestCreateCustomerCodeTaken(t *testing.T) {
	env := newCustomerTestEnv(t, "customer_code_taken")

	if _, err := env.svc.CreateCustomer(CreateCustomerInput{Code: "CUST-0001", Name: "Bangkok Juice Bar"}); err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	_, err := env.svc.CreateCustomer(CreateCustomerInput{Code: "CUST-0001", Name: "Riverside Hotel Cafe"})
	if !errors.Is(err, ErrCustomerCodeTaken) {
		t.Fatalf("expected code taken, got: %v", err)
	}
}

func TestCreateCustomerNameRequired(t *testing.T) {
	env := newCustomerTestEnv(t, "customer_name_required")

	_, err := env.svc.CreateCustomer(CreateCustomerInput{Name: "   "})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got: %v", err)
	}
}

func TestCreateCustomerBranchMissing(t *testing.T) {
	env := newCustomerTestEnv(t, "customer_branch_missing")

	branchID := uint(99)
	_, err := env.svc.CreateCustomer(CreateCustomerInput{Name: "Bangkok Juice Bar", BranchID: &branchID})
	if !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("expected branch not found, got: %v", err)
	}
}

func TestCreateCustomerFirstAddressBecomesDefault(t *testing.T) {
	env := newCustomerTestEnv(t, "customer_addr_default")

	customer, err := env.svc.CreateCustomer(CreateCustomerInput{
		Name: "Bangkok Juice Bar",
		Addresses: []AddressInput{
			{Label: "Storefront", AddressLine: "88/12 Sukhumvit Soi 11"},
			{Label: "Warehouse", AddressLine: "45 Rama IV Rd"},
		},
	})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	addresses, err := env.svc.ListAddresses(customer.ID)
	if err != nil {
		t.Fatalf("list addresses failed: %v", err)
	}
	if len(addresses) != 2 {
		t.Fatalf("addresses want 2 got %d", len(addresses))
	}
	defaults := 0
	for _, address := range addresses {
		if address.IsDefault {
			defaults++
			if address.Label != "Storefront" {
				t.Fatalf("first address should be default, got %s", address.Label)
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("exactly one default expected, got %d", defaults)
	}
}

func TestCreateCustomerExplicitDefaultWins(t *testing.T) {
	env := newCustomerTestEnv(t, "customer_addr_explicit")

	customer, err := env.svc.CreateCustomer(CreateCustomerInput{
		Name: "Bangkok Juice Bar",
		Addresses: []AddressInput{
			{Label: "Storefront", AddressLine: "88/12 Sukhumvit Soi 11"},
			{Label: "Warehouse", AddressLine: "45 Rama IV Rd", IsDefault: true},
		},
	})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	addresses, err := env.svc.ListAddresses(customer.ID)
	if err != nil {
		t.Fatalf("list addresses failed: %v", err)
	}
	for _, address := range addresses {
		if address.Label == "Warehouse" && !address.IsDefault {
			t.Fatalf("explicitly marked address should be default")
		}
		if address.Label == "Storefront" && address.IsDefault {
			t.Fatalf("unmarked address should not be default when another is marked")
		}
	}
}

func TestUpdateCustomerCodeConflict(t *testing.T) {
	env := newCustomerTestEnv(t, "customer_update_code")

	first, err := env.svc.CreateCustomer(CreateCustomerInput{Code: "CUST-0001", Name: "Bangkok Juice Bar"})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	second, err := env.svc.CreateCustomer(CreateCustomerInput{Code: "CUST-0002", Name: "Riverside Hotel Cafe"})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	taken := "cust-0001"
	_, err = env.svc.UpdateCustomer(second.ID, UpdateCustomerInput{Code: &taken})
	if !errors.Is(err, ErrCustomerCodeTaken) {
		t.Fatalf("expected code taken, got: %v", err)
	}

	fresh := "cust-0003"
	updated, err := env.svc.UpdateCustomer(second.ID, UpdateCustomerInput{Code: &fresh})
	if err != nil {
		t.Fatalf("update customer failed: %v", err)
	}
	if updated.Code != "CUST-0003" {
		t.Fatalf("code want CUST-0003 got %s", updated.Code)
	}
	_ = first
}

func TestUpdateCustomerDeactivate(t *testing.T) {
	env := newCustomerTestEnv(t, "customer_deactivate")

	customer, err := env.svc.CreateCustomer(CreateCustomerInput{Name: "Bangkok Juice Bar"})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	inactive := false
	updated, err := env.svc.UpdateCustomer(customer.ID, UpdateCustomerInput{IsActive: &inactive})
	if err != nil {
		t.Fatalf("update customer failed: %v", err)
	}
	if updated.IsActive {
		t.Fatalf("customer should be inactive")
	}
}

func TestLinkChatContactAutoCreates(t *testing.T) {
	env := newCustomerTestEnv(t, "customer_chat_auto")

	customer, err := env.svc.CreateCustomer(CreateCustomerInput{Name: "Bangkok Juice Bar"})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	linked, err := env.svc.LinkChatContact(customer.ID, LinkChatContactInput{
		ProviderUserID: "U1234567890",
		DisplayName:    "Khun Somchai",
	})
	if err != nil {
		t.Fatalf("link chat contact failed: %v", err)
	}
	if linked.ChatContactID == nil {
		t.Fatalf("chat contact should be linked")
	}

	var contact models.ChatContact
	if err := env.db.First(&contact, *linked.ChatContactID).Error; err != nil {
		t.Fatalf("load contact failed: %v", err)
	}
	if contact.ProviderUserID != "U1234567890" || contact.DisplayName != "Khun Somchai" {
		t.Fatalf("contact not auto-created correctly: %+v", contact)
	}
}

func TestLinkChatContactAlreadyLinked(t *testing.T) {
	env := newCustomerTestEnv(t, "customer_chat_dup")

	first, err := env.svc.CreateCustomer(CreateCustomerInput{Name: "Bangkok Juice Bar"})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	second, err := env.svc.CreateCustomer(CreateCustomerInput{Name: "Riverside Hotel Cafe"})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	if _, err := env.svc.LinkChatContact(first.ID, LinkChatContactInput{ProviderUserID: "U1"}); err != nil {
		t.Fatalf("link chat contact failed: %v", err)
	}
	_, err = env.svc.LinkChatContact(second.ID, LinkChatContactInput{ProviderUserID: "U1"})
	if !errors.Is(err, ErrChatContactLinked) {
		t.Fatalf("expected already linked, got: %v", err)
	}
}

func TestLinkChatContactByIDMissing(t *testing.T) {
	env := newCustomerTestEnv(t, "customer_chat_missing")

	customer, err := env.svc.CreateCustomer(CreateCustomerInput{Name: "Bangkok Juice Bar"})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	_, err = env.svc.LinkChatContact(customer.ID, LinkChatContactInput{ChatContactID: 999})
	if !errors.Is(err, ErrChatContactNotFound) {
		t.Fatalf("expected contact not found, got: %v", err)
	}

	_, err = env.svc.LinkChatContact(customer.ID, LinkChatContactInput{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for empty input, got: %v", err)
	}
}

func TestUnlinkChatContactIdempotent(t *testing.T) {
	env := newCustomerTestEnv(t, "customer_chat_unlink")

	customer, err := env.svc.CreateCustomer(CreateCustomerInput{Name: "Bangkok Juice Bar"})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	if _, err := env.svc.LinkChatContact(customer.ID, LinkChatContactInput{ProviderUserID: "U1"}); err != nil {
		t.Fatalf("link chat contact failed: %v", err)
	}

	unlinked, err := env.svc.UnlinkChatContact(customer.ID)
	if err != nil {
		t.Fatalf("unlink failed: %v", err)
	}
	if unlinked.ChatContactID != nil {
		t.Fatalf("chat contact should be cleared")
	}

	again, err := env.svc.UnlinkChatContact(customer.ID)
	if err != nil {
		t.Fatalf("repeat unlink should be a no-op, got: %v", err)
	}
	if again.ChatContactID != nil {
		t.Fatalf("chat contact should stay cleared")
	}
}

func TestCreateAddressClearsOldDefault(t *testing.T) {
	env := newCustomerTestEnv(t, "customer_addr_swap")

	customer, err := env.svc.CreateCustomer(CreateCustomerInput{
		Name:      "Bangkok Juice Bar",
		Addresses: []AddressInput{{Label: "Storefront", AddressLine: "88/12 Sukhumvit Soi 11"}},
	})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	_, err = env.svc.CreateAddress(customer.ID, AddressInput{
		Label:       "Warehouse",
		AddressLine: "45 Rama IV Rd",
		IsDefault:   true,
	})
	if err != nil {
		t.Fatalf("create address failed: %v", err)
	}

	addresses, err := env.svc.ListAddresses(customer.ID)
	if err != nil {
		t.Fatalf("list addresses failed: %v", err)
	}
	for _, address := range addresses {
		switch address.Label {
		case "Storefront":
			if address.IsDefault {
				t.Fatalf("old default should be cleared")
			}
		case "Warehouse":
			if !address.IsDefault {
				t.Fatalf("new address should be default")
			}
		}
	}
}

func TestUpdateAddressOwnershipEnforced(t *testing.T) {
	env := newCustomerTestEnv(t, "customer_addr_owner")

	first, err := env.svc.CreateCustomer(CreateCustomerInput{
		Name:      "Bangkok Juice Bar",
		Addresses: []AddressInput{{AddressLine: "88/12 Sukhumvit Soi 11"}},
	})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	second, err := env.svc.CreateCustomer(CreateCustomerInput{Name: "Riverside Hotel Cafe"})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	addresses, err := env.svc.ListAddresses(first.ID)
	if err != nil {
		t.Fatalf("list addresses failed: %v", err)
	}
	line := "replaced"
	_, err = env.svc.UpdateAddress(second.ID, addresses[0].ID, UpdateAddressInput{AddressLine: &line})
	if !errors.Is(err, ErrAddressNotFound) {
		t.Fatalf("expected address not found for foreign customer, got: %v", err)
	}

	if err := env.svc.DeleteAddress(second.ID, addresses[0].ID); !errors.Is(err, ErrAddressNotFound) {
		t.Fatalf("expected address not found on foreign delete, got: %v", err)
	}
}

func TestDeleteAddress(t *testing.T) {
	env := newCustomerTestEnv(t, "customer_addr_delete")

	customer, err := env.svc.CreateCustomer(CreateCustomerInput{
		Name: "Bangkok Juice Bar",
		Addresses: []AddressInput{
			{Label: "Storefront", AddressLine: "88/12 Sukhumvit Soi 11"},
			{Label: "Warehouse", AddressLine: "45 Rama IV Rd"},
		},
	})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	addresses, err := env.svc.ListAddresses(customer.ID)
	if err != nil {
		t.Fatalf("list addresses failed: %v", err)
	}
	if err := env.svc.DeleteAddress(customer.ID, addresses[1].ID); err != nil {
		t.Fatalf("delete address failed: %v", err)
	}

	remaining, err := env.svc.ListAddresses(customer.ID)
	if err != nil {
		t.Fatalf("list addresses failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("addresses want 1 got %d", len(remaining))
	}
}

func TestGetCustomerIncludesStatsAndBranch(t *testing.T) {
	env := newCustomerTestEnv(t, "customer_detail")

	branch := models.Branch{Name: "Sukhumvit Branch", IsActive: true}
	if err := env.db.Create(&branch).Error; err != nil {
		t.Fatalf("create branch failed: %v", err)
	}
	customer, err := env.svc.CreateCustomer(CreateCustomerInput{
		Name:     "Bangkok Juice Bar",
		BranchID: &branch.ID,
	})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	order := models.Order{
		OrderNumber:   "JF0001",
		CustomerID:    customer.ID,
		Status:        "completed",
		PaymentStatus: "paid",
		OrderDate:     time.Now().Add(-5 * 24 * time.Hour),
		TotalAmount:   models.NewMoneyFromFloat(963),
	}
	if err := env.db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	detail, err := env.svc.GetCustomer(customer.ID)
	if err != nil {
		t.Fatalf("get customer failed: %v", err)
	}
	if detail.BranchName != "Sukhumvit Branch" {
		t.Fatalf("branch name want Sukhumvit Branch got %s", detail.BranchName)
	}
	if detail.Stats.TotalOrders != 1 {
		t.Fatalf("stats orders want 1 got %d", detail.Stats.TotalOrders)
	}
	if detail.Stats.DaysSinceLastOrder == nil || *detail.Stats.DaysSinceLastOrder != 5 {
		t.Fatalf("days since want 5 got %v", detail.Stats.DaysSinceLastOrder)
	}

	_, err = env.svc.GetCustomer(9999)
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected customer not found, got: %v", err)
	}
}
