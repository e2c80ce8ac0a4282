package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "sale:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Sale"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Product catalog
	{Code: "product:view", Name: "View Product"},
	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	{Code: "product:delete", Name: "Delete Product"},
	// Inventory
	{Code: "inventory:view", Name: "View Inventory"},
	{Code: "inventory:create", Name: "Create Inventory Item"},
	{Code: "inventory:update", Name: "Update Inventory Item"},
	{Code: "inventory:move", Name: "Record Inventory Movement"},
	{Code: "inventory:stocktake", Name: "Run Stocktake"},
	// Sales / POS
	{Code: "sale:view", Name: "View Sale"},
	{Code: "sale:create", Name: "Create Sale"},
	{Code: "sale:update", Name: "Update Sale Status"},
	{Code: "sale:void", Name: "Void Sale"},
	{Code: "sale:refund", Name: "Refund Sale"},
	// Expenses
	{Code: "expense:view", Name: "View Expense"},
	{Code: "expense:create", Name: "Create Expense"},
	{Code: "expense:update", Name: "Update Expense"},
	{Code: "expense:delete", Name: "Delete Expense"},
	// Dashboard / reports
	{Code: "dashboard:view", Name: "View Dashboard"},
}

// VendorPrivilegeCodes are the privileges granted to the VENDOR role: enough
// to run the stand, nothing from the back office.
var VendorPrivilegeCodes = []string{
	"product:view",
	"inventory:view",
	"sale:view",
	"sale:create",
	"sale:update",
	"sale:void",
	"expense:view",
	"expense:create",
	"dashboard:view",
}
