package model

// Privilege represents a permission that can be assigned to staff users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "order:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Order"
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
	// Tags
	{Code: "tag:view", Name: "View Tag"},
	{Code: "tag:create", Name: "Create Tag"},
	// Orders
	{Code: "order:view", Name: "View Order"},
	{Code: "order:create", Name: "Create Order"},
	{Code: "order:update", Name: "Update Order"},
	{Code: "order:delete", Name: "Delete Order"},
	// Analytics
	{Code: "analytics:export", Name: "Export Analytics CSV"},
	// Dashboard
	{Code: "dashboard:view", Name: "View Dashboard"},
}
