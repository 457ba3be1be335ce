package model

// Role represents staff roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // MANAGER, STAFF
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleManager = "MANAGER"
	RoleStaff   = "STAFF"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleManager,
		Name:        "Store Manager",
		Description: "Full access including user management and deletes",
	},
	{
		Code:        RoleStaff,
		Name:        "Staff",
		Description: "Day-to-day register access: orders, catalog reads, dashboard",
	},
}
