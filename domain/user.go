package domain

// Role determines which destinations the access guard permits for a user.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleCourier  Role = "COURIER"
	RoleVendor   Role = "VENDOR"
	RoleAdmin    Role = "ADMIN"
)

// User is the authenticated account attached to a session. VendorID is only
// set for vendor staff and identifies which vendor's data they may act on.
type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	VendorID int    `json:"vendorId,omitempty"`
}
