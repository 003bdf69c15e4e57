package models

type Role string

const (
	RoleCustomer Role = "customer"
	RolePremium  Role = "premium"
	RoleAdmin    Role = "admin"
)

// User is the authenticated dashboard user. Role drives the transfer ceiling.
type User struct {
	UserID      string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
}
