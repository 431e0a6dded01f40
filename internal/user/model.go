package user

import "time"

// User is a staff account. OrdersPermission gates every management endpoint;
// an account without it can authenticate but cannot act.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	OrdersPermission bool      `json:"orders_permission"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type CreateUserParams struct {
	Email            string
	Password         string
	Role             string
	OrdersPermission bool
}

type UpdateUserParams struct {
	Role             *string
	OrdersPermission *bool
	Password         *string
}

type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
