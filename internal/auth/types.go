package auth

import "time"

// Roles assigned to accounts. The role is derived once at account creation
// and stored as the single source of truth; it is never re-derived from the
// email afterwards.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account. PasswordHash is empty for accounts created
// through federated login; such accounts cannot log in with a password.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	GoogleID     string
	Avatar       string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountView is the externally visible projection of a User. It never
// carries the password hash.
type AccountView struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// View projects the user into its public shape.
func (u *User) View() AccountView {
	return AccountView{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
