package profiles

import "time"

// Roles a profile can hold. Admins see every user's data through the
// admin endpoints; everyone else only sees their own.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	Role         string    `json:"role"`
	Credits      int       `json:"credits"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
