package identity

import "time"

// User represents a registered marketplace account.
type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	KYCLevel     int
	PhoneNumber  string
	IsVerified   bool
	LastActive   *time.Time
	CreatedAt    time.Time
}

// Profile is the outward-facing view of a user. It never carries the
// password hash.
type Profile struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        Role       `json:"role"`
	KYCLevel    int        `json:"kyc_level"`
	PhoneNumber string     `json:"phone_number"`
	IsVerified  bool       `json:"is_verified"`
	LastActive  *time.Time `json:"last_active,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Profile strips credential material from the user.
func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		KYCLevel:    u.KYCLevel,
		PhoneNumber: u.PhoneNumber,
		IsVerified:  u.IsVerified,
		LastActive:  u.LastActive,
		CreatedAt:   u.CreatedAt,
	}
}
