package model

import "time"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// User is the credential record. Token columns hold digests only.
type User struct {
	ID                 string
	Name               string
	Email              string
	PasswordHash       string
	Role               string
	AvatarURL          *string
	AvatarKey          *string
	RefreshTokenHash   *string
	RefreshTokenExpiry *time.Time
	ResetTokenHash     *string
	ResetTokenExpiry   *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

// Public returns the fields that may leave the server.
func (u User) Public() UserView {
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Avatar:    u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

type UserView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuthClaims struct {
	UserID  string `json:"id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Type    string `json:"typ"`
	TokenID string `json:"jti"`
}

// Session is the result of a successful login or refresh.
type Session struct {
	UserView
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type UserQuery struct {
	Page   int
	Limit  int
	Search string
}

type UserList struct {
	Users      []UserView `json:"users"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
}
