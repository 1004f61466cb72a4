package auth

type RegisterRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	Handle      string `json:"handle" validate:"omitempty,max=64"`
	CountryCode string `json:"country_code" validate:"omitempty,len=2,alpha"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

// CreateAdminRequest is used by the admin CLI.
type CreateAdminRequest struct {
	Name     string
	Email    string
	Password string
}
