package types

// LoginRequest carries the user credentials for the login endpoint.
type LoginRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	MFACode  *string `json:"mfa_code"`
}

// TokenPair is the JWT pair issued by the backend.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// User is the authenticated user profile.
type User struct {
	ID       string `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email" yaml:"email"`
}
