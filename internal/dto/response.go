package dto

// ── auth ──

// TokenResponse issued access token
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        UserResponse `json:"user"`
}

// UserResponse the caller's profile together with the role the workflow resolved for it.
type UserResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Role            string  `json:"role"`
	RoleKey         string  `json:"role_key"`
	RoleSource      string  `json:"role_source,omitempty"`
	College         string  `json:"college"`
	Department      string  `json:"department"`
	CommitteeMember bool    `json:"committee_member"`
	TotalScore      float64 `json:"total_score"`
}
