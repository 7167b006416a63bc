package domain

// Credential is the authentication view of a user account, resolved from the
// user service at login time.
type Credential struct {
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         string
}

// Authority returns the authority string embedded in issued tokens.
func (c Credential) Authority() string {
	return "ROLE_" + c.Role
}

// Profile is the subset of account fields safe to return to callers. The
// password hash never leaves the auth boundary.
type Profile struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      string `json:"role"`
}

func (c Credential) Profile() Profile {
	return Profile{
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Role:      c.Role,
	}
}

// NewGuest builds the shared anonymous identity used both for explicit guest
// sessions and as the fallback when the user service is unreachable.
func NewGuest(username, role, passwordHash string) Credential {
	return Credential{
		Email:        username,
		PasswordHash: passwordHash,
		Role:         role,
	}
}
