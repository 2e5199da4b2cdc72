package auth

// Package auth contains domain-level types for the client session lifecycle.
// It is pure and free of transport/adapter concerns.

// Role represents an application authorization role.
// Keep string form for easy persistence and wire transfer.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is the authenticated identity plus its authorization data.
// Values are immutable once constructed; profile updates produce a new User
// via ProfilePatch.Apply rather than mutating in place.
type User struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"name"`
	AvatarURL   string   `json:"avatar,omitempty"`
	Role        Role     `json:"role"`
	Permissions []string `json:"permissions"`
}

// Clone returns a deep copy so callers cannot alias the Permissions slice.
func (u User) Clone() User {
	cp := u
	cp.Permissions = append([]string(nil), u.Permissions...)
	return cp
}

// Session is the in-memory snapshot of the current authenticated identity.
// IsAuthenticated is true exactly when User is non-nil; the setter actions in
// the service layer maintain that invariant.
type Session struct {
	User            *User
	IsAuthenticated bool
	IsLoading       bool
	LastError       string
}

// Credentials carries a login attempt.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair groups the credential material returned by a successful login.
// Either field may be empty when the boundary withholds it.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// ProfilePatch is a partial update to a User. Nil fields are left untouched;
// set fields win over the existing value.
type ProfilePatch struct {
	DisplayName *string `json:"name,omitempty"`
	AvatarURL   *string `json:"avatar,omitempty"`
	Email       *string `json:"email,omitempty"`
}

// IsZero reports whether the patch carries no changes.
func (p ProfilePatch) IsZero() bool {
	return p.DisplayName == nil && p.AvatarURL == nil && p.Email == nil
}

// Apply merges the patch into u and returns the resulting User.
// The receiver user is not modified.
func (p ProfilePatch) Apply(u User) User {
	out := u.Clone()
	if p.DisplayName != nil {
		out.DisplayName = *p.DisplayName
	}
	if p.AvatarURL != nil {
		out.AvatarURL = *p.AvatarURL
	}
	if p.Email != nil {
		out.Email = *p.Email
	}
	return out
}

// StringPtr is a convenience for building patches.
func StringPtr(s string) *string { return &s }
