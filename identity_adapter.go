package auth

// userIdentity is the claim-bearing projection of a User handed to token
// issuance. Values are copied so later mutations of the user do not leak
// into issued claims.
type userIdentity struct {
	id       string
	username string
	email    string
	role     string
}

// NewIdentityFromUser returns the Identity projection of a user, or nil for
// a nil user.
func NewIdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return userIdentity{
		id:       user.ID.String(),
		username: user.Username,
		email:    user.Email,
		role:     string(user.Role),
	}
}

func (u userIdentity) ID() string       { return u.id }
func (u userIdentity) Username() string { return u.username }
func (u userIdentity) Email() string    { return u.email }
func (u userIdentity) Role() string     { return u.role }
