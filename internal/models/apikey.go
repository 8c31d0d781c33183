package models

const (
	RoleAdmin    = "admin"
	RoleUser     = "user"
	RoleReadOnly = "read_only"
)

// APIKey is a credential record. Revocation flips Active off, the row is
// never deleted.
type APIKey struct {
	ID       int64  `db:"id" json:"-"`
	Key      string `db:"key" json:"key"`
	Username string `db:"username" json:"username"`
	Role     string `db:"role" json:"role" validate:"oneof=admin user read_only"`
	Active   bool   `db:"active" json:"active"`
}

func (k *APIKey) Validate() error {
	return validate.Struct(k)
}

func (k *APIKey) IsAdmin() bool {
	return k.Role == RoleAdmin
}

// KnownRole reports whether role is one of the recognized role labels.
func KnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleUser, RoleReadOnly:
		return true
	}
	return false
}
