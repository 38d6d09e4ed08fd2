package domain

// Role gates which operations a session may perform.
type Role string

const (
	RoleOperator   Role = "operator"
	RoleTechnician Role = "technician"
	RoleAdmin      Role = "admin"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleOperator, RoleTechnician, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// Account is a stored identity. SecretHash holds a salted one-way hash of the
// secret, never the secret itself.
type Account struct {
	Username   string `json:"username"`
	SecretHash string `json:"password_hash"`
	Role       Role   `json:"role"`
}

// AccountPatch carries the optional fields of an account update. A nil field
// was not supplied by the caller.
type AccountPatch struct {
	Secret *string
	Role   *Role
}

// Empty reports whether the patch supplies no usable field. Empty strings
// count as not supplied.
func (p AccountPatch) Empty() bool {
	return (p.Secret == nil || *p.Secret == "") && (p.Role == nil || *p.Role == "")
}

// FindAccount returns the index of username in accounts, or -1.
func FindAccount(accounts []Account, username string) int {
	for i := range accounts {
		if accounts[i].Username == username {
			return i
		}
	}
	return -1
}
