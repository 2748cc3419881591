package common

// Role classifies an authenticated user. Officials administer the registry;
// owners only see and move their own holdings.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleOfficial Role = "official"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	return r == RoleOwner || r == RoleOfficial
}
