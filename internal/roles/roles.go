// Package roles is the identity collaborator surface consumed by the
// mutation policy. It defines only the total order over role names; what a
// role means belongs to the identity provider, not to this service.
package roles

// Role is an actor's role name as issued by the identity provider.
type Role string

const (
	Employee   Role = "employee"
	Manager    Role = "manager"
	Finance    Role = "finance"
	Admin      Role = "admin"
	SuperAdmin Role = "super_admin"
)

var rank = map[Role]int{
	Employee:   1,
	Manager:    2,
	Finance:    3,
	Admin:      4,
	SuperAdmin: 5,
}

// Valid reports whether r is a known role.
func Valid(r Role) bool {
	_, ok := rank[r]
	return ok
}

// HasRoleOrHigher reports whether actor sits at or above required in the
// role order. Unknown roles never satisfy any requirement.
func HasRoleOrHigher(actor, required Role) bool {
	actorRank, ok := rank[actor]
	if !ok {
		return false
	}
	requiredRank, ok := rank[required]
	if !ok {
		return false
	}
	return actorRank >= requiredRank
}

// CanOverrideCutoff reports whether the role may mutate entries behind the
// cutoff boundary. Override is manager-or-above.
func CanOverrideCutoff(actor Role) bool {
	return HasRoleOrHigher(actor, Manager)
}
