package models

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleRecycler Role = "recycler"
	RoleCustomer Role = "customer"
	RoleSystem   Role = "system"
)

// Actor identifies who performed a change, for the audit trail and
// ownership checks.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

var (
	CustomerActor = Actor{ID: "customer", Role: RoleCustomer}
	SystemActor   = Actor{ID: "system", Role: RoleSystem}
)

// CanActOn reports whether the actor may mutate an order owned by recyclerID.
func (a Actor) CanActOn(recyclerID string) bool {
	switch a.Role {
	case RoleAdmin, RoleSystem:
		return true
	case RoleRecycler:
		return a.ID != "" && a.ID == recyclerID
	default:
		return false
	}
}
