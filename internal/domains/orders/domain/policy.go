package domain

// Actor is the authenticated user acting on orders.
type Actor struct {
	UserID int64
	Admin  bool
}

// Operation names an access-controlled order use case.
type Operation string

const (
	OpCreate     Operation = "create"
	OpView       Operation = "view"
	OpCancel     Operation = "cancel"
	OpFinalize   Operation = "finalize"
	OpAddItem    Operation = "add_item"
	OpRemoveItem Operation = "remove_item"
	OpListAll    Operation = "list_all"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool { return d == Allow }

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Policy decides whether an actor may perform an operation on an order.
// Implementations never fail; callers resolve existence first.
type Policy interface {
	Authorize(actor Actor, order *Order, op Operation) Decision
}

// OwnerOrAdmin allows admins everything and owners their own orders.
// Listing every order is admin-only.
type OwnerOrAdmin struct{}

func (OwnerOrAdmin) Authorize(actor Actor, order *Order, op Operation) Decision {
	if actor.Admin {
		return Allow
	}
	if op == OpListAll || order == nil {
		return Deny
	}
	if actor.UserID > 0 && actor.UserID == order.OwnerID {
		return Allow
	}
	return Deny
}

var _ Policy = OwnerOrAdmin{}
