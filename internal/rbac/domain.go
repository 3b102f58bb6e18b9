package rbac

// Requirement is the identity tier a path demands.
type Requirement int

const (
	// Authenticated requires a resolved caller identity.
	Authenticated Requirement = iota
	// Public admits anonymous callers.
	Public
)

func (r Requirement) String() string {
	switch r {
	case Public:
		return "PUBLIC"
	case Authenticated:
		return "AUTHENTICATED"
	default:
		return "UNKNOWN"
	}
}

// Rule maps a path pattern to a requirement. '*' matches within one path
// segment and '**' crosses segments.
type Rule struct {
	Pattern     string
	Requirement Requirement
}

// DefaultRules is the storefront access table in precedence order.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "/api/v1/auth/me", Requirement: Authenticated},
		{Pattern: "/api/v1/auth/**", Requirement: Public},
		{Pattern: "/api/v1/product", Requirement: Public},
		{Pattern: "/api/v1/product/**", Requirement: Public},
		{Pattern: "/api/v1/category", Requirement: Public},
		{Pattern: "/api/v1/category/**", Requirement: Public},
		{Pattern: "/api/v1/reviews/product/**", Requirement: Public},
		{Pattern: "/api/v1/wishlist/shared/*", Requirement: Public},
		{Pattern: "/healthz", Requirement: Public},
		{Pattern: "/metrics", Requirement: Public},
	}
}
