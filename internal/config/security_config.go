package config

import "martilhaven-backend/internal/domain"

type SecurityLevel int

const (
	SecurityPublic  SecurityLevel = iota // No authentication
	SecurityRefresh                      // Refresh token required
	SecurityAccess                       // Access token required
)

// EndpointSecurity is the access rule for one named route. An empty Roles list admits
// any authenticated actor.
type EndpointSecurity struct {
	Level SecurityLevel
	Roles []domain.Role
}

var (
	public    = EndpointSecurity{Level: SecurityPublic}
	anyone    = EndpointSecurity{Level: SecurityAccess}
	admins    = EndpointSecurity{Level: SecurityAccess, Roles: []domain.Role{domain.RoleAdmin}}
	staff     = EndpointSecurity{Level: SecurityAccess, Roles: []domain.Role{domain.RoleAdmin, domain.RoleStaff}}
	managers  = EndpointSecurity{Level: SecurityAccess, Roles: []domain.Role{domain.RoleAdmin, domain.RoleStaff, domain.RoleOwner}}
	listOwner = EndpointSecurity{Level: SecurityAccess, Roles: []domain.Role{domain.RoleAdmin, domain.RoleOwner}}
)

// EndpointSecurityConfig maps route names to their access rule
var EndpointSecurityConfig = map[string]EndpointSecurity{
	"health": public,

	// Auth
	"auth.register": public,
	"auth.login":    public,
	"auth.refresh":  {Level: SecurityRefresh},

	// Properties
	"properties.list":     public,
	"properties.popular":  public,
	"properties.get":      public,
	"properties.create":   listOwner,
	"properties.update":   managers,
	"properties.delete":   listOwner,
	"properties.status":   admins,
	"properties.bookings": managers,

	// Bookings
	"bookings.list":   staff,
	"bookings.get":    anyone,
	"bookings.create": anyone,
	"bookings.update": anyone,
	"bookings.status": managers,
	"bookings.cancel": anyone,

	// Reservations
	"reservations.active": managers,
	"users.reservations":  anyone,

	// Users
	"users.list":      admins,
	"users.create":    admins,
	"users.update":    admins,
	"users.delete":    admins,
	"users.me.get":    anyone,
	"users.me.update": anyone,

	// Notifications
	"notifications.list": anyone,
	"notifications.read": anyone,

	// Admin
	"admin.stats": staff,

	// Fleet
	"forklifts.list":      staff,
	"forklifts.get":       staff,
	"forklifts.create":    staff,
	"forklifts.update":    staff,
	"forklifts.delete":    admins,
	"forklifts.status":    staff,
	"operators.list":      staff,
	"operators.get":       staff,
	"operators.create":    staff,
	"operators.update":    staff,
	"operators.delete":    admins,
	"operations.list":     staff,
	"operations.get":      staff,
	"operations.create":   staff,
	"operations.update":   staff,
	"operations.status":   staff,
	"operations.complete": staff,
	"fleet.overview":      staff,
}

// GetEndpointSecurity returns the access rule for a given route name
func GetEndpointSecurity(route string) EndpointSecurity {
	if rule, exists := EndpointSecurityConfig[route]; exists {
		return rule
	}
	// Default to highest security for unknown endpoints
	return admins
}

// Allows reports whether role may call the endpoint
func (e EndpointSecurity) Allows(role domain.Role) bool {
	if len(e.Roles) == 0 {
		return true
	}
	for _, r := range e.Roles {
		if r == role {
			return true
		}
	}
	return false
}
