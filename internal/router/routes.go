package router

import "github.com/padup/padup/internal/session"

// Well-known paths.
const (
	PathHome            = "/"
	PathLogin           = "/login"
	PathSignup          = "/signup"
	PathForgotPassword  = "/forgot-password"
	PathResetPassword   = "/reset-password"
	PathCommunity       = "/community"
	PathBooking         = "/booking"
	PathAccount         = "/account"
	PathAdminHome       = "/admin/dashboard"
	PathSuperAdminHome  = "/super-admin/dashboard"
	PathSuperAdminUsers = "/super-admin/userspage"
)

// DefaultTable returns the marketplace route table.
func DefaultTable() *Table {
	admin := func() *Requirement { return RequireRoles(session.RoleAdmin) }
	superadmin := func() *Requirement { return RequireRoles(session.RoleSuperAdmin) }

	return NewTable().MustRegister(
		Route{Pattern: PathHome, Title: "Shortlets"},
		Route{Pattern: PathLogin, Title: "Log in"},
		Route{Pattern: PathSignup, Title: "Sign up"},
		Route{Pattern: PathForgotPassword, Title: "Forgot password"},
		Route{Pattern: PathResetPassword, Title: "Reset password"},
		Route{Pattern: "/services", Title: "Services"},
		Route{Pattern: "/about-us", Title: "About us"},
		Route{Pattern: PathCommunity, Title: "Community"},
		Route{Pattern: PathBooking, Title: "Booking"},
		Route{Pattern: "/shortlets/:slug", Title: "Shortlet detail"},
		Route{Pattern: "/privacy-policy", Title: "Privacy policy"},
		Route{Pattern: "/terms", Title: "Terms"},
		Route{Pattern: "/contact", Title: "Contact"},

		// Profile and password settings for any signed-in role.
		Route{Pattern: PathAccount, Title: "Account", Requirement: AnyRole()},

		Route{Pattern: PathAdminHome, Title: "Admin dashboard", Requirement: admin()},
		Route{Pattern: "/admin/bookings", Title: "Admin bookings", Requirement: admin()},
		Route{Pattern: "/admin/kyc", Title: "Admin KYC", Requirement: admin()},
		Route{Pattern: "/admin/properties", Title: "Admin properties", Requirement: admin()},
		Route{Pattern: "/admin/availability-manager", Title: "Availability manager", Requirement: admin()},
		Route{Pattern: "/admin/settingspage", Title: "Admin settings", Requirement: admin()},
		Route{Pattern: "/admin/*", Title: "Admin", Requirement: admin()},

		Route{Pattern: PathSuperAdminHome, Title: "Super admin dashboard", Requirement: superadmin()},
		Route{Pattern: "/super-admin/bookings", Title: "Super admin bookings", Requirement: superadmin()},
		Route{Pattern: "/super-admin/kyc", Title: "Super admin KYC", Requirement: superadmin()},
		// Also open to the base user role.
		Route{Pattern: PathSuperAdminUsers, Title: "Users", Requirement: RequireRoles(session.RoleSuperAdmin, session.RoleUser)},
		Route{Pattern: "/super-admin/revenueanalytics", Title: "Revenue analytics", Requirement: superadmin()},
		Route{Pattern: "/super-admin/community", Title: "Community moderation", Requirement: superadmin()},
		Route{Pattern: "/super-admin/settings-page", Title: "Super admin settings", Requirement: superadmin()},
		Route{Pattern: "/super-admin/*", Title: "Super admin", Requirement: superadmin()},
	)
}

// HomeFor returns the landing path for a role after sign-in.
func HomeFor(role session.Role) string {
	switch role {
	case session.RoleSuperAdmin:
		return PathSuperAdminHome
	case session.RoleAdmin:
		return PathAdminHome
	default:
		return PathHome
	}
}
