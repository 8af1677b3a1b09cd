package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"learner": {
		"session:play",
		"session:export",
	},
	"admin": {
		"*", // everything
	},
}
