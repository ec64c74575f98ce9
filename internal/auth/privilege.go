package auth

import (
	"strings"

	"github.com/samber/lo"
)

// Wildcard privileges
const (
	// SystemAll grants every privilege
	SystemAll = "SYSTEM_ALL"
	// TenantAll grants every privilege of the tenant-scoped modules
	TenantAll = "TENANT_ALL"

	wildcardSuffix = "_ALL"
)

// Modules
const (
	ModuleTenant    = "TENANT_MASTER"
	ModulePrivilege = "PRIVILEGE"
	ModuleCompany   = "COMPANY"
	ModuleOffice    = "OFFICE"
	ModuleVehicle   = "VEHICLE"
	ModuleCustomer  = "CUSTOMER"
	ModuleVendor    = "VENDOR"
	ModuleUser      = "USER"
	ModuleRole      = "ROLE"
	ModuleKYC       = "KYC"
)

// Actions
const (
	ActionCreate = "CREATE"
	ActionView   = "VIEW"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionImport = "IMPORT"
	ActionExport = "EXPORT"
)

// SystemModules are administered by system users only
var SystemModules = []string{ModuleTenant, ModulePrivilege}

// TenantModules are covered by TENANT_ALL
var TenantModules = []string{
	ModuleCompany,
	ModuleOffice,
	ModuleVehicle,
	ModuleCustomer,
	ModuleVendor,
	ModuleUser,
	ModuleRole,
	ModuleKYC,
}

// Actions lists every action a module privilege can carry
var Actions = []string{ActionCreate, ActionView, ActionUpdate, ActionDelete, ActionImport, ActionExport}

// Privilege builds the privilege name for a module action, e.g. VEHICLE_CREATE
func Privilege(module, action string) string {
	return module + "_" + action
}

// ModuleWildcard returns the wildcard covering every action of module
func ModuleWildcard(module string) string {
	return module + wildcardSuffix
}

// ModuleOf returns the module part of a privilege name
func ModuleOf(privilege string) string {
	i := strings.LastIndex(privilege, "_")
	if i <= 0 {
		return privilege
	}
	return privilege[:i]
}

// IsWildcard reports whether the privilege carries the ALL suffix
func IsWildcard(privilege string) bool {
	return strings.HasSuffix(privilege, wildcardSuffix)
}

// Covers reports whether the granted privilege satisfies the required one
func Covers(granted, required string) bool {
	if granted == required {
		return true
	}
	if !IsWildcard(granted) {
		return false
	}
	switch granted {
	case SystemAll:
		return true
	case TenantAll:
		return lo.Contains(TenantModules, ModuleOf(required))
	default:
		return ModuleOf(required) == strings.TrimSuffix(granted, wildcardSuffix)
	}
}

// Allowed reports whether any granted privilege covers any required privilege.
// An empty required list never allows, so a route cannot open itself by accident.
func Allowed(granted, required []string) bool {
	return lo.SomeBy(required, func(r string) bool {
		return lo.SomeBy(granted, func(g string) bool { return Covers(g, r) })
	})
}

// Catalog lists every privilege known to the service: all module actions plus wildcards
func Catalog() []CatalogEntry {
	var entries []CatalogEntry
	modules := append(append([]string(nil), SystemModules...), TenantModules...)
	for _, module := range modules {
		for _, action := range Actions {
			entries = append(entries, CatalogEntry{
				Name:        Privilege(module, action),
				Module:      module,
				Description: strings.ToLower(action) + " " + strings.ToLower(strings.ReplaceAll(module, "_", " ")),
			})
		}
		entries = append(entries, CatalogEntry{
			Name:        ModuleWildcard(module),
			Module:      module,
			Description: "all " + strings.ToLower(strings.ReplaceAll(module, "_", " ")) + " operations",
		})
	}
	entries = append(entries,
		CatalogEntry{Name: TenantAll, Module: "TENANT", Description: "all tenant-level operations"},
		CatalogEntry{Name: SystemAll, Module: "SYSTEM", Description: "all operations"},
	)
	return entries
}

// CatalogEntry describes one seeded privilege
type CatalogEntry struct {
	Name        string
	Module      string
	Description string
}
