package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		name     string
		granted  []string
		required []string
		want     bool
	}{
		{"exact match", []string{"VEHICLE_VIEW"}, []string{"VEHICLE_VIEW"}, true},
		{"one of several required", []string{"VEHICLE_VIEW"}, []string{"VEHICLE_CREATE", "VEHICLE_VIEW"}, true},
		{"unrelated privilege", []string{"X"}, []string{"Y"}, false},
		{"no privileges", nil, []string{"VEHICLE_VIEW"}, false},
		{"nothing required", []string{SystemAll}, nil, false},
		{"system wildcard", []string{SystemAll}, []string{"TENANT_MASTER_CREATE"}, true},
		{"tenant wildcard on tenant module", []string{TenantAll}, []string{"CUSTOMER_DELETE"}, true},
		{"tenant wildcard on system module", []string{TenantAll}, []string{"TENANT_MASTER_CREATE"}, false},
		{"module wildcard", []string{"VEHICLE_ALL"}, []string{"VEHICLE_EXPORT"}, true},
		{"module wildcard other module", []string{"VEHICLE_ALL"}, []string{"VENDOR_EXPORT"}, false},
		{"multi word module wildcard", []string{"TENANT_MASTER_ALL"}, []string{"TENANT_MASTER_VIEW"}, true},
		{"prefix is not a wildcard", []string{"VEHICLE"}, []string{"VEHICLE_VIEW"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.granted, tt.required))
		})
	}
}

func TestModuleOf(t *testing.T) {
	assert.Equal(t, "VEHICLE", ModuleOf("VEHICLE_CREATE"))
	assert.Equal(t, "TENANT_MASTER", ModuleOf("TENANT_MASTER_VIEW"))
	assert.Equal(t, "SOLO", ModuleOf("SOLO"))
}

func TestCatalogIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, entry := range Catalog() {
		assert.False(t, seen[entry.Name], "duplicate privilege %s", entry.Name)
		seen[entry.Name] = true
	}
	assert.True(t, seen[SystemAll])
	assert.True(t, seen[TenantAll])
	assert.True(t, seen["KYC_IMPORT"])
	assert.True(t, seen["PRIVILEGE_ALL"])
}
