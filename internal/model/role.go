package model

// Role groups privileges and is assigned to users of a tenant
type Role struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	Name        string      `json:"name" gorm:"type:varchar(100);index;not null"`
	Description string      `json:"description" gorm:"type:varchar(255)"`
	Privileges  []Privilege `json:"privileges,omitempty" gorm:"many2many:role_privileges"`
	TenantScope
	Audit
}

// PrivilegeNames returns the names of the loaded privileges
func (r *Role) PrivilegeNames() []string {
	names := make([]string, 0, len(r.Privileges))
	for _, p := range r.Privileges {
		if p.Active {
			names = append(names, p.Name)
		}
	}
	return names
}
