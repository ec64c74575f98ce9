package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"masterdata-service/internal/auth"
	"masterdata-service/internal/model"
	"masterdata-service/internal/repository"
	"masterdata-service/internal/validation"
	"masterdata-service/prometheus"
)

// RoleService manages the privileges granted by roles
type RoleService struct {
	roles *repository.Repository[model.Role]
}

// NewRoleService creates a RoleService over the role repository
func NewRoleService(roles *repository.Repository[model.Role]) *RoleService {
	return &RoleService{roles: roles}
}

// SetPrivileges replaces the privileges of the role with id by the named ones.
// Callers can only grant privileges they hold themselves.
func (s *RoleService) SetPrivileges(ctx context.Context, uc *auth.UserContext, id string, names []string) (*model.Role, error) {
	prometheus.RecordEntityOperation("role", "set_privileges")

	role, err := s.roles.Find(ctx, uc, id)
	if err != nil {
		return nil, err
	}
	if err := s.roles.CheckOwnership(uc, role, "update"); err != nil {
		return nil, err
	}

	names = lo.Uniq(names)
	verrs := validation.Errors{}
	for _, name := range names {
		if !auth.Allowed(uc.Privileges, []string{name}) {
			verrs.Add("privileges", fmt.Sprintf("You may not grant %s.", name))
		}
	}

	db := s.roles.DB().WithContext(ctx)
	privileges := []model.Privilege{}
	if len(names) > 0 {
		defer prometheus.TrackDBOperation("privileges", "query")(time.Now())
		if err := db.Where("name IN ? AND active = ?", names, true).Find(&privileges).Error; err != nil {
			return nil, fmt.Errorf("failed to load privileges: %w", err)
		}
	}
	found := lo.Map(privileges, func(p model.Privilege, _ int) string { return p.Name })
	for _, name := range lo.Without(names, found...) {
		verrs.Add("privileges", fmt.Sprintf("The privilege %s does not exist.", name))
	}
	if len(verrs) > 0 {
		return nil, verrs
	}

	if err := db.Model(role).Association("Privileges").Replace(privileges); err != nil {
		return nil, fmt.Errorf("failed to replace role privileges: %w", err)
	}
	if err := db.Model(&model.Role{ID: role.ID}).Update("updated_by", uc.UserID).Error; err != nil {
		return nil, fmt.Errorf("failed to touch role: %w", err)
	}
	return s.roles.Find(ctx, uc, id)
}
