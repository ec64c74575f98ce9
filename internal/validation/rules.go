package validation

import (
	"context"
	"reflect"

	"gorm.io/gorm"

	"masterdata-service/internal/repository"
)

// Rule is a check against persisted data, declared by a payload
type Rule interface {
	// Check returns a message when the rule is violated
	Check(ctx context.Context, db *gorm.DB, scope Scope) (field, message string, err error)
}

// Scope is the tenant a payload is written to, and the record being updated
type Scope struct {
	TenantID  *uint
	ExcludeID any
}

type uniqueRule struct {
	field  string
	model  any
	column string
	value  any
	global bool
}

// Unique requires that no other row of model's table, within the same tenant,
// holds value in column
func Unique(field string, model any, column string, value any) Rule {
	return &uniqueRule{field: field, model: model, column: column, value: value}
}

// UniqueGlobal is Unique across every tenant
func UniqueGlobal(field string, model any, column string, value any) Rule {
	return &uniqueRule{field: field, model: model, column: column, value: value, global: true}
}

func (r *uniqueRule) Check(ctx context.Context, db *gorm.DB, scope Scope) (string, string, error) {
	if isBlank(r.value) {
		return r.field, "", nil
	}

	conds := map[string]any{r.column: deref(r.value)}
	var (
		taken bool
		err   error
	)
	if r.global {
		taken, err = repository.ExistsInAnyTenant(ctx, db, r.model, conds, scope.ExcludeID)
	} else {
		taken, err = repository.Exists(ctx, db, r.model, scope.TenantID, conds, scope.ExcludeID)
	}
	if err != nil || !taken {
		return r.field, "", err
	}
	return r.field, "The " + r.field + " has already been taken.", nil
}

type existsRule struct {
	field  string
	model  any
	column string
	value  any
}

// Exists requires that a row of model's table, within the same tenant,
// holds value in column. Blank values pass; combine with `required` when needed.
func Exists(field string, model any, column string, value any) Rule {
	return &existsRule{field: field, model: model, column: column, value: value}
}

func (r *existsRule) Check(ctx context.Context, db *gorm.DB, scope Scope) (string, string, error) {
	if isBlank(r.value) {
		return r.field, "", nil
	}

	found, err := repository.Exists(ctx, db, r.model, scope.TenantID, map[string]any{r.column: deref(r.value)}, nil)
	if err != nil || found {
		return r.field, "", err
	}
	return r.field, "The selected " + r.field + " is invalid.", nil
}

// CheckRules runs rules in order and collects the violations
func CheckRules(ctx context.Context, db *gorm.DB, scope Scope, rules ...Rule) (Errors, error) {
	out := Errors{}
	for _, rule := range rules {
		field, msg, err := rule.Check(ctx, db, scope)
		if err != nil {
			return nil, err
		}
		if msg != "" {
			out.Add(field, msg)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func isBlank(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		return rv.IsNil() || rv.Elem().IsZero()
	}
	return rv.IsZero()
}

func deref(value any) any {
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return value
}

type funcRule struct {
	field string
	fn    func(scope Scope) string
}

// Func is a rule computed from the target scope alone; fn returns a message on violation
func Func(field string, fn func(scope Scope) string) Rule {
	return &funcRule{field: field, fn: fn}
}

func (r *funcRule) Check(_ context.Context, _ *gorm.DB, scope Scope) (string, string, error) {
	return r.field, r.fn(scope), nil
}
