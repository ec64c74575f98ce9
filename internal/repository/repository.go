package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"masterdata-service/internal/auth"
	"masterdata-service/internal/model"
	"masterdata-service/prometheus"
)

const (
	columnTenantID  = "tenant_id"
	columnActive    = "active"
	columnCreatedAt = "created_at"
	columnUpdatedAt = "updated_at"
	columnCreatedBy = "created_by"
	columnUpdatedBy = "updated_by"
)

// columns a caller can never change through Update
var protectedColumns = map[string]bool{
	columnTenantID:  true,
	columnCreatedBy: true,
	columnCreatedAt: true,
	columnUpdatedBy: true,
}

var schemaCache = &sync.Map{}

// Option customises a Repository
type Option func(*options)

type options struct {
	preloads     []string
	associations []string
}

// WithPreload eager-loads the named associations on Find and list queries
func WithPreload(associations ...string) Option {
	return func(o *options) { o.preloads = append(o.preloads, associations...) }
}

// WithDeleteAssociations removes the named associations (join rows) together with the record
func WithDeleteAssociations(associations ...string) Option {
	return func(o *options) { o.associations = append(o.associations, associations...) }
}

// Repository is the tenant-scoped data access layer for one model type.
// Table and primary key are taken from the gorm schema of T.
type Repository[T any] struct {
	db           *gorm.DB
	schema       *schema.Schema
	pk           *schema.Field
	columns      map[string]*schema.Field
	tenantScoped bool
	audited      bool
	opts         options
}

// New builds a Repository for T
func New[T any](db *gorm.DB, opts ...Option) (*Repository[T], error) {
	sch, err := parseSchema(db, new(T))
	if err != nil {
		return nil, err
	}
	if sch.PrioritizedPrimaryField == nil {
		return nil, fmt.Errorf("model %s has no primary key", sch.Name)
	}

	r := &Repository[T]{
		db:      db,
		schema:  sch,
		pk:      sch.PrioritizedPrimaryField,
		columns: filterableColumns(sch),
	}
	_, r.tenantScoped = any(new(T)).(model.TenantOwned)
	_, r.audited = any(new(T)).(model.Audited)
	for _, opt := range opts {
		opt(&r.opts)
	}
	return r, nil
}

// MustNew is New that panics on a model without a valid schema
func MustNew[T any](db *gorm.DB, opts ...Option) *Repository[T] {
	r, err := New[T](db, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func parseSchema(db *gorm.DB, value any) (*schema.Schema, error) {
	sch, err := schema.Parse(value, schemaCache, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return sch, nil
}

func filterableColumns(sch *schema.Schema) map[string]*schema.Field {
	columns := make(map[string]*schema.Field, len(sch.Fields))
	for _, f := range sch.Fields {
		if f.DBName == "" || f.Tag.Get("json") == "-" {
			continue
		}
		columns[f.DBName] = f
	}
	return columns
}

// Table returns the table name of T
func (r *Repository[T]) Table() string { return r.schema.Table }

// PrimaryKey returns the primary key column of T
func (r *Repository[T]) PrimaryKey() string { return r.pk.DBName }

// TenantScoped reports whether T has a tenant column
func (r *Repository[T]) TenantScoped() bool { return r.tenantScoped }

// Columns returns the exported columns of T in declaration order
func (r *Repository[T]) Columns() []*schema.Field {
	var fields []*schema.Field
	for _, f := range r.schema.Fields {
		if _, ok := r.columns[f.DBName]; ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// Column returns the schema field of an exported column, or nil
func (r *Repository[T]) Column(column string) *schema.Field {
	return r.columns[column]
}

// HasColumn reports whether column is a known, exported column of T
func (r *Repository[T]) HasColumn(column string) bool {
	_, ok := r.columns[column]
	return ok
}

// DB returns the underlying connection for callers needing associations
func (r *Repository[T]) DB() *gorm.DB { return r.db }

func column(name string) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: name}
}

// scope restricts q to the caller's tenant when T is tenant-owned
func (r *Repository[T]) scope(q *gorm.DB, uc *auth.UserContext) *gorm.DB {
	if r.tenantScoped && uc.HasTenant() {
		return q.Where(clause.Eq{Column: column(columnTenantID), Value: *uc.TenantID})
	}
	return q
}

func (r *Repository[T]) preload(q *gorm.DB) *gorm.DB {
	for _, association := range r.opts.preloads {
		q = q.Preload(association)
	}
	return q
}

// parseID converts a path id into the primary key type
func (r *Repository[T]) parseID(id string) (any, bool) {
	switch r.pk.GORMDataType {
	case schema.Uint:
		v, err := strconv.ParseUint(id, 10, 64)
		return v, err == nil && v > 0
	case schema.Int:
		v, err := strconv.ParseInt(id, 10, 64)
		return v, err == nil
	default:
		return id, id != ""
	}
}

// Create persists rec. Tenant and audit columns always come from the caller:
// a tenant user cannot create rows for another tenant by sending tenant_id.
func (r *Repository[T]) Create(ctx context.Context, uc *auth.UserContext, rec *T) error {
	if uc == nil {
		return ErrForbidden
	}
	if owned, ok := any(rec).(model.TenantOwned); ok && uc.HasTenant() {
		tenantID := *uc.TenantID
		owned.SetTenantID(&tenantID)
	}
	if audited, ok := any(rec).(model.Audited); ok {
		audited.SetCreatedBy(uc.UserID)
		audited.SetUpdatedBy(uc.UserID)
	}

	defer prometheus.TrackDBOperation(r.Table(), "insert")(time.Now())
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create %s: %w", r.Table(), err)
	}
	return nil
}

// Find loads the record with the given id, visible to the caller's tenant only
func (r *Repository[T]) Find(ctx context.Context, uc *auth.UserContext, id string) (*T, error) {
	key, ok := r.parseID(id)
	if !ok {
		return nil, ErrNotFound
	}

	defer prometheus.TrackDBOperation(r.Table(), "query")(time.Now())

	var rec T
	q := r.scope(r.db.WithContext(ctx), uc).Where(clause.Eq{Column: column(r.pk.DBName), Value: key})
	if err := r.preload(q).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find %s %s: %w", r.Table(), id, err)
	}
	return &rec, nil
}

// BuildFilteredQuery builds the scoped, filtered and sorted list query for f.
// The returned query is a fresh session, so callers may branch it for count and fetch.
func (r *Repository[T]) BuildFilteredQuery(ctx context.Context, uc *auth.UserContext, f Filter) (*gorm.DB, error) {
	q := r.scope(r.db.WithContext(ctx).Model(new(T)), uc)

	ranges := []struct {
		column, from, to string
	}{
		{columnCreatedAt, f.CreatedFrom, f.CreatedTo},
		{columnUpdatedAt, f.UpdatedFrom, f.UpdatedTo},
	}
	for _, rng := range ranges {
		if !r.HasColumn(rng.column) {
			continue
		}
		if rng.from != "" {
			day, err := parseDay(rng.from)
			if err != nil {
				return nil, err
			}
			q = q.Where(clause.Gte{Column: column(rng.column), Value: startOfDay(day)})
		}
		if rng.to != "" {
			day, err := parseDay(rng.to)
			if err != nil {
				return nil, err
			}
			q = q.Where(clause.Lte{Column: column(rng.column), Value: endOfDay(day)})
		}
	}

	if r.HasColumn(columnActive) {
		switch strings.ToLower(strings.TrimSpace(f.Active)) {
		case ActiveBoth:
		case ActiveFalse:
			q = q.Where(clause.Eq{Column: column(columnActive), Value: false})
		default:
			q = q.Where(clause.Eq{Column: column(columnActive), Value: true})
		}
	}

	keys := make([]string, 0, len(f.Fields))
	for key := range f.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		field, ok := r.columns[key]
		value := f.Fields[key]
		if !ok || value == "" {
			continue
		}
		var err error
		if q, err = applyColumnFilter(q, field, value); err != nil {
			return nil, err
		}
	}

	sortColumn := columnUpdatedAt
	if f.SortBy != "" && r.HasColumn(f.SortBy) {
		sortColumn = f.SortBy
	}
	desc := !strings.EqualFold(f.SortOrder, "asc")
	if r.HasColumn(sortColumn) {
		q = q.Order(clause.OrderByColumn{Column: column(sortColumn), Desc: desc})
	}
	if sortColumn != r.pk.DBName {
		q = q.Order(clause.OrderByColumn{Column: column(r.pk.DBName), Desc: desc})
	}

	return q.Session(&gorm.Session{}), nil
}

func applyColumnFilter(q *gorm.DB, field *schema.Field, value string) (*gorm.DB, error) {
	invalid := func() error {
		return fmt.Errorf("%w: %s=%q", ErrInvalidFilter, field.DBName, value)
	}
	col := column(field.DBName)

	// GORMDataType keeps the Go kind when a type tag overrides DataType
	switch field.GORMDataType {
	case schema.String:
		return q.Where(clause.Expr{
			SQL:  "LOWER(?) LIKE ?",
			Vars: []any{col, "%" + strings.ToLower(value) + "%"},
		}), nil
	case schema.Int:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, invalid()
		}
		return q.Where(clause.Eq{Column: col, Value: v}), nil
	case schema.Uint:
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, invalid()
		}
		return q.Where(clause.Eq{Column: col, Value: v}), nil
	case schema.Float:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, invalid()
		}
		return q.Where(clause.Eq{Column: col, Value: v}), nil
	case schema.Bool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, invalid()
		}
		return q.Where(clause.Eq{Column: col, Value: v}), nil
	case schema.Time:
		day, err := parseDay(value)
		if err != nil {
			return nil, err
		}
		return q.Where(clause.Expr{SQL: "DATE(?) = ?", Vars: []any{col, day.Format(dayLayout)}}), nil
	default:
		return q.Where(clause.Eq{Column: col, Value: value}), nil
	}
}

// GetAllWithPagination runs the filtered query and returns the requested page
func (r *Repository[T]) GetAllWithPagination(ctx context.Context, uc *auth.UserContext, f Filter, page, perPage int) (*Page[T], error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		return nil, fmt.Errorf("%w: per_page must be positive", ErrInvalidFilter)
	}

	q, err := r.BuildFilteredQuery(ctx, uc, f)
	if err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation(r.Table(), "list")(time.Now())

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count %s: %w", r.Table(), err)
	}

	var items []T
	if err := r.preload(q).Limit(perPage).Offset((page - 1) * perPage).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", r.Table(), err)
	}

	return newPage(items, total, page, perPage), nil
}

// GetAllWithoutPagination runs the filtered query and returns every matching record
func (r *Repository[T]) GetAllWithoutPagination(ctx context.Context, uc *auth.UserContext, f Filter) ([]T, error) {
	q, err := r.BuildFilteredQuery(ctx, uc, f)
	if err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation(r.Table(), "list")(time.Now())

	items := []T{}
	if err := r.preload(q).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", r.Table(), err)
	}
	return items, nil
}

// CheckOwnership fails with ErrForbidden when a tenant user touches a record
// of another tenant or a system-global record
func (r *Repository[T]) CheckOwnership(uc *auth.UserContext, rec *T, operation string) error {
	if uc == nil {
		return ErrForbidden
	}
	if !r.tenantScoped || !uc.HasTenant() {
		return nil
	}
	owner := any(rec).(model.TenantOwned).GetTenantID()
	if owner == nil || *owner != *uc.TenantID {
		prometheus.RecordTenantViolation(r.Table(), operation)
		return ErrForbidden
	}
	return nil
}

// Update writes changes to rec. Keys are column names; unknown, protected and
// primary key columns are dropped, so the tenant of a record never changes.
func (r *Repository[T]) Update(ctx context.Context, uc *auth.UserContext, rec *T, changes map[string]any) error {
	if err := r.CheckOwnership(uc, rec, "update"); err != nil {
		return err
	}

	assignments := make(map[string]any, len(changes)+1)
	for key, value := range changes {
		field, ok := r.columns[key]
		if !ok || field.PrimaryKey || protectedColumns[field.DBName] {
			continue
		}
		assignments[field.DBName] = value
	}
	if len(assignments) == 0 {
		return nil
	}
	if r.audited {
		assignments[columnUpdatedBy] = uc.UserID
	}

	defer prometheus.TrackDBOperation(r.Table(), "update")(time.Now())

	q := r.scope(r.db.WithContext(ctx).Model(rec), uc)
	if err := q.Updates(assignments).Error; err != nil {
		return fmt.Errorf("update %s: %w", r.Table(), err)
	}
	return nil
}

// Deactivate soft-disables rec by setting active=false
func (r *Repository[T]) Deactivate(ctx context.Context, uc *auth.UserContext, rec *T) error {
	if !r.HasColumn(columnActive) {
		return fmt.Errorf("%s has no %s column", r.Table(), columnActive)
	}
	return r.Update(ctx, uc, rec, map[string]any{columnActive: false})
}

// Delete removes rec after the same ownership check as Update
func (r *Repository[T]) Delete(ctx context.Context, uc *auth.UserContext, rec *T) error {
	if err := r.CheckOwnership(uc, rec, "delete"); err != nil {
		return err
	}

	defer prometheus.TrackDBOperation(r.Table(), "delete")(time.Now())

	q := r.scope(r.db.WithContext(ctx), uc)
	if len(r.opts.associations) > 0 {
		q = q.Select(r.opts.associations)
	}
	result := q.Delete(rec)
	if result.Error != nil {
		return fmt.Errorf("delete %s: %w", r.Table(), result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists reports whether a row of T matching conds exists within tenantID,
// ignoring the row whose primary key equals excludeID
func (r *Repository[T]) Exists(ctx context.Context, tenantID *uint, conds map[string]any, excludeID any) (bool, error) {
	return Exists(ctx, r.db, new(T), tenantID, conds, excludeID)
}

// Exists reports whether a row of mdl's table matches conds within tenantID.
// For tenant-owned tables a nil tenantID matches system-global rows only.
func Exists(ctx context.Context, db *gorm.DB, mdl any, tenantID *uint, conds map[string]any, excludeID any) (bool, error) {
	return exists(ctx, db, mdl, true, tenantID, conds, excludeID)
}

// ExistsInAnyTenant is Exists without tenant scoping, for globally unique columns
func ExistsInAnyTenant(ctx context.Context, db *gorm.DB, mdl any, conds map[string]any, excludeID any) (bool, error) {
	return exists(ctx, db, mdl, false, nil, conds, excludeID)
}

func exists(ctx context.Context, db *gorm.DB, mdl any, scoped bool, tenantID *uint, conds map[string]any, excludeID any) (bool, error) {
	sch, err := parseSchema(db, mdl)
	if err != nil {
		return false, err
	}

	q := db.WithContext(ctx).Model(mdl)
	if _, owned := mdl.(model.TenantOwned); owned && scoped {
		if tenantID != nil {
			q = q.Where(clause.Eq{Column: column(columnTenantID), Value: *tenantID})
		} else {
			q = q.Where(clause.Eq{Column: column(columnTenantID), Value: nil})
		}
	}

	keys := make([]string, 0, len(conds))
	for key := range conds {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		field := sch.LookUpField(key)
		if field == nil || field.DBName == "" {
			return false, fmt.Errorf("unknown column %s.%s", sch.Table, key)
		}
		value := conds[key]
		if s, ok := value.(string); ok && field.GORMDataType == schema.String {
			q = q.Where(clause.Expr{SQL: "LOWER(?) = ?", Vars: []any{column(field.DBName), strings.ToLower(s)}})
			continue
		}
		q = q.Where(clause.Eq{Column: column(field.DBName), Value: value})
	}
	if excludeID != nil && sch.PrioritizedPrimaryField != nil {
		q = q.Where(clause.Neq{Column: column(sch.PrioritizedPrimaryField.DBName), Value: excludeID})
	}

	defer prometheus.TrackDBOperation(sch.Table, "exists")(time.Now())

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("exists %s: %w", sch.Table, err)
	}
	return count > 0, nil
}
