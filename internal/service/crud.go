package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"masterdata-service/internal/auth"
	"masterdata-service/internal/model"
	"masterdata-service/internal/repository"
	"masterdata-service/internal/spreadsheet"
	"masterdata-service/internal/storage"
	"masterdata-service/internal/validation"
	"masterdata-service/pkg/logger"
	"masterdata-service/prometheus"
)

var (
	// ErrInvalidUpload is returned for uploads with a bad field, type or size
	ErrInvalidUpload = errors.New("invalid upload")
	// ErrInvalidCredentials is returned when a login cannot be verified
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidImport is returned for workbooks that cannot be read
	ErrInvalidImport = errors.New("invalid import file")
)

type columnField = *schema.Field

// Payload is a validated request body for records of type T
type Payload[T any] interface {
	// ToModel builds a new record
	ToModel() (*T, error)
	// Changes returns the column assignments for an update
	Changes() (map[string]any, error)
	// Rules returns the checks against persisted data
	Rules() []validation.Rule
}

// Options configures a CRUD service
type Options[P any] struct {
	// Entity is the singular name used in metrics and logs
	Entity string
	// NewPayload returns an empty payload, used by import and template
	NewPayload func() P
	// UploadFields lists the columns that accept file uploads
	UploadFields []string
}

// CRUD implements the generic operations of one entity on top of the
// tenant-scoped repository
type CRUD[T any, P Payload[T]] struct {
	repo      *repository.Repository[T]
	db        *gorm.DB
	validator *validation.Validator
	storage   *storage.Storage
	opts      Options[P]
}

// NewCRUD creates a CRUD service over repo
func NewCRUD[T any, P Payload[T]](repo *repository.Repository[T], v *validation.Validator, s *storage.Storage, opts Options[P]) *CRUD[T, P] {
	return &CRUD[T, P]{
		repo:      repo,
		db:        repo.DB(),
		validator: v,
		storage:   s,
		opts:      opts,
	}
}

// Entity returns the entity name
func (s *CRUD[T, P]) Entity() string { return s.opts.Entity }

// Repository returns the underlying repository
func (s *CRUD[T, P]) Repository() *repository.Repository[T] { return s.repo }

// UploadFields returns the columns accepting uploads
func (s *CRUD[T, P]) UploadFields() []string { return s.opts.UploadFields }

// NewPayload returns an empty payload to bind a request into
func (s *CRUD[T, P]) NewPayload() P { return s.opts.NewPayload() }

// targetTenant is the tenant a record is written to
func targetTenant(uc *auth.UserContext, rec any) *uint {
	if uc.HasTenant() {
		return uc.TenantID
	}
	if owned, ok := rec.(model.TenantOwned); ok {
		return owned.GetTenantID()
	}
	return nil
}

func (s *CRUD[T, P]) validate(ctx context.Context, p P, scope validation.Scope) error {
	if err := s.validator.Validate(p); err != nil {
		return err
	}
	return s.checkRules(ctx, p, scope)
}

func (s *CRUD[T, P]) checkRules(ctx context.Context, p P, scope validation.Scope) error {
	verrs, err := validation.CheckRules(ctx, s.db, scope, p.Rules()...)
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		return verrs
	}
	return nil
}

// Create validates p and persists a new record
func (s *CRUD[T, P]) Create(ctx context.Context, uc *auth.UserContext, p P) (*T, error) {
	prometheus.RecordEntityOperation(s.opts.Entity, "create")

	// field rules run before ToModel so malformed values surface as Errors
	if err := s.validator.Validate(p); err != nil {
		return nil, err
	}
	rec, err := p.ToModel()
	if err != nil {
		return nil, err
	}
	if err := s.checkRules(ctx, p, validation.Scope{TenantID: targetTenant(uc, rec)}); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, uc, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns the record with id
func (s *CRUD[T, P]) Get(ctx context.Context, uc *auth.UserContext, id string) (*T, error) {
	prometheus.RecordEntityOperation(s.opts.Entity, "get")
	return s.repo.Find(ctx, uc, id)
}

// List returns one page of the filtered records
func (s *CRUD[T, P]) List(ctx context.Context, uc *auth.UserContext, f repository.Filter, page, perPage int) (*repository.Page[T], error) {
	prometheus.RecordEntityOperation(s.opts.Entity, "list")
	return s.repo.GetAllWithPagination(ctx, uc, f, page, perPage)
}

// ListAll returns every filtered record
func (s *CRUD[T, P]) ListAll(ctx context.Context, uc *auth.UserContext, f repository.Filter) ([]T, error) {
	prometheus.RecordEntityOperation(s.opts.Entity, "list")
	return s.repo.GetAllWithoutPagination(ctx, uc, f)
}

// Update validates p and applies it to the record with id
func (s *CRUD[T, P]) Update(ctx context.Context, uc *auth.UserContext, id string, p P) (*T, error) {
	prometheus.RecordEntityOperation(s.opts.Entity, "update")

	rec, err := s.repo.Find(ctx, uc, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CheckOwnership(uc, rec, "update"); err != nil {
		return nil, err
	}

	scope := validation.Scope{TenantID: targetTenant(uc, rec), ExcludeID: s.primaryKey(rec)}
	if err := s.validate(ctx, p, scope); err != nil {
		return nil, err
	}

	changes, err := p.Changes()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, uc, rec, changes); err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, uc, id)
}

// Deactivate sets active=false on the record with id
func (s *CRUD[T, P]) Deactivate(ctx context.Context, uc *auth.UserContext, id string) (*T, error) {
	prometheus.RecordEntityOperation(s.opts.Entity, "deactivate")

	rec, err := s.repo.Find(ctx, uc, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Deactivate(ctx, uc, rec); err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, uc, id)
}

// Delete removes the record with id together with its uploaded files
func (s *CRUD[T, P]) Delete(ctx context.Context, uc *auth.UserContext, id string) error {
	prometheus.RecordEntityOperation(s.opts.Entity, "delete")

	rec, err := s.repo.Find(ctx, uc, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, uc, rec); err != nil {
		return err
	}

	if s.storage != nil {
		for _, field := range s.opts.UploadFields {
			if err := s.storage.Remove(s.stringColumn(rec, field)); err != nil {
				logger.FromStdContext(ctx).Warn("Failed to remove uploaded file",
					zap.String("entity", s.opts.Entity), zap.String("field", field), zap.Error(err))
			}
		}
	}
	return nil
}

// Template returns an empty workbook whose header row lists the payload fields
func (s *CRUD[T, P]) Template() (*bytes.Buffer, error) {
	prometheus.RecordEntityOperation(s.opts.Entity, "template")
	return spreadsheet.Template(s.repo.Table(), s.payloadHeaders())
}

func (s *CRUD[T, P]) payloadHeaders() []string {
	return lo.Without(spreadsheet.Headers(s.opts.NewPayload()), "tenant_id")
}

// ImportError lists the validation messages of one spreadsheet row
type ImportError struct {
	Row    int                 `json:"row"`
	Errors map[string][]string `json:"errors"`
}

// ImportResult summarises an import. Valid rows are kept when other rows fail.
type ImportResult struct {
	Success  bool          `json:"success"`
	Imported int           `json:"imported"`
	Errors   []ImportError `json:"errors"`
}

// Import creates one record per data row of the first sheet of r
func (s *CRUD[T, P]) Import(ctx context.Context, uc *auth.UserContext, r io.Reader) (*ImportResult, error) {
	prometheus.RecordEntityOperation(s.opts.Entity, "import")
	log := logger.FromStdContext(ctx)

	_, rows, err := spreadsheet.ReadRows(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	result := &ImportResult{Errors: []ImportError{}}
	for _, row := range rows {
		p := s.opts.NewPayload()
		if err := spreadsheet.Decode(row.Values, p); err != nil {
			result.Errors = append(result.Errors, ImportError{Row: row.Number, Errors: map[string][]string{"row": {err.Error()}}})
			continue
		}

		if _, err := s.Create(ctx, uc, p); err != nil {
			var verrs validation.Errors
			if !errors.As(err, &verrs) {
				log.Warn("Failed to import row", zap.String("entity", s.opts.Entity), zap.Int("row", row.Number), zap.Error(err))
				verrs = validation.Errors{"row": {importRowFailed(err)}}
			}
			result.Errors = append(result.Errors, ImportError{Row: row.Number, Errors: verrs})
			continue
		}
		result.Imported++
	}
	result.Success = len(result.Errors) == 0

	prometheus.RecordImportRows(s.opts.Entity, "imported", result.Imported)
	prometheus.RecordImportRows(s.opts.Entity, "rejected", len(result.Errors))
	log.Info("Spreadsheet imported",
		zap.String("entity", s.opts.Entity),
		zap.Int("rows", len(rows)),
		zap.Int("imported", result.Imported),
		zap.Int("rejected", len(result.Errors)))
	return result, nil
}

// importRowFailed keeps internal failures out of the import response
func importRowFailed(err error) string {
	if errors.Is(err, repository.ErrForbidden) {
		return "row is not permitted for this tenant"
	}
	return "row could not be saved"
}

// Export returns a workbook with every filtered record, one column per field
func (s *CRUD[T, P]) Export(ctx context.Context, uc *auth.UserContext, f repository.Filter) (*bytes.Buffer, error) {
	prometheus.RecordEntityOperation(s.opts.Entity, "export")

	items, err := s.repo.GetAllWithoutPagination(ctx, uc, f)
	if err != nil {
		return nil, err
	}

	columns := s.repo.Columns()
	headers := lo.Map(columns, func(c columnField, _ int) string { return c.DBName })
	rows := make([][]any, 0, len(items))
	for i := range items {
		rv := reflect.ValueOf(&items[i]).Elem()
		rows = append(rows, lo.Map(columns, func(c columnField, _ int) any {
			v, _ := c.ValueOf(ctx, rv)
			return v
		}))
	}
	return spreadsheet.Export(s.repo.Table(), headers, rows)
}

// Upload stores the content of r as the file of field on the record with id
// and returns the updated record
func (s *CRUD[T, P]) Upload(ctx context.Context, uc *auth.UserContext, id, field string, r io.Reader) (*T, error) {
	prometheus.RecordEntityOperation(s.opts.Entity, "upload")

	if !lo.Contains(s.opts.UploadFields, field) {
		return nil, fmt.Errorf("%w: field must be one of %v", ErrInvalidUpload, s.opts.UploadFields)
	}
	if s.storage == nil {
		return nil, fmt.Errorf("%w: storage is not configured", ErrInvalidUpload)
	}

	rec, err := s.repo.Find(ctx, uc, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CheckOwnership(uc, rec, "upload"); err != nil {
		return nil, err
	}

	var owner *uint
	if owned, ok := any(rec).(model.TenantOwned); ok {
		owner = owned.GetTenantID()
	}
	stored, err := s.storage.Save(r, storage.Dir(s.repo.Table(), owner, s.primaryKey(rec)), field)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) || errors.Is(err, storage.ErrUnsupportedType) || errors.Is(err, storage.ErrEmpty) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
		}
		return nil, err
	}

	previous := s.stringColumn(rec, field)
	if err := s.repo.Update(ctx, uc, rec, map[string]any{field: stored.Path}); err != nil {
		if rmErr := s.storage.Remove(stored.Path); rmErr != nil {
			logger.FromStdContext(ctx).Warn("Failed to remove orphaned file", zap.String("path", stored.Path), zap.Error(rmErr))
		}
		return nil, err
	}
	if previous != "" && previous != stored.Path {
		if err := s.storage.Remove(previous); err != nil {
			logger.FromStdContext(ctx).Warn("Failed to remove replaced file", zap.String("path", previous), zap.Error(err))
		}
	}

	logger.FromStdContext(ctx).Info("File uploaded",
		zap.String("entity", s.opts.Entity),
		zap.String("field", field),
		zap.String("path", stored.Path),
		zap.String("mime", stored.MIME),
		zap.Int64("size", stored.Size))
	return s.repo.Find(ctx, uc, id)
}

func (s *CRUD[T, P]) primaryKey(rec *T) any {
	field := s.repo.Column(s.repo.PrimaryKey())
	v, _ := field.ValueOf(context.Background(), reflect.ValueOf(rec).Elem())
	return v
}

func (s *CRUD[T, P]) stringColumn(rec *T, column string) string {
	field := s.repo.Column(column)
	if field == nil {
		return ""
	}
	v, _ := field.ValueOf(context.Background(), reflect.ValueOf(rec).Elem())
	str, _ := v.(string)
	return str
}
