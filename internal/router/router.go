package router

import (
	"fmt"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"masterdata-service/internal/auth"
	"masterdata-service/internal/handler"
	"masterdata-service/internal/middleware"
	"masterdata-service/internal/model"
	"masterdata-service/internal/repository"
	"masterdata-service/internal/service"
	"masterdata-service/internal/storage"
	"masterdata-service/internal/validation"
	"masterdata-service/pkg/config"
	"masterdata-service/pkg/jwtutil"
	"masterdata-service/pkg/logger"
	"masterdata-service/pkg/metrics"
)

const metricsPath = "/metrics"

// Deps are the collaborators shared by every route.
// A nil Registerer or Gatherer selects the prometheus defaults.
type Deps struct {
	Config     *config.Config
	DB         *gorm.DB
	JWT        *jwtutil.JWTUtil
	Storage    *storage.Storage
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// New builds the Echo application with every route of the service
func New(d Deps) (*echo.Echo, error) {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	v := validation.New()
	httpMetrics, err := metrics.NewHTTPMetrics(d.Registerer, metrics.Options{
		Service:   d.Config.ServiceName,
		Namespace: d.Config.Metrics.Prefix,
		SkipPaths: []string{metricsPath},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register http metrics: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = v

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(httpMetrics.Middleware())

	// Public routes that don't require authentication
	health := handler.NewHealthHandler(d.Config.ServiceName, d.DB)
	e.GET("/health", health.HealthCheck)
	e.GET(metricsPath, echo.WrapHandler(metrics.Handler(d.Gatherer)))

	authHandler := handler.NewAuthHandler(service.NewAuthService(d.DB, d.JWT), v)
	e.POST("/auth/login", authHandler.Login)

	// API routes that require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware(d.JWT))
	api.GET("/me", authHandler.Me)

	r := &registrar{deps: d, validator: v, api: api}

	tenants, err := newCRUD[model.Tenant](r, "tenant", func() *handler.TenantRequest { return &handler.TenantRequest{} }, []string{"logo"})
	if err != nil {
		return nil, err
	}
	register(r, "/tenants", auth.ModuleTenant, tenants)

	privileges, err := newCRUD[model.Privilege](r, "privilege", func() *handler.PrivilegeRequest { return &handler.PrivilegeRequest{} }, nil)
	if err != nil {
		return nil, err
	}
	register(r, "/privileges", auth.ModulePrivilege, privileges)

	roles, err := newCRUD[model.Role](r, "role", func() *handler.RoleRequest { return &handler.RoleRequest{} }, nil,
		repository.WithPreload("Privileges"), repository.WithDeleteAssociations("Privileges"))
	if err != nil {
		return nil, err
	}
	roleGroup := register(r, "/roles", auth.ModuleRole, roles)
	roleHandler := handler.NewRoleHandler(service.NewRoleService(roles.Service().Repository()))
	roleGroup.PUT("/:id/privileges", roleHandler.SetPrivileges,
		middleware.RequirePrivileges(auth.Privilege(auth.ModuleRole, auth.ActionUpdate)))

	users, err := newCRUD[model.User](r, "user", func() *handler.UserRequest { return &handler.UserRequest{} }, []string{"photo"})
	if err != nil {
		return nil, err
	}
	register(r, "/users", auth.ModuleUser, users)

	companies, err := newCRUD[model.Company](r, "company", func() *handler.CompanyRequest { return &handler.CompanyRequest{} }, []string{"logo"})
	if err != nil {
		return nil, err
	}
	register(r, "/companies", auth.ModuleCompany, companies)

	offices, err := newCRUD[model.Office](r, "office", func() *handler.OfficeRequest { return &handler.OfficeRequest{} }, nil)
	if err != nil {
		return nil, err
	}
	register(r, "/offices", auth.ModuleOffice, offices)

	vehicles, err := newCRUD[model.Vehicle](r, "vehicle", func() *handler.VehicleRequest { return &handler.VehicleRequest{} }, []string{"rc_document", "photo"})
	if err != nil {
		return nil, err
	}
	register(r, "/vehicles", auth.ModuleVehicle, vehicles)

	customers, err := newCRUD[model.Customer](r, "customer", func() *handler.CustomerRequest { return &handler.CustomerRequest{} }, nil)
	if err != nil {
		return nil, err
	}
	register(r, "/customers", auth.ModuleCustomer, customers)

	vendors, err := newCRUD[model.Vendor](r, "vendor", func() *handler.VendorRequest { return &handler.VendorRequest{} }, nil)
	if err != nil {
		return nil, err
	}
	register(r, "/vendors", auth.ModuleVendor, vendors)

	kyc, err := newCRUD[model.KYCRecord](r, "kyc record", func() *handler.KYCRequest { return &handler.KYCRequest{} }, []string{"document_front", "document_back"})
	if err != nil {
		return nil, err
	}
	register(r, "/kyc-records", auth.ModuleKYC, kyc)

	return e, nil
}

type registrar struct {
	deps      Deps
	validator *validation.Validator
	api       *echo.Group
}

func newCRUD[T any, P service.Payload[T]](r *registrar, entity string, newPayload func() P, uploads []string, opts ...repository.Option) (*handler.CRUDHandler[T, P], error) {
	repo, err := repository.New[T](r.deps.DB, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s repository: %w", entity, err)
	}
	svc := service.NewCRUD(repo, r.validator, r.deps.Storage, service.Options[P]{
		Entity:       entity,
		NewPayload:   newPayload,
		UploadFields: uploads,
	})
	return handler.NewCRUDHandler(svc, r.deps.Config.Pagination), nil
}

// register mounts the uniform entity routes under path, each gated by the
// module privilege of its action
func register[T any, P service.Payload[T]](r *registrar, path, module string, h *handler.CRUDHandler[T, P]) *echo.Group {
	gate := func(action string) echo.MiddlewareFunc {
		return middleware.RequirePrivileges(auth.Privilege(module, action))
	}

	g := r.api.Group(path)
	g.POST("", h.Create, gate(auth.ActionCreate))
	g.GET("", h.List, gate(auth.ActionView))
	g.GET("/id/:id", h.Get, gate(auth.ActionView))
	g.PUT("/:id", h.Update, gate(auth.ActionUpdate))
	g.PATCH("/:id/deactivate", h.Deactivate, gate(auth.ActionUpdate))
	g.DELETE("/:id", h.Delete, gate(auth.ActionDelete))
	g.GET("/xlsxtemplate", h.Template, gate(auth.ActionImport))
	g.POST("/import/xlsx", h.Import, gate(auth.ActionImport))
	g.GET("/export/xlsx", h.Export, gate(auth.ActionExport))
	if len(h.Service().UploadFields()) > 0 {
		g.POST("/:id/upload", h.Upload, gate(auth.ActionUpdate))
	}
	return g
}
