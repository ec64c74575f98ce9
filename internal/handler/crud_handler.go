package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"masterdata-service/internal/auth"
	"masterdata-service/internal/repository"
	"masterdata-service/internal/service"
	"masterdata-service/internal/spreadsheet"
	"masterdata-service/pkg/config"
	"masterdata-service/pkg/logger"
)

// perPageAll disables pagination on list endpoints
const perPageAll = "all"

// CRUDHandler exposes the generic entity operations over HTTP
type CRUDHandler[T any, P service.Payload[T]] struct {
	svc        *service.CRUD[T, P]
	pagination config.PaginationConfig
}

// NewCRUDHandler creates a handler over svc
func NewCRUDHandler[T any, P service.Payload[T]](svc *service.CRUD[T, P], pagination config.PaginationConfig) *CRUDHandler[T, P] {
	return &CRUDHandler[T, P]{svc: svc, pagination: pagination}
}

// Service returns the underlying service
func (h *CRUDHandler[T, P]) Service() *service.CRUD[T, P] {
	return h.svc
}

func (h *CRUDHandler[T, P]) entity() string {
	return h.svc.Entity()
}

func (h *CRUDHandler[T, P]) bind(c echo.Context) (P, error) {
	p := h.svc.NewPayload()
	if err := (&echo.DefaultBinder{}).BindBody(c, p); err != nil {
		return p, err
	}
	return p, nil
}

// Create creates a new record for the caller's tenant
func (h *CRUDHandler[T, P]) Create(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating record", zap.String("entity", h.entity()))

	p, err := h.bind(c)
	if err != nil {
		return badRequest(c, "Invalid request data", err)
	}

	rec, err := h.svc.Create(c.Request().Context(), auth.FromEcho(c), p)
	if err != nil {
		return respondError(c, h.entity(), err)
	}

	log.Info("Record created", zap.String("entity", h.entity()))
	return c.JSON(http.StatusCreated, rec)
}

// Get retrieves a record by ID
func (h *CRUDHandler[T, P]) Get(c echo.Context) error {
	rec, err := h.svc.Get(c.Request().Context(), auth.FromEcho(c), c.Param("id"))
	if err != nil {
		return respondError(c, h.entity(), err)
	}
	return c.JSON(http.StatusOK, rec)
}

// List retrieves the filtered records, one page at a time unless per_page=all
func (h *CRUDHandler[T, P]) List(c echo.Context) error {
	ctx := c.Request().Context()
	uc := auth.FromEcho(c)
	f := repository.FilterFromQuery(c.QueryParams())

	if strings.EqualFold(c.QueryParam(repository.ParamPerPage), perPageAll) {
		items, err := h.svc.ListAll(ctx, uc, f)
		if err != nil {
			return respondError(c, h.entity(), err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"data":  items,
			"total": len(items),
		})
	}

	page, err := h.svc.List(ctx, uc, f, h.page(c), h.perPage(c))
	if err != nil {
		return respondError(c, h.entity(), err)
	}

	logger.FromContext(c).Debug("Records listed",
		zap.String("entity", h.entity()),
		zap.Int64("total", page.Total),
		zap.Int("page", page.CurrentPage))
	return c.JSON(http.StatusOK, page)
}

func (h *CRUDHandler[T, P]) page(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam(repository.ParamPage))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (h *CRUDHandler[T, P]) perPage(c echo.Context) int {
	perPage, err := strconv.Atoi(c.QueryParam(repository.ParamPerPage))
	if err != nil || perPage < 1 {
		return h.pagination.DefaultPerPage
	}
	return min(perPage, h.pagination.MaxPerPage)
}

// Update replaces the fields of an existing record
func (h *CRUDHandler[T, P]) Update(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Updating record", zap.String("entity", h.entity()), zap.String("id", c.Param("id")))

	p, err := h.bind(c)
	if err != nil {
		return badRequest(c, "Invalid request data", err)
	}

	rec, err := h.svc.Update(c.Request().Context(), auth.FromEcho(c), c.Param("id"), p)
	if err != nil {
		return respondError(c, h.entity(), err)
	}

	log.Info("Record updated", zap.String("entity", h.entity()), zap.String("id", c.Param("id")))
	return c.JSON(http.StatusOK, rec)
}

// Deactivate sets active=false on a record
func (h *CRUDHandler[T, P]) Deactivate(c echo.Context) error {
	rec, err := h.svc.Deactivate(c.Request().Context(), auth.FromEcho(c), c.Param("id"))
	if err != nil {
		return respondError(c, h.entity(), err)
	}

	logger.FromContext(c).Info("Record deactivated", zap.String("entity", h.entity()), zap.String("id", c.Param("id")))
	return c.JSON(http.StatusOK, rec)
}

// Delete removes a record permanently
func (h *CRUDHandler[T, P]) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), auth.FromEcho(c), c.Param("id")); err != nil {
		return respondError(c, h.entity(), err)
	}

	logger.FromContext(c).Info("Record deleted", zap.String("entity", h.entity()), zap.String("id", c.Param("id")))
	return c.JSON(http.StatusOK, echo.Map{
		"message": h.entity() + " deleted successfully",
	})
}

// Template downloads the empty import workbook
func (h *CRUDHandler[T, P]) Template(c echo.Context) error {
	buf, err := h.svc.Template()
	if err != nil {
		return respondError(c, h.entity(), err)
	}
	return sendWorkbook(c, h.svc.Repository().Table()+"_template.xlsx", buf)
}

// Import creates records from the uploaded workbook in the "file" form field
func (h *CRUDHandler[T, P]) Import(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required", err)
	}
	src, err := file.Open()
	if err != nil {
		return badRequest(c, "file could not be read", err)
	}
	defer src.Close()

	result, err := h.svc.Import(c.Request().Context(), auth.FromEcho(c), src)
	if err != nil {
		return respondError(c, h.entity(), err)
	}
	return c.JSON(http.StatusOK, result)
}

// Export downloads the filtered records as a workbook
func (h *CRUDHandler[T, P]) Export(c echo.Context) error {
	f := repository.FilterFromQuery(c.QueryParams())
	buf, err := h.svc.Export(c.Request().Context(), auth.FromEcho(c), f)
	if err != nil {
		return respondError(c, h.entity(), err)
	}
	return sendWorkbook(c, h.svc.Repository().Table()+".xlsx", buf)
}

// Upload stores the multipart "file" as the file of the "field" column
func (h *CRUDHandler[T, P]) Upload(c echo.Context) error {
	field := c.FormValue("field")
	if field == "" {
		return badRequest(c, "field is required", nil)
	}
	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required", err)
	}
	src, err := file.Open()
	if err != nil {
		return badRequest(c, "file could not be read", err)
	}
	defer src.Close()

	rec, err := h.svc.Upload(c.Request().Context(), auth.FromEcho(c), c.Param("id"), field, src)
	if err != nil {
		return respondError(c, h.entity(), err)
	}
	return c.JSON(http.StatusOK, rec)
}

func sendWorkbook(c echo.Context, filename string, buf *bytes.Buffer) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, spreadsheet.ContentType, buf.Bytes())
}
