package repository

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Query parameters with a fixed meaning on list endpoints
const (
	ParamActive      = "active"
	ParamCreatedFrom = "created_from"
	ParamCreatedTo   = "created_to"
	ParamUpdatedFrom = "updated_from"
	ParamUpdatedTo   = "updated_to"
	ParamSortBy      = "sort_by"
	ParamSortOrder   = "sort_order"
	ParamPerPage     = "per_page"
	ParamPage        = "page"
)

// Active filter values
const (
	ActiveTrue  = "true"
	ActiveFalse = "false"
	ActiveBoth  = "both"
)

const dayLayout = "2006-01-02"

var reservedParams = map[string]bool{
	ParamActive:      true,
	ParamCreatedFrom: true,
	ParamCreatedTo:   true,
	ParamUpdatedFrom: true,
	ParamUpdatedTo:   true,
	ParamSortBy:      true,
	ParamSortOrder:   true,
	ParamPerPage:     true,
	ParamPage:        true,
}

// Filter describes a list query: activity, audit date ranges, sort and column filters
type Filter struct {
	Active      string
	CreatedFrom string
	CreatedTo   string
	UpdatedFrom string
	UpdatedTo   string
	SortBy      string
	SortOrder   string
	// Fields maps column names to the requested value
	Fields map[string]string
}

// FilterFromQuery extracts a Filter from URL query parameters.
// Every non-reserved parameter becomes a column filter; only the first value is used.
func FilterFromQuery(values url.Values) Filter {
	f := Filter{
		Active:      values.Get(ParamActive),
		CreatedFrom: values.Get(ParamCreatedFrom),
		CreatedTo:   values.Get(ParamCreatedTo),
		UpdatedFrom: values.Get(ParamUpdatedFrom),
		UpdatedTo:   values.Get(ParamUpdatedTo),
		SortBy:      values.Get(ParamSortBy),
		SortOrder:   values.Get(ParamSortOrder),
		Fields:      map[string]string{},
	}
	for key, vals := range values {
		if reservedParams[key] || len(vals) == 0 {
			continue
		}
		if v := strings.TrimSpace(vals[0]); v != "" {
			f.Fields[key] = v
		}
	}
	return f
}

func parseDay(value string) (time.Time, error) {
	day, err := time.ParseInLocation(dayLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidFilter, value)
	}
	return day, nil
}

func startOfDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, time.UTC)
}
