package handler

import (
	"strings"
	"time"

	"masterdata-service/internal/validation"
)

const dateLayout = "2006-01-02"

// isActive defaults a missing active flag to true
func isActive(active *bool) bool {
	return active == nil || *active
}

// parseDate converts an optional YYYY-MM-DD value; empty means no date.
// Bad values are reported as validation.Errors on field.
func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		verrs := validation.Errors{}
		verrs.Add(field, field+" must be a date in YYYY-MM-DD format")
		return nil, verrs
	}
	return &day, nil
}

// setDates replaces the text date fields of changes by parsed values
func setDates(changes map[string]any, fields map[string]string) error {
	for field, value := range fields {
		day, err := parseDate(field, value)
		if err != nil {
			return err
		}
		changes[field] = day
	}
	return nil
}
