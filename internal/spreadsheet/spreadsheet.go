package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// ContentType is the media type of generated workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DateLayout is the layout of date cells, both written and read
const DateLayout = "2006-01-02"

const timestampLayout = "2006-01-02 15:04:05"

// ErrNoHeader is returned for workbooks without a header row
var ErrNoHeader = errors.New("spreadsheet has no header row")

// Row is one data row of an imported sheet. Number is the 1-based sheet row.
type Row struct {
	Number int
	Values map[string]any
}

// Headers returns the json names of the exported fields of struct v, in order.
// Embedded structs are flattened.
func Headers(v any) []string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var headers []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			headers = append(headers, Headers(reflect.New(f.Type).Interface())...)
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		headers = append(headers, name)
	}
	return lo.Uniq(headers)
}

// Template builds an empty workbook carrying only the header row
func Template(sheet string, headers []string) (*bytes.Buffer, error) {
	return Export(sheet, headers, nil)
}

// Export builds a workbook with a bold header row followed by rows
func Export(sheet string, headers []string, rows [][]any) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := lo.Map(headers, func(h string, _ int) any { return h })
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := lo.Map(row, func(v any, _ int) any { return CellValue(v) })
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

// CellValue renders v as exported text. Nil pointers become empty cells.
func CellValue(v any) string {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return ""
	}

	switch val := rv.Interface().(type) {
	case time.Time:
		if val.IsZero() {
			return ""
		}
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return val.Format(DateLayout)
		}
		return val.Format(timestampLayout)
	default:
		return cast.ToString(val)
	}
}

// ReadRows reads the first sheet of a workbook. The first row holds the
// headers; blank cells and fully blank rows are skipped.
func ReadRows(r io.Reader) ([]string, []Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrNoHeader
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(all) == 0 {
		return nil, nil, ErrNoHeader
	}

	headers := lo.Map(all[0], func(h string, _ int) string { return strings.TrimSpace(h) })
	if lo.EveryBy(headers, func(h string) bool { return h == "" }) {
		return nil, nil, ErrNoHeader
	}

	var rows []Row
	for i, cells := range all[1:] {
		values := map[string]any{}
		for j, cell := range cells {
			if j >= len(headers) || headers[j] == "" {
				continue
			}
			if v := strings.TrimSpace(cell); v != "" {
				values[headers[j]] = v
			}
		}
		if len(values) == 0 {
			continue
		}
		rows = append(rows, Row{Number: i + 2, Values: values})
	}
	return headers, rows, nil
}

// Decode copies row values into out, matching keys by json tag and
// converting text cells to the field types
func Decode(values map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(DateLayout),
		),
		WeaklyTypedInput: true,
		TagName:          "json",
		Squash:           true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(values)
}
