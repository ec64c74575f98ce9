package service

import (
	"reflect"
	"strings"

	"github.com/samber/lo"
)

// FieldChanges maps the json names of the fields of struct p to their values.
// Nil pointers and the skipped names are left out, so optional fields keep
// their stored value.
func FieldChanges(p any, skip ...string) map[string]any {
	out := map[string]any{}
	collectChanges(reflect.ValueOf(p), out)
	for _, name := range skip {
		delete(out, name)
	}
	return out
}

func collectChanges(rv reflect.Value, out map[string]any) {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous && lo.Contains([]reflect.Kind{reflect.Struct, reflect.Pointer}, f.Type.Kind()) {
			collectChanges(rv.Field(i), out)
			continue
		}

		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fv := rv.Field(i)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		out[name] = fv.Interface()
	}
}
