package utils

import (
	"reflect"
	"strings"
)

// TrimStrings trims surrounding whitespace from every exported string field
// reachable from ptr, in place. Nested structs, pointers and string slices
// are followed. Anything that is not a non-nil pointer is ignored.
func TrimStrings(ptr any) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return
	}
	trimInPlace(v.Elem())
}

func trimInPlace(v reflect.Value) {
	switch v.Kind() {
	case reflect.Pointer:
		if !v.IsNil() {
			trimInPlace(v.Elem())
		}
	case reflect.Struct:
		t := v.Type()
		for i := range v.NumField() {
			if t.Field(i).IsExported() {
				trimInPlace(v.Field(i))
			}
		}
	case reflect.Slice:
		for i := range v.Len() {
			trimInPlace(v.Index(i))
		}
	case reflect.String:
		if v.CanSet() {
			v.SetString(strings.TrimSpace(v.String()))
		}
	}
}
