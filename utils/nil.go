package utils

import "reflect"

// IsNil reports whether i is nil or an interface holding a nil pointer or
// function, e.g. a Validator set to a nil *T or a nil ValidatorFunc.
func IsNil(i any) bool {
	if i == nil {
		return true
	}

	switch v := reflect.ValueOf(i); v.Kind() {
	case reflect.Ptr, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}
