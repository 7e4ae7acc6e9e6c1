package validator

import (
	"reflect"
	"strconv"
	"sync"

	"github.com/NethermindEth/invokev3/core/felt"
	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

// Custom validation function for version
func validateVersion03(fl validator.FieldLevel) bool {
	version, ok := fl.Field().Interface().(string)
	return ok && (version == "0x3" || version == "0x100000000000000000000000000000003")
}

// validateFeltBits checks that a felt fits in the number of bits given as the tag parameter,
// e.g. `validate:"felt_bits=64"`
func validateFeltBits(fl validator.FieldLevel) bool {
	bits, err := strconv.Atoi(fl.Param())
	if err != nil {
		panic("felt_bits requires a numeric parameter: " + fl.Param())
	}

	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	f, err := new(felt.Felt).SetString(str)
	return err == nil && f.BitLen() <= bits
}

// Validator returns a singleton that can be used to validate various objects
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New()

		if err := v.RegisterValidation("version_0x3", validateVersion03); err != nil {
			panic("failed to register validation: " + err.Error())
		}

		if err := v.RegisterValidation("felt_bits", validateFeltBits); err != nil {
			panic("failed to register validation: " + err.Error())
		}

		// Register these types to use their string representation for validation
		// purposes
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			switch f := field.Interface().(type) {
			case felt.Felt:
				return f.String()
			case *felt.Felt:
				return f.String()
			}
			panic("not a felt")
		}, felt.Felt{}, &felt.Felt{})
	})
	return v
}
