package registry

import (
	"reflect"
	"sync"

	"github.com/NethermindEth/invokev3/core"
	"github.com/NethermindEth/invokev3/encoder"
)

var once sync.Once

//nolint:gochecknoinits
func init() {
	once.Do(func() {
		types := []reflect.Type{
			reflect.TypeOf(core.InvokeTransaction{}),
		}

		for _, t := range types {
			if err := encoder.RegisterType(t); err != nil {
				panic(err)
			}
		}
	})
}
