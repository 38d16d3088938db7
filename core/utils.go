package core

import (
	"reflect"

	"github.com/Hayser8/laboratorio3redes/state"
)

func Get[T state.LsrModule](s *state.State) T {
	t := reflect.TypeFor[T]()
	return s.Modules[t.String()].(T)
}
