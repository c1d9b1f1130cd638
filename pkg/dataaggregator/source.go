package dataaggregator

import (
	"context"
	"errors"
	"reflect"
)

var ErrUnsupportedSource = errors.New("source does not support this query")

var ErrNotFound = errors.New("nothing matches the query")

type DataSource interface {
	GetName() string
	Supports() []reflect.Type
	Lookup(context.Context, any) (interface{}, error)
}
