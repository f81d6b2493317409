package resolver

import "fmt"

// NotFoundError reports a read or update whose primary key matched no row.
type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %v not found", e.Entity, e.Key)
}

// InvalidArgumentError reports an operation argument the handler cannot act on.
type InvalidArgumentError struct {
	Argument string
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Argument, e.Reason)
}
