package warehouse

import (
	"fmt"
	"strings"
)

// ConnectionError indicates the warehouse is unreachable, credentials are
// bad, or required connection settings are absent. It is fatal and surfaced
// to the user; no retry is attempted at this layer.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("warehouse: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("warehouse: %s", e.Op)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// SchemaError reports expected columns missing from a query result. It
// indicates an upstream contract break in the dbt models and is fatal.
type SchemaError struct {
	Relation string
	Missing  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("warehouse: %s is missing expected columns: %s",
		e.Relation, strings.Join(e.Missing, ", "))
}
