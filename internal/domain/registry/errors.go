package registry

import "fmt"

// UnknownKindError means Acquire was asked for a Kind with no defined factory.
type UnknownKindError struct {
	Kind Kind
}

func (e UnknownKindError) Error() string {
	return fmt.Sprintf("no factory defined for kind %q", string(e.Kind))
}

// ConstructError wraps a failure inside a Kind's factory. Callers treat it
// as "resource unavailable"; it is logged by the registry and never fatal.
type ConstructError struct {
	Kind Kind
	Err  error
}

func (e ConstructError) Error() string {
	return fmt.Sprintf("construct %q: %v", string(e.Kind), e.Err)
}

func (e ConstructError) Unwrap() error {
	return e.Err
}

// DuplicateStoreError means a store with the same name is already
// registered in the catalog.
type DuplicateStoreError struct {
	Name string
}

func (e DuplicateStoreError) Error() string {
	return fmt.Sprintf("store already registered: %q", e.Name)
}
