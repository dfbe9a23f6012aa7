package model

import "fmt"

const unsetText = "<unset>"

// Optional distinguishes an absent value from a present one, including a
// present zero value.
type Optional[T any] struct {
	value T
	set   bool
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, set: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

// OptionalFromPtr treats nil as absent.
func OptionalFromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}

	return Some(*p)
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

func (o Optional[T]) IsSet() bool {
	return o.set
}

func (o Optional[T]) OrElse(fallback T) T {
	if o.set {
		return o.value
	}

	return fallback
}

// String renders the held value, or <unset> when absent.
func (o Optional[T]) String() string {
	if !o.set {
		return unsetText
	}

	return fmt.Sprint(o.value)
}
