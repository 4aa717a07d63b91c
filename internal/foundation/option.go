// Package foundation provides small generic helpers shared by the build packages.
package foundation

// Option represents a value that may or may not be present.
type Option[T any] struct {
	value   T
	present bool
}

// Some creates an Option with a value.
func Some[T any](value T) Option[T] {
	return Option[T]{value: value, present: true}
}

// None creates an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// When returns Some(build()) if cond holds, None otherwise. build is not
// called for a false condition.
func When[T any](cond bool, build func() T) Option[T] {
	if !cond {
		return None[T]()
	}
	return Some(build())
}

// Present keeps the values of the Some options, in order.
func Present[T any](opts ...Option[T]) []T {
	out := make([]T, 0, len(opts))
	for _, o := range opts {
		if o.present {
			out = append(out, o.value)
		}
	}
	return out
}
