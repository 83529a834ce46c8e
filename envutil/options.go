package envutil

// Option modifies a Reader. It lets String, Bool and friends take defaults
// and validation inline.
type Option[T any] func(Reader[T]) Reader[T]

// Default supplies a value used when the variable is not set.
func Default[T any](dfl T) Option[T] {
	return func(rdr Reader[T]) Reader[T] {
		return rdr.WithDefault(dfl)
	}
}

// Validate runs f on the value; a returned error makes the Reader fail.
func Validate[T any](f func(T) error) Option[T] {
	return func(rdr Reader[T]) Reader[T] {
		return rdr.Map(func(val T) (T, error) {
			return val, f(val)
		})
	}
}
