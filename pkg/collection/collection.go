// Package collection has generic slice helpers.
//
//	rows := collection.Map(users, func(u models.User) string { return u.Username })
//	page := collection.Paginate(users, 2, 5)
package collection

func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

func Filter[T any](s []T, fn func(T) bool) []T {
	var out []T
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// IndexOf is the position of the first element matching fn, or -1.
func IndexOf[T any](s []T, fn func(T) bool) int {
	for i, v := range s {
		if fn(v) {
			return i
		}
	}
	return -1
}

// KeyBy indexes s by fn. Later elements win on duplicate keys.
func KeyBy[T any, K comparable](s []T, fn func(T) K) map[K]T {
	out := make(map[K]T, len(s))
	for _, v := range s {
		out[fn(v)] = v
	}
	return out
}

// PageCount is ceil(total/size), zero for an empty slice.
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Paginate returns page (1-indexed) of s. Pages outside 1..PageCount are
// empty rather than clamped. The result shares s's backing array.
func Paginate[T any](s []T, page, size int) []T {
	if page < 1 || size <= 0 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(s) {
		return []T{}
	}
	end := start + size
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}
