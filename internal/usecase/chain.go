package usecase

import "context"

// link is one source in a priority chain. ok=false falls through to the next link.
type link[T any] struct {
	source  string
	resolve func(ctx context.Context) (T, bool)
}

// firstMatch evaluates links in order and stops at the first hit.
// checked lists every source consulted, in order.
func firstMatch[T any](ctx context.Context, links ...link[T]) (value T, checked []string, ok bool) {
	checked = make([]string, 0, len(links))
	for _, l := range links {
		checked = append(checked, l.source)
		if v, hit := l.resolve(ctx); hit {
			return v, checked, true
		}
	}
	var zero T
	return zero, checked, false
}
