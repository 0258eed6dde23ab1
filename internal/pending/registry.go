package pending

import "sync"

// Registry tracks the chat ids known to have interacted with the bot.
// The daily digest is delivered to every id in it. It may be seeded
// from config so regulars receive digests across restarts.
type Registry struct {
	mu    sync.Mutex
	seen  map[int64]struct{}
	order []int64
}

func NewRegistry(seed []int64) *Registry {
	r := &Registry{seen: make(map[int64]struct{})}
	for _, id := range seed {
		r.Add(id)
	}
	return r
}

// Add records a chat id; duplicates are ignored.
func (r *Registry) Add(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[id]; ok {
		return
	}
	r.seen[id] = struct{}{}
	r.order = append(r.order, id)
}

// IDs returns the known chat ids in first-seen order.
func (r *Registry) IDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int64, len(r.order))
	copy(out, r.order)
	return out
}
