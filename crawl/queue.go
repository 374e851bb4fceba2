package crawl

// Visited records the module URLs a crawl has already attempted.
// It is not safe for concurrent use.
type Visited struct {
	seen map[string]bool
}

// NewVisited creates an empty set.
func NewVisited() *Visited {
	return &Visited{seen: make(map[string]bool)}
}

// Add marks url as attempted. It reports false if it already was.
func (v *Visited) Add(url string) bool {
	key := NormalizeURL(url)
	if v.seen[key] {
		return false
	}
	v.seen[key] = true
	return true
}

// Has reports whether url was attempted.
func (v *Visited) Has(url string) bool {
	return v.seen[NormalizeURL(url)]
}

// Len returns the number of distinct URLs attempted.
func (v *Visited) Len() int {
	return len(v.seen)
}
