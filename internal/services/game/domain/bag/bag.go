// Package bag provides an ordered multiset of names.
package bag

// Bag counts occurrences of names. Keys iterate in first-insertion order so
// that anything derived from a Bag sorts reproducibly.
type Bag struct {
	counts map[string]int
	order  []string
}

// New returns a bag holding items.
func New(items ...string) *Bag {
	b := &Bag{counts: make(map[string]int, len(items))}
	for _, item := range items {
		b.Add(item)
	}
	return b
}

// Add inserts one item.
func (b *Bag) Add(item string) {
	b.AddN(item, 1)
}

// AddN inserts n copies of item.
func (b *Bag) AddN(item string, n int) {
	if n <= 0 {
		return
	}
	if b.counts == nil {
		b.counts = make(map[string]int)
	}
	if _, seen := b.counts[item]; !seen {
		b.order = append(b.order, item)
	}
	b.counts[item] += n
}

// Remove deletes one copy of item and reports whether one was present.
func (b *Bag) Remove(item string) bool {
	if b.counts[item] == 0 {
		return false
	}
	b.counts[item]--
	return true
}

// Count returns how many copies of item the bag holds.
func (b *Bag) Count(item string) int {
	return b.counts[item]
}

// Len returns the total number of items.
func (b *Bag) Len() int {
	n := 0
	for _, c := range b.counts {
		n += c
	}
	return n
}

// Keys returns the distinct items with a positive count, in insertion order.
func (b *Bag) Keys() []string {
	out := make([]string, 0, len(b.order))
	for _, item := range b.order {
		if b.counts[item] > 0 {
			out = append(out, item)
		}
	}
	return out
}

// Items expands the bag back into a list, grouped in insertion order.
func (b *Bag) Items() []string {
	out := make([]string, 0, b.Len())
	for _, item := range b.order {
		for i := 0; i < b.counts[item]; i++ {
			out = append(out, item)
		}
	}
	return out
}

// Equal reports whether both bags hold the same items with the same counts.
func (b *Bag) Equal(other *Bag) bool {
	return b.Contains(other) && other.Contains(b)
}

// Contains reports whether b holds at least every item of other.
func (b *Bag) Contains(other *Bag) bool {
	for item, n := range other.counts {
		if b.counts[item] < n {
			return false
		}
	}
	return true
}

// Union returns a new bag holding the items of both bags.
func (b *Bag) Union(other *Bag) *Bag {
	out := New()
	for _, item := range b.order {
		out.AddN(item, b.counts[item])
	}
	for _, item := range other.order {
		out.AddN(item, other.counts[item])
	}
	return out
}
