package canonical

// counter is a frequency counter that remembers first-seen order, so the
// winner among equal counts is always the value seen first.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(v string) {
	if _, ok := c.counts[v]; !ok {
		c.order = append(c.order, v)
	}
	c.counts[v]++
}

// top returns the most frequent value, or "" when nothing was counted.
func (c *counter) top() string {
	best, bestCount := "", 0
	for _, v := range c.order {
		if n := c.counts[v]; n > bestCount {
			best, bestCount = v, n
		}
	}
	return best
}
