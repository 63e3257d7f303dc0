// Package filter decides which paths a directory walk yields, using ordered
// rsync-style include/exclude globs plus optional size bounds.
package filter

// Rule represents a single include or exclude filter rule.
type Rule struct {
	Pattern *compiledPattern
	Include bool // true=include, false=exclude
}

// Chain holds an ordered list of filter rules plus size filters.
// A Chain is read-only once the walk starts and may be shared by workers.
type Chain struct {
	rules   []Rule
	minSize int64
	maxSize int64
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude appends an exclude rule.
func (c *Chain) AddExclude(pattern string) error { return c.add(pattern, false) }

// AddInclude appends an include rule.
func (c *Chain) AddInclude(pattern string) error { return c.add(pattern, true) }

func (c *Chain) add(pattern string, include bool) error {
	cp, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{Pattern: cp, Include: include})
	return nil
}

// Append adds other's rules after c's own. Size bounds from other apply
// only where c has none. A nil other is a no-op.
func (c *Chain) Append(other *Chain) {
	if other == nil {
		return
	}
	c.rules = append(c.rules, other.rules...)
	if c.minSize == 0 {
		c.minSize = other.minSize
	}
	if c.maxSize == 0 {
		c.maxSize = other.maxSize
	}
}

// SetMinSize sets the minimum file size filter.
func (c *Chain) SetMinSize(n int64) { c.minSize = n }

// SetMaxSize sets the maximum file size filter.
func (c *Chain) SetMaxSize(n int64) { c.maxSize = n }

// Empty reports whether the chain has no rules and no size filters.
func (c *Chain) Empty() bool {
	return c == nil || (len(c.rules) == 0 && c.minSize == 0 && c.maxSize == 0)
}

// Match reports whether relPath should be included. Size bounds apply to
// files only; the first matching rule wins; unmatched paths are included.
// A nil Chain includes everything.
func (c *Chain) Match(relPath string, isDir bool, size int64) bool {
	if c == nil {
		return true
	}
	if !isDir {
		if c.minSize > 0 && size < c.minSize {
			return false
		}
		if c.maxSize > 0 && size > c.maxSize {
			return false
		}
	}

	for _, rule := range c.rules {
		if rule.Pattern.match(relPath, isDir) {
			return rule.Include
		}
	}
	return true
}
