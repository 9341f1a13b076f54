package calendar

// versionClock orders load and save completions within one session.
// Tokens are issued in call order; a completion older than the newest one
// already applied is stale.
type versionClock struct {
	issued  uint64
	applied uint64
}

func (c *versionClock) issue() uint64 {
	c.issued++
	return c.issued
}

// complete marks tok applied and reports false when it is stale.
func (c *versionClock) complete(tok uint64) bool {
	if tok <= c.applied {
		return false
	}
	c.applied = tok
	return true
}

// newest reports whether nothing was issued after tok.
func (c *versionClock) newest(tok uint64) bool {
	return tok == c.issued
}
