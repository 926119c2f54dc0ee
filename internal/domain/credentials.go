package domain

// Credentials authenticate a single push. The password is kept as a byte
// slice so it can be wiped once the push returns.
type Credentials struct {
	Username string
	Password []byte
}

// Valid reports whether both parts are present.
func (c *Credentials) Valid() bool {
	return c != nil && c.Username != "" && len(c.Password) > 0
}

// Wipe zeroes the password buffer.
func (c *Credentials) Wipe() {
	if c == nil {
		return
	}
	for i := range c.Password {
		c.Password[i] = 0
	}
	c.Password = nil
}
