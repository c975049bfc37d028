package casing

import "fmt"

// KeyError reports a key that violates the configured convention.
type KeyError struct {
	Key        string
	Convention string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key `%s` is not properly %s", e.Key, e.Convention)
}

// Checker validates JSON object keys against a convention, with a
// whitelist of keys that are exempt from the rule. The zero value
// accepts everything.
type Checker struct {
	convention Convention
	whitelist  map[string]struct{}
}

func NewChecker(convention Convention, whitelist []string) *Checker {
	c := &Checker{convention: convention}
	if len(whitelist) > 0 {
		c.whitelist = make(map[string]struct{}, len(whitelist))
		for _, k := range whitelist {
			c.whitelist[k] = struct{}{}
		}
	}
	return c
}

// Check returns a *KeyError when key violates the convention and is not
// whitelisted. It has no side effects.
func (c *Checker) Check(key string) error {
	if c == nil {
		return nil
	}
	if _, ok := c.whitelist[key]; ok {
		return nil
	}
	if c.convention.Valid(key) {
		return nil
	}
	return &KeyError{Key: key, Convention: c.convention.Name()}
}
