// Package middleware provides the HTTP middleware shared by every module and
// the stack that orders it.
package middleware

import "net/http"

// Stack is an ordered list of middleware. The first entry added is the
// outermost and sees each request first.
type Stack []func(http.Handler) http.Handler

// Use appends fn to the stack.
func (s *Stack) Use(fn func(http.Handler) http.Handler) {
	*s = append(*s, fn)
}

// Apply wraps h with every entry of the stack.
func (s Stack) Apply(h http.Handler) http.Handler {
	for i := len(s) - 1; i >= 0; i-- {
		h = s[i](h)
	}
	return h
}
