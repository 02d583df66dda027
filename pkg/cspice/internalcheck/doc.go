// Package internalcheck holds static policy tests for the cspice binding.
//
// The tests load pkg/cspice with golang.org/x/tools/go/packages and inspect
// its syntax trees. They assert that native calls are only made from code
// that received the backend from a token's critical section, and that the
// backend is only handed out by the token itself.
//
// # Internal Use Only
//
// This package has no API. Applications should not import it.
package internalcheck
