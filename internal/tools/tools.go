//go:build tools

// Package tools pins developer-tooling dependencies in go.mod so `go mod
// tidy` doesn't drop them; nothing here is part of the built binary.
package tools

import (
	_ "golang.org/x/lint/golint"
	_ "honnef.co/go/tools/staticcheck"
)
