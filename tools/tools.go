//go:build tools

// Package tools pins the linter used for workgate in its own module so that it stays
// out of the library's dependency graph. Run it with:
//
//	go run -modfile=tools/go.mod github.com/golangci/golangci-lint/cmd/golangci-lint run ./...
package tools

import (
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
)
