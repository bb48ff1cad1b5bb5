//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools are installed via `go install` and are not tracked in go.mod
// since they are development tools, not runtime dependencies.
package tools

// Development tools (install via `go install`):
//
// mockgen - regenerates internal/mocks from the ports interfaces
//   Install: go install go.uber.org/mock/mockgen@v0.6.0
//   Run:     go generate ./internal/mocks/...
//   Docs: https://github.com/uber-go/mock
//
// Air - Live reload for cmd/tenderwatch during proxy development
//   Install: go install github.com/air-verse/air@v1.63.0
//   Run:     DEV=true air -- ./cmd/tenderwatch
//   Docs: https://github.com/air-verse/air
