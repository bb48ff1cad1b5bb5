// Package mocks provides generated mock implementations of tenderwatch ports.
//
// This package uses go.uber.org/mock (gomock). To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	src := mocks.NewMockSessionSource(ctrl)
//	src.EXPECT().State(gomock.Any(), gomock.Any()).Return(auth.SessionState{Loading: true})
package mocks

// Generate mock for SessionSource interface from internal/ports package.
// This creates MockSessionSource with the State method.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_source_mock.go github.com/target/tenderwatch/internal/ports SessionSource
