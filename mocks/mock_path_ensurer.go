package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockPathEnsurer is a mock implementation of port.PathEnsurer.
type MockPathEnsurer struct {
	mock.Mock
}

func (m *MockPathEnsurer) EnsureDir(dir string) error {
	args := m.Called(dir)
	return args.Error(0)
}

func (m *MockPathEnsurer) EnsureParent(path string) error {
	args := m.Called(path)
	return args.Error(0)
}
