package credential

import "github.com/stretchr/testify/mock"

var _ Store = (*MockStore)(nil)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(username string) (string, bool, error) {
	args := m.Called(username)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStore) Set(username, password string) error {
	args := m.Called(username, password)
	return args.Error(0)
}

func (m *MockStore) Delete(username string) error {
	args := m.Called(username)
	return args.Error(0)
}
