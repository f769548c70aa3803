package storage

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Put(ctx context.Context, folder string, img Image) (Object, error) {
	args := m.Called(ctx, folder, img)
	return args.Get(0).(Object), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
