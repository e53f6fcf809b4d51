package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"taskrealm/server/events"
)

// MockPublisher is a testify mock of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

var _ events.Publisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
