// Package mocks provides testify mocks for the interfaces in api/schemas.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/marketprobe/api/schemas"
)

// -- Page Session Mock --

// MockPageSession mocks the schemas.PageSession interface.
type MockPageSession struct {
	mock.Mock
}

func (m *MockPageSession) ID() string {
	return m.Called().String(0)
}

func (m *MockPageSession) Acquire(ctx context.Context) (func(), error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

func (m *MockPageSession) Navigate(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

func (m *MockPageSession) Click(ctx context.Context, selector string, timeout time.Duration) error {
	return m.Called(ctx, selector, timeout).Error(0)
}

func (m *MockPageSession) Fill(ctx context.Context, selector, text string, pressEnter bool) error {
	return m.Called(ctx, selector, text, pressEnter).Error(0)
}

func (m *MockPageSession) WaitFor(ctx context.Context, selector string, state schemas.WaitState, timeout time.Duration) error {
	return m.Called(ctx, selector, state, timeout).Error(0)
}

func (m *MockPageSession) DismissCookieBanner(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockPageSession) ExtractTopListing(ctx context.Context) (schemas.GainerPayload, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return schemas.GainerPayload{}, args.Error(1)
	}
	return args.Get(0).(schemas.GainerPayload), args.Error(1)
}

func (m *MockPageSession) Describe(ctx context.Context) (*schemas.PageSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schemas.PageSnapshot), args.Error(1)
}

func (m *MockPageSession) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// ExpectAcquire registers a default Acquire expectation that hands out a
// no-op release func. Most tests want the slot machinery out of the way.
func (m *MockPageSession) ExpectAcquire() *mock.Call {
	return m.On("Acquire", mock.Anything).Return(func() {}, nil)
}

// -- Session Manager Mock --

// MockSessionManager mocks the schemas.SessionManager interface.
type MockSessionManager struct {
	mock.Mock
}

func (m *MockSessionManager) NewSession(ctx context.Context) (schemas.PageSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(schemas.PageSession), args.Error(1)
}

func (m *MockSessionManager) Shutdown(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var (
	_ schemas.PageSession    = (*MockPageSession)(nil)
	_ schemas.SessionManager = (*MockSessionManager)(nil)
)
