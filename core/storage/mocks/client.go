package mocks

import (
	"context"
	"io"

	"profile-directory/core/storage"

	"github.com/stretchr/testify/mock"
)

// Client is a testify mock of storage.Client.
type Client struct {
	mock.Mock
	// Name is returned by Bucket.
	Name string
}

var _ storage.Client = (*Client)(nil)

func (m *Client) Bucket() string { return m.Name }

func (m *Client) BucketExists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *Client) EnsureBucket(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *Client) Put(ctx context.Context, key string, data []byte, opts storage.PutOptions) error {
	return m.Called(ctx, key, data, opts).Error(0)
}

func (m *Client) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if obj, ok := args.Get(0).(io.ReadCloser); ok {
		return obj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) List(ctx context.Context, prefix string) ([]storage.Object, error) {
	args := m.Called(ctx, prefix)
	objs, _ := args.Get(0).([]storage.Object)
	return objs, args.Error(1)
}

func (m *Client) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
