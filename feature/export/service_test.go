package export

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"profile-directory/core/storage"
	"profile-directory/core/storage/mocks"
	"profile-directory/feature/profile/models"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticLister []models.Profile

func (l staticLister) List(string) []models.Profile { return l }

func newTestService(client *mocks.Client) *Service {
	client.Name = "profile-snapshots"
	svc := NewService(client, staticLister{
		{ID: "1", Name: "Ann", City: "Pune", IsPublic: true},
		{ID: "2", Name: "Bob", IsPublic: true},
	}, zap.NewNop())
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	return svc
}

func TestExport(t *testing.T) {
	client := new(mocks.Client)
	client.On("EnsureBucket", mock.Anything).Return(true, nil)

	var stored []byte
	client.On("Put", mock.Anything, "snapshots/public-profiles-1700000000.json.gz", mock.Anything,
		storage.PutOptions{ContentType: "application/json", ContentEncoding: "gzip"}).
		Run(func(args mock.Arguments) {
			stored = args.Get(2).([]byte)
		}).
		Return(nil)

	svc := newTestService(client)
	info, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "public-profiles-1700000000.json.gz", info.Name)
	assert.Equal(t, 2, info.Total)
	assert.Equal(t, int64(len(stored)), info.Size)

	zr, err := gzip.NewReader(bytes.NewReader(stored))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(plain), `"name":"Ann"`)

	// Round trip through Load.
	client.On("Get", mock.Anything, "snapshots/public-profiles-1700000000.json.gz").
		Return(io.NopCloser(bytes.NewReader(stored)), nil)
	snapshot, err := svc.Load(context.Background(), info.Name)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.Total)
	assert.Equal(t, "Pune", snapshot.Profiles[0].City)
	client.AssertExpectations(t)
}

func TestExport_Errors(t *testing.T) {
	t.Run("Bucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("EnsureBucket", mock.Anything).Return(false, assert.AnError)

		_, err := newTestService(client).Export(context.Background())
		assert.ErrorIs(t, err, assert.AnError)
		client.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Upload", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("EnsureBucket", mock.Anything).Return(false, nil)
		client.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

		_, err := newTestService(client).Export(context.Background())
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestList(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything).Return(true, nil)
	client.On("List", mock.Anything, Prefix).Return([]storage.Object{
		{Key: "snapshots/public-profiles-1700000000.json.gz", Size: 10},
		{Key: "snapshots/readme.txt"},
		{Key: "snapshots/public-profiles-1700000500.json.gz", Size: 12},
	}, nil)

	infos, err := newTestService(client).List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "public-profiles-1700000500.json.gz", infos[0].Name)
	assert.Equal(t, int64(10), infos[1].Size)
}

func TestList_MissingBucket(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything).Return(false, nil)

	infos, err := newTestService(client).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, infos)
	client.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestPrune(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything).Return(true, nil)
	client.On("List", mock.Anything, Prefix).Return([]storage.Object{
		{Key: "snapshots/public-profiles-1700000000.json.gz"},
		{Key: "snapshots/public-profiles-1700000100.json.gz"},
		{Key: "snapshots/public-profiles-1700000200.json.gz"},
	}, nil)
	client.On("Remove", mock.Anything, "snapshots/public-profiles-1700000000.json.gz").Return(nil)

	removed, err := newTestService(client).Prune(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"public-profiles-1700000000.json.gz"}, removed)
	client.AssertNumberOfCalls(t, "Remove", 1)
}

func TestLoad_InvalidName(t *testing.T) {
	_, err := newTestService(new(mocks.Client)).Load(context.Background(), "../etc/passwd")
	assert.Error(t, err)
}
