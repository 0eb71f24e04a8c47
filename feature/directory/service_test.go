package directory

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"profile-directory/core/backend"
	"profile-directory/core/backend/mocks"
	"profile-directory/core/reconcile"
	"profile-directory/feature/profile/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	documents *mocks.Documents
	realtime  *mocks.Realtime
	sub       *mocks.Subscription
	service   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		documents: new(mocks.Documents),
		realtime:  new(mocks.Realtime),
		sub:       new(mocks.Subscription),
	}
	f.realtime.On("Subscribe", mock.Anything, mock.Anything).Return(f.sub, nil)
	f.sub.On("Close").Return(nil)

	src := NewSource(f.documents, f.realtime, "db", "profiles", zap.NewNop())
	f.service = NewService(src, reconcile.Config{QueueSize: 16}, nil, zap.NewNop())
	t.Cleanup(f.service.Stop)
	return f
}

func (f *fixture) push(raw string) {
	f.realtime.Handler.OnEvent(backend.Event{Payload: json.RawMessage(raw)})
}

func ids(profiles []models.Profile) []string {
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.ID)
	}
	return out
}

func TestService_Scenario(t *testing.T) {
	f := newFixture(t)
	f.documents.On("List", mock.Anything, "db", "profiles", publicOnly).Return(docs(
		`{"$id":"1","name":"Ann","city":"Pune","isPublic":true}`,
		`{"$id":"2","name":"Bob","city":"Delhi","isPublic":true}`,
	), nil)

	var mu sync.Mutex
	var changes int
	f.service.OnChange(func([]models.Profile) {
		mu.Lock()
		changes++
		mu.Unlock()
	})

	require.NoError(t, f.service.Start(context.Background()))
	assert.Equal(t, []string{"1", "2"}, ids(f.service.List("")))

	f.push(`{"$id":"2","name":"Bobby","city":"Delhi","isPublic":true}`)
	f.push(`{"$id":"3","name":"Cy","city":"Pune","isPublic":true}`)
	f.push(`{"$id":"1","name":"Ann","city":"Pune","isPublic":false}`)

	require.Eventually(t, func() bool {
		return f.service.Status().EventsApplied == 3
	}, 2*time.Second, 5*time.Millisecond)

	list := f.service.List("")
	assert.Equal(t, []string{"2", "3"}, ids(list))
	assert.Equal(t, "Bobby", list[0].Name)
	assert.Equal(t, []string{"3"}, ids(f.service.List("pune")))
	assert.Equal(t, []string{"2"}, ids(f.service.List("  BOB ")))

	mu.Lock()
	assert.Equal(t, 4, changes)
	mu.Unlock()
}

func TestService_FetchFailureThenRefresh(t *testing.T) {
	f := newFixture(t)
	f.documents.On("List", mock.Anything, "db", "profiles", publicOnly).Return(nil, assert.AnError).Once()
	f.documents.On("List", mock.Anything, "db", "profiles", publicOnly).Return(docs(`{"$id":"1","isPublic":true}`), nil)

	err := f.service.Start(context.Background())
	assert.ErrorIs(t, err, reconcile.ErrFetch)
	assert.Empty(t, f.service.List(""))
	assert.False(t, f.service.Status().Initialized)
	assert.True(t, f.service.Status().Subscribed)

	profiles, err := f.service.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(profiles))
	assert.True(t, f.service.Status().Initialized)
}

func TestService_RestartReleasesSubscription(t *testing.T) {
	f := newFixture(t)
	f.documents.On("List", mock.Anything, "db", "profiles", publicOnly).Return(docs(), nil)

	require.NoError(t, f.service.Start(context.Background()))
	require.NoError(t, f.service.Start(context.Background()))
	f.sub.AssertNumberOfCalls(t, "Close", 1)
	f.realtime.AssertNumberOfCalls(t, "Subscribe", 2)

	f.service.Stop()
	f.service.Stop()
	f.sub.AssertNumberOfCalls(t, "Close", 2)
}

func TestService_NotStarted(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Refresh(context.Background())
	assert.ErrorIs(t, err, reconcile.ErrNotStarted)
	assert.Empty(t, f.service.List("x"))
	assert.Equal(t, reconcile.PolicyReplay, f.service.Status().Policy)
}

func TestService_SubscriptionLost(t *testing.T) {
	f := newFixture(t)
	f.documents.On("List", mock.Anything, "db", "profiles", publicOnly).Return(docs(`{"$id":"1","isPublic":true}`), nil)

	require.NoError(t, f.service.Start(context.Background()))
	f.realtime.Handler.OnLost(assert.AnError)

	st := f.service.Status()
	assert.False(t, st.Subscribed)
	assert.Equal(t, assert.AnError.Error(), st.LastError)
	assert.Equal(t, []string{"1"}, ids(f.service.List("")), "list is kept")
}
