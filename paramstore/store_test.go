package paramstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingRemoteKV always fails Set, to exercise the worker's fail-fast
// termination on a remote error.
type failingRemoteKV struct {
	*fakeRemoteKV
}

func (f *failingRemoteKV) Set(ctx context.Context, key string, value []byte, lease bool) error {
	return errors.New("remote unavailable")
}

// fakeRemoteKV is an in-process RemoteKV used to drive the worker loop in
// tests without a real etcd or Redis backend.
type fakeRemoteKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	notify  func(WatchOp)
	watchUp chan struct{}
}

func newFakeRemoteKV() *fakeRemoteKV {
	return &fakeRemoteKV{data: make(map[string][]byte), watchUp: make(chan struct{})}
}

func (f *fakeRemoteKV) Get(ctx context.Context, spec VarPathSpec) (map[string][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]byte)
	if spec.Prefix {
		for k, v := range f.data {
			if hasPrefix(k, spec.Key) {
				out[k] = v
			}
		}
		return out, nil
	}
	if v, ok := f.data[spec.Key]; ok {
		out[spec.Key] = v
	}
	return out, nil
}

func (f *fakeRemoteKV) Set(ctx context.Context, key string, value []byte, lease bool) error {
	f.mu.Lock()
	f.data[key] = value
	notify := f.notify
	f.mu.Unlock()
	if notify != nil {
		notify(WatchOp{Kind: WatchSet, Key: key, Value: value})
	}
	return nil
}

func (f *fakeRemoteKV) DelKey(ctx context.Context, key string) error {
	f.mu.Lock()
	delete(f.data, key)
	notify := f.notify
	f.mu.Unlock()
	if notify != nil {
		notify(WatchOp{Kind: WatchDelKey, Key: key})
	}
	return nil
}

func (f *fakeRemoteKV) DelPrefix(ctx context.Context, prefix string) error {
	f.mu.Lock()
	for k := range f.data {
		if hasPrefix(k, prefix) {
			delete(f.data, k)
		}
	}
	notify := f.notify
	f.mu.Unlock()
	if notify != nil {
		notify(WatchOp{Kind: WatchDelPrefix, Key: prefix})
	}
	return nil
}

func (f *fakeRemoteKV) Watch(ctx context.Context, notify func(WatchOp)) error {
	f.mu.Lock()
	f.notify = notify
	f.mu.Unlock()
	close(f.watchUp)
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeRemoteKV) seed(key string, value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
}

func TestStore_OrderDataUpdate_PopulatesMirror(t *testing.T) {
	remote := newFakeRemoteKV()
	remote.seed("parameters/node", []byte("value"))

	store := NewStore(remote)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.Run(ctx)
	defer store.Stop()

	assert.False(t, store.IsPresent("parameters/node"))
	store.OrderDataUpdate(SingleVar("parameters/node"))

	require.True(t, store.BlockingWaitKey("parameters/node", 2*time.Second))

	data, crc, ok := store.GetData("parameters/node")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), data)

	gotCRC, ok := store.GetDataChecksum("parameters/node")
	require.True(t, ok)
	assert.Equal(t, crc, gotCRC)
}

func TestStore_Set_PropagatesThroughWatch(t *testing.T) {
	remote := newFakeRemoteKV()
	store := NewStore(remote)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.Run(ctx)
	defer store.Stop()

	<-remote.watchUp
	store.Set("foo", []byte("bar"), false)

	require.True(t, store.BlockingWaitKey("foo", 2*time.Second))
	data, _, ok := store.GetData("foo")
	require.True(t, ok)
	assert.Equal(t, []byte("bar"), data)
}

func TestStore_DelKey(t *testing.T) {
	remote := newFakeRemoteKV()
	store := NewStore(remote)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.Run(ctx)
	defer store.Stop()

	<-remote.watchUp
	store.Set("foo", []byte("bar"), false)
	require.True(t, store.BlockingWaitKey("foo", 2*time.Second))

	store.DelKey("foo")
	require.Eventually(t, func() bool {
		return !store.IsPresent("foo")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStore_Stop_Idempotent(t *testing.T) {
	remote := newFakeRemoteKV()
	store := NewStore(remote)
	ctx := context.Background()
	store.Run(ctx)

	store.Stop()
	assert.NotPanics(t, func() { store.Stop() })
	assert.False(t, store.IsActive())
}

func TestStore_BlockingWaitKey_PanicsWhenInactive(t *testing.T) {
	remote := newFakeRemoteKV()
	store := NewStore(remote)
	ctx := context.Background()
	store.Run(ctx)
	store.Stop()

	assert.Panics(t, func() {
		store.BlockingWaitKey("foo", 50*time.Millisecond)
	})
}

func TestStore_RemoteFailure_TerminatesWorker(t *testing.T) {
	remote := &failingRemoteKV{fakeRemoteKV: newFakeRemoteKV()}
	store := NewStore(remote)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.Run(ctx)

	<-remote.watchUp
	store.Set("foo", []byte("bar"), false)

	require.Eventually(t, func() bool {
		return !store.IsActive()
	}, 2*time.Second, 10*time.Millisecond, "worker should terminate on remote failure")

	assert.Panics(t, func() {
		store.Set("foo", []byte("bar"), false)
	})
}

func TestStore_Set_PanicsWhenInactive(t *testing.T) {
	remote := newFakeRemoteKV()
	store := NewStore(remote)
	ctx := context.Background()
	store.Run(ctx)
	store.Stop()

	assert.Panics(t, func() {
		store.Set("foo", []byte("bar"), false)
	})
}
