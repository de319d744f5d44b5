// Package paramstore mirrors a watched remote key-value backend into an
// in-process snapshot, so that hot-path reads never cross the network.
// Mutations and fetch orders are queued and drained by a single background
// worker; the remote's watch stream is the only path that updates the local
// snapshot for keys already present, keeping the mirror eventually
// consistent with the source of truth.
package paramstore

import (
	"context"
	"hash/crc32"
	"sync"
	"sync/atomic"
	"time"

	"github.com/insight-platform/go-savant-core/logger"
	"github.com/insight-platform/go-savant-core/metrics/prometheus"
)

const blockingWaitPollInterval = 10 * time.Millisecond

type entry struct {
	crc   uint32
	value []byte
}

// Store is the in-process mirror of a RemoteKV. It must be started with Run
// before any other method is called, and every mutating/reading method
// except Stop panics if the store is not active, matching the fail-fast
// contract the parameter storage's original implementation enforces.
type Store struct {
	remote RemoteKV

	mu     sync.RWMutex
	params map[string]entry

	ops    chan op
	active atomic.Bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewStore returns a Store that has not yet been started.
func NewStore(remote RemoteKV) *Store {
	return &Store{
		remote: remote,
		params: make(map[string]entry),
		ops:    make(chan op, 256),
		done:   make(chan struct{}),
	}
}

// Run starts the background worker and the remote watch loop. Run must be
// called at most once per Store.
func (s *Store) Run(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.active.Store(true)

	go s.watchLoop(workerCtx)
	go s.workerLoop(workerCtx)
}

func (s *Store) watchLoop(ctx context.Context) {
	_ = s.remote.Watch(ctx, func(w WatchOp) {
		switch w.Kind {
		case WatchSet:
			s.mu.Lock()
			s.params[w.Key] = entry{crc: crc32.ChecksumIEEE(w.Value), value: w.Value}
			s.mu.Unlock()
		case WatchDelKey:
			s.mu.Lock()
			delete(s.params, w.Key)
			s.mu.Unlock()
		case WatchDelPrefix:
			s.mu.Lock()
			for k := range s.params {
				if hasPrefix(k, w.Key) {
					delete(s.params, k)
				}
			}
			s.mu.Unlock()
		}
	})
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// workerLoop drains s.ops until ctx is cancelled or a remote operation
// fails. A remote failure terminates the worker immediately (fail-fast):
// the deferred active.Store(false) makes IsActive observe the failure, and
// any subsequent mutating call through requireActive panics.
func (s *Store) workerLoop(ctx context.Context) {
	defer close(s.done)
	defer s.active.Store(false)

	log := logger.For("savant.paramstore")

	for {
		select {
		case <-ctx.Done():
			return
		case o := <-s.ops:
			if err := s.handleOp(ctx, o); err != nil {
				logger.ParamStoreOp(log, o.kind.String(), o.key, err)
				prometheus.RecordParamStoreOp(o.kind.String(), "error")
				if s.cancel != nil {
					s.cancel()
				}
				return
			}
			logger.ParamStoreOp(log, o.kind.String(), o.key, nil)
			prometheus.RecordParamStoreOp(o.kind.String(), "success")
		}
	}
}

// handleOp performs a single queued operation against the remote backend.
// A non-nil return is a remote failure and must terminate workerLoop.
func (s *Store) handleOp(ctx context.Context, o op) error {
	switch o.kind {
	case opGet:
		res, err := s.remote.Get(ctx, o.spec)
		if err != nil {
			return err
		}
		s.mu.Lock()
		for k, v := range res {
			s.params[k] = entry{crc: crc32.ChecksumIEEE(v), value: v}
		}
		s.mu.Unlock()
		prometheus.SetParamStoreKeysMirrored(s.keyCountLocked())
		return nil
	case opSet:
		if err := s.remote.Set(ctx, o.key, o.value, o.lease); err != nil {
			return err
		}
		return nil
	case opDelKey:
		if err := s.remote.DelKey(ctx, o.key); err != nil {
			return err
		}
		return nil
	case opDelPrefix:
		if err := s.remote.DelPrefix(ctx, o.key); err != nil {
			return err
		}
		return nil
	}
	return nil
}

func (s *Store) keyCountLocked() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.params)
}

func (s *Store) requireActive() {
	if !s.active.Load() {
		panic("paramstore: store is not active")
	}
}

// OrderDataUpdate enqueues a fetch of spec from the remote, refreshing the
// local mirror once the worker drains it.
func (s *Store) OrderDataUpdate(spec VarPathSpec) {
	s.requireActive()
	s.ops <- op{kind: opGet, spec: spec}
}

// Set enqueues a write of key=value to the remote. The local mirror is
// updated only once the remote's watch stream reflects the change.
func (s *Store) Set(key string, value []byte, lease bool) {
	s.requireActive()
	s.ops <- op{kind: opSet, key: key, value: value, lease: lease}
}

// DelKey enqueues removal of a single key from the remote.
func (s *Store) DelKey(key string) {
	s.requireActive()
	s.ops <- op{kind: opDelKey, key: key}
}

// DelPrefix enqueues removal of every key sharing prefix from the remote.
func (s *Store) DelPrefix(prefix string) {
	s.requireActive()
	s.ops <- op{kind: opDelPrefix, key: prefix}
}

// GetData returns the mirrored value and CRC32 checksum for key.
func (s *Store) GetData(key string) ([]byte, uint32, bool) {
	s.requireActive()
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.params[key]
	if !ok {
		return nil, 0, false
	}
	return e.value, e.crc, true
}

// GetDataChecksum returns only the mirrored CRC32 checksum for key.
func (s *Store) GetDataChecksum(key string) (uint32, bool) {
	s.requireActive()
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.params[key]
	if !ok {
		return 0, false
	}
	return e.crc, true
}

// IsPresent reports whether key currently has a mirrored value.
func (s *Store) IsPresent(key string) bool {
	s.requireActive()
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.params[key]
	return ok
}

// IsActive reports whether the background worker is still running.
func (s *Store) IsActive() bool {
	return s.active.Load()
}

// BlockingWaitKey polls every 10ms until key becomes present or timeout
// elapses, returning whether it became present in time. It panics if the
// store is not active, matching the fail-fast contract a caller relies on
// when it expects the worker to already be servicing it.
func (s *Store) BlockingWaitKey(key string, timeout time.Duration) bool {
	start := time.Now()
	deadline := start.Add(timeout)
	ticker := time.NewTicker(blockingWaitPollInterval)
	defer ticker.Stop()

	for {
		s.requireActive()
		if s.IsPresent(key) {
			prometheus.RecordParamStoreBlockingWait("found", time.Since(start).Seconds())
			return true
		}
		if time.Now().After(deadline) {
			prometheus.RecordParamStoreBlockingWait("timeout", time.Since(start).Seconds())
			return false
		}
		<-ticker.C
	}
}

// Stop halts the background worker and watch loop. Stop is idempotent.
func (s *Store) Stop() {
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done
}
