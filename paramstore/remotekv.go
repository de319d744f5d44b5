package paramstore

import "context"

// VarPathSpec selects either a single key or every key under a prefix for a
// fetch operation issued against a RemoteKV.
type VarPathSpec struct {
	Key    string
	Prefix bool
}

// SingleVar returns a VarPathSpec selecting exactly one key.
func SingleVar(key string) VarPathSpec {
	return VarPathSpec{Key: key}
}

// PrefixVar returns a VarPathSpec selecting every key sharing the given
// prefix.
func PrefixVar(prefix string) VarPathSpec {
	return VarPathSpec{Key: prefix, Prefix: true}
}

// WatchOpKind discriminates the kind of change a RemoteKV watch delivers.
type WatchOpKind int

const (
	WatchSet WatchOpKind = iota
	WatchDelKey
	WatchDelPrefix
)

// WatchOp is a single change notification delivered by RemoteKV.Watch.
type WatchOp struct {
	Kind  WatchOpKind
	Key   string
	Value []byte
}

// RemoteKV abstracts the watched key-value backend the parameter store
// mirrors into its in-process snapshot. Implementations live in
// paramstore/etcdkv and paramstore/rediskv.
type RemoteKV interface {
	Get(ctx context.Context, spec VarPathSpec) (map[string][]byte, error)
	Set(ctx context.Context, key string, value []byte, lease bool) error
	DelKey(ctx context.Context, key string) error
	DelPrefix(ctx context.Context, prefix string) error
	Watch(ctx context.Context, notify func(WatchOp)) error
}
