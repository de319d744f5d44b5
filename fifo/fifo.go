// Package fifo implements a bounded, durable append/pop byte-buffer queue
// over an embedded bbolt key-value store, using monotonic wraparound
// 128-bit indices so push/pop never need to shift existing entries.
package fifo

import (
	"errors"
	"math/big"
	"sync"

	bolt "go.etcd.io/bbolt"

	"github.com/insight-platform/go-savant-core/config"
	"github.com/insight-platform/go-savant-core/logger"
	"github.com/insight-platform/go-savant-core/metrics/prometheus"
)

var fifoLog = logger.For("savant.fifo")

// Sentinel errors identifying the queue's failure modes.
var (
	ErrFull  = errors.New("fifo: queue is full")
	ErrEmpty = errors.New("fifo: queue is empty")
)

var bucketName = []byte("fifo")

// writeIndexKey and readIndexKey are the two reserved cells holding the
// current write and read indices, keyed above every valid data index.
var (
	writeIndexKey = encodeIndex(maxKeySpace())
	readIndexKey  = encodeIndex(new(big.Int).Sub(maxKeySpace(), big.NewInt(1)))
)

// maxKeySpace returns 2^128 - 1, the highest value a 16-byte key can hold.
// WRITE_INDEX occupies 2^128-1 and READ_INDEX occupies 2^128-2; data keys
// occupy [0, 2^128-3].
func maxKeySpace() *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), 128)
	return max.Sub(max, big.NewInt(1))
}

// ringModulus is MAX_ALLOWED_INDEX: the number of data slots in the ring
// (indices 0..2^128-3 inclusive), the modulus write/read indices wrap
// around under.
func ringModulus() *big.Int {
	return new(big.Int).Sub(maxKeySpace(), big.NewInt(1))
}

// encodeIndex renders a big.Int (must be non-negative and fit in 128 bits)
// as a 16-byte little-endian key.
func encodeIndex(idx *big.Int) []byte {
	buf := make([]byte, 16)
	b := idx.Bytes() // big-endian, no leading zeros
	for i := 0; i < len(b) && i < 16; i++ {
		buf[i] = b[len(b)-1-i]
	}
	return buf
}

func decodeIndex(buf []byte) *big.Int {
	be := make([]byte, len(buf))
	for i, bVal := range buf {
		be[len(buf)-1-i] = bVal
	}
	return new(big.Int).SetBytes(be)
}

// Queue is a bounded durable FIFO of byte buffers.
type Queue struct {
	db          *bolt.DB
	maxElements uint64

	mu       sync.Mutex
	writeIdx *big.Int
	readIdx  *big.Int
}

// Open opens (creating if necessary) a bbolt-backed queue at path, bounded
// to maxElements entries, restoring write/read indices from their reserved
// cells if present.
func Open(path string, maxElements uint64) (*Queue, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	q := &Queue{db: db, maxElements: maxElements}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	if err := q.Reopen(); err != nil {
		db.Close()
		return nil, err
	}
	return q, nil
}

// OpenWithConfig opens a queue the way Open does, sourcing path and
// maxElements from cfg.
func OpenWithConfig(cfg config.FIFOConfig) (*Queue, error) {
	return Open(cfg.Path, cfg.MaxElements)
}

// Reopen restores write_index and read_index from their reserved cells,
// defaulting to 0 if absent.
func (q *Queue) Reopen() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	writeIdx := big.NewInt(0)
	readIdx := big.NewInt(0)

	err := q.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if v := b.Get(writeIndexKey); v != nil {
			writeIdx = decodeIndex(v)
		}
		if v := b.Get(readIndexKey); v != nil {
			readIdx = decodeIndex(v)
		}
		return nil
	})
	if err != nil {
		return err
	}

	q.writeIdx = writeIdx
	q.readIdx = readIdx
	return nil
}

// length returns (write - read) mod MAX_ALLOWED_INDEX. Callers must hold
// q.mu.
func (q *Queue) length() *big.Int {
	diff := new(big.Int).Sub(q.writeIdx, q.readIdx)
	return diff.Mod(diff, ringModulus())
}

// Len reports the number of entries currently queued.
func (q *Queue) Len() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.length().Uint64()
}

// Push appends data to the tail of the queue, failing with ErrFull if the
// queue is already at capacity. The data cell write and the advanced
// WRITE_INDEX are committed in a single atomic batch.
func (q *Queue) Push(data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.length().Uint64() >= q.maxElements {
		logger.FIFOOp(fifoLog, "push", q.length().Uint64(), ErrFull)
		prometheus.RecordFIFOOp("push", "error")
		return ErrFull
	}

	cellKey := encodeIndex(q.writeIdx)
	nextWrite := new(big.Int).Add(q.writeIdx, big.NewInt(1))
	nextWrite.Mod(nextWrite, ringModulus())

	err := q.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if err := b.Put(cellKey, data); err != nil {
			return err
		}
		return b.Put(writeIndexKey, encodeIndex(nextWrite))
	})
	if err != nil {
		logger.FIFOOp(fifoLog, "push", q.length().Uint64(), err)
		prometheus.RecordFIFOOp("push", "error")
		return err
	}

	q.writeIdx = nextWrite
	depth := q.length().Uint64()
	logger.FIFOOp(fifoLog, "push", depth, nil)
	prometheus.RecordFIFOOp("push", "success")
	prometheus.SetFIFODepth(int(depth))
	return nil
}

// Pop removes and returns the entry at the head of the queue, returning
// ErrEmpty if nothing is queued. The data cell deletion and the advanced
// READ_INDEX are committed in a single atomic batch.
func (q *Queue) Pop() ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.writeIdx.Cmp(q.readIdx) == 0 {
		logger.FIFOOp(fifoLog, "pop", 0, ErrEmpty)
		prometheus.RecordFIFOOp("pop", "error")
		return nil, ErrEmpty
	}

	cellKey := encodeIndex(q.readIdx)
	var data []byte

	err := q.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		v := b.Get(cellKey)
		if v == nil {
			return ErrEmpty
		}
		data = append([]byte(nil), v...)
		if err := b.Delete(cellKey); err != nil {
			return err
		}
		nextRead := new(big.Int).Add(q.readIdx, big.NewInt(1))
		nextRead.Mod(nextRead, ringModulus())
		return b.Put(readIndexKey, encodeIndex(nextRead))
	})
	if err != nil {
		logger.FIFOOp(fifoLog, "pop", q.length().Uint64(), err)
		prometheus.RecordFIFOOp("pop", "error")
		return nil, err
	}

	nextRead := new(big.Int).Add(q.readIdx, big.NewInt(1))
	nextRead.Mod(nextRead, ringModulus())
	q.readIdx = nextRead
	depth := q.length().Uint64()
	logger.FIFOOp(fifoLog, "pop", depth, nil)
	prometheus.RecordFIFOOp("pop", "success")
	prometheus.SetFIFODepth(int(depth))
	return data, nil
}

// Close releases the underlying bbolt database handle.
func (q *Queue) Close() error {
	return q.db.Close()
}
