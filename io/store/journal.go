package store

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	defaultJournalPrefix           = "states_"
	defaultJournalSegmentThreshold = 1000
	defaultJournalMaxSegments      = 100
)

// JournalOptions configures OpenJournal.
type JournalOptions struct {
	Dir              string
	Prefix           string
	SegmentThreshold int
	MaxSegments      int
}

// Journal is an append-only log of request state writes. The state stores
// keep the latest state only; the journal keeps all of them.
type Journal struct {
	mu   sync.Mutex
	wal  *gowal.Wal
	next uint64
}

// OpenJournal opens the journal in opts.Dir and positions it after the last entry.
func OpenJournal(opts JournalOptions) (*Journal, error) {
	if opts.Dir == "" {
		return nil, errors.New("journal dir is empty")
	}
	if opts.Prefix == "" {
		opts.Prefix = defaultJournalPrefix
	}
	if opts.SegmentThreshold <= 0 {
		opts.SegmentThreshold = defaultJournalSegmentThreshold
	}
	if opts.MaxSegments <= 0 {
		opts.MaxSegments = defaultJournalMaxSegments
	}

	wal, err := gowal.NewWAL(gowal.Config{
		Dir:              opts.Dir,
		Prefix:           opts.Prefix,
		SegmentThreshold: opts.SegmentThreshold,
		MaxSegments:      opts.MaxSegments,
		IsInSyncDiskMode: false,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open state journal")
	}

	j := &Journal{wal: wal}
	var hasEntries bool
	for msg := range wal.Iterator() {
		hasEntries = true
		if msg.Idx >= j.next {
			j.next = msg.Idx
		}
	}
	if hasEntries {
		j.next++
	}

	return j, nil
}

// Append records state as the newest entry.
func (j *Journal) Append(state dto.RequestState) error {
	raw, err := msgpack.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "encode journal entry")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.wal.Write(j.next, state.RequestID, raw); err != nil {
		return errors.Wrapf(err, "append state of %s to journal", state.RequestID)
	}
	j.next++
	return nil
}

// History returns every recorded state of requestID, oldest first.
func (j *Journal) History(requestID string) ([]dto.RequestState, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var states []dto.RequestState
	for msg := range j.wal.Iterator() {
		if msg.Key != requestID {
			continue
		}
		var state dto.RequestState
		if err := msgpack.Unmarshal(msg.Value, &state); err != nil {
			return nil, errors.Wrapf(err, "decode journal entry %d", msg.Idx)
		}
		states = append(states, state)
	}
	return states, nil
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.wal.Close()
}
