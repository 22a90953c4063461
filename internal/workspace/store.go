package workspace

import (
	"context"
	"errors"
	"sync"

	"github.com/bobmcallan/vire-backtest/internal/common"
)

// Store owns a State and applies intents one at a time, in arrival order,
// on a single goroutine. Remote calls happen outside the store: callers
// dispatch a Begin intent, talk to the engine, then dispatch the End intent.
type Store struct {
	state   *State
	logger  *common.Logger
	reqs    chan request
	quit    chan struct{}
	done    chan struct{}
	version uint64
	once    sync.Once
}

type request struct {
	intent Intent
	reply  chan result
}

type result struct {
	snap Snapshot
	err  error
}

// NewStore starts the mutation loop over state.
func NewStore(state *State, logger *common.Logger) *Store {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	s := &Store{
		state:  state,
		logger: logger,
		reqs:   make(chan request),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Store) run() {
	defer close(s.done)
	for {
		select {
		case <-s.quit:
			return
		case r := <-s.reqs:
			r.reply <- s.apply(r.intent)
		}
	}
}

func (s *Store) apply(in Intent) result {
	err := in.apply(s.state)
	if _, ok := in.(query); !ok {
		s.version++
	}
	if err != nil {
		s.logger.Warn().Str("intent", in.Name()).Err(err).Msg("Intent refused")
	} else {
		s.logger.Debug().Str("intent", in.Name()).Int64("version", int64(s.version)).Msg("Intent applied")
	}
	return result{snap: s.state.snapshot(s.version), err: err}
}

// Dispatch applies in and returns the resulting snapshot. A refused intent
// leaves the state unchanged apart from the recorded error message, and
// its error is returned alongside the snapshot.
func (s *Store) Dispatch(ctx context.Context, in Intent) (Snapshot, error) {
	if in == nil {
		return Snapshot{}, errors.New("nil intent")
	}
	reply := make(chan result, 1)
	select {
	case s.reqs <- request{intent: in, reply: reply}:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-s.quit:
		return Snapshot{}, ErrStoreClosed
	}
	r := <-reply
	return r.snap, r.err
}

// Snapshot returns the current state without changing it.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	return s.Dispatch(ctx, Refresh{})
}

// Close stops the mutation loop. Later dispatches return ErrStoreClosed.
func (s *Store) Close() {
	s.once.Do(func() { close(s.quit) })
	<-s.done
}
