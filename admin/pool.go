package admin

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/maxpert/querygate/classifier"
)

// SessionFactory builds an initialized classifier session.
type SessionFactory func() (*classifier.Session, error)

// SessionPool lends classifier sessions to request handlers. Sessions are
// not safe for concurrent use, so each request borrows one for its
// duration. Idle sessions beyond the pool's capacity are closed.
type SessionPool struct {
	factory SessionFactory
	mode    classifier.SQLMode
	idle    chan *classifier.Session
}

// NewSessionPool creates a pool holding up to capacity idle sessions and
// warms it with warmup of them. mode is the configured SQL mode every
// returned session is put back into.
func NewSessionPool(factory SessionFactory, mode classifier.SQLMode, capacity, warmup int) (*SessionPool, error) {
	if capacity < 1 {
		capacity = 1
	}
	if warmup > capacity {
		warmup = capacity
	}

	p := &SessionPool{
		factory: factory,
		mode:    mode,
		idle:    make(chan *classifier.Session, capacity),
	}
	for i := 0; i < warmup; i++ {
		s, err := factory()
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to warm session pool: %w", err)
		}
		p.idle <- s
	}

	log.Debug().Int("capacity", capacity).Int("warm", warmup).Msg("Session pool ready")
	return p, nil
}

// Get returns an idle session or builds a new one.
func (p *SessionPool) Get() (*classifier.Session, error) {
	select {
	case s := <-p.idle:
		return s, nil
	default:
		return p.factory()
	}
}

// Put returns s to the pool, restoring the configured SQL mode first.
func (p *SessionPool) Put(s *classifier.Session) {
	s.SetSQLMode(p.mode)
	select {
	case p.idle <- s:
	default:
		s.Close()
	}
}

// SQLMode is the mode sessions are lent out in.
func (p *SessionPool) SQLMode() classifier.SQLMode {
	return p.mode
}

// Idle is the number of sessions waiting in the pool.
func (p *SessionPool) Idle() int {
	return len(p.idle)
}

func (p *SessionPool) Close() {
	for {
		select {
		case s := <-p.idle:
			s.Close()
		default:
			return
		}
	}
}
