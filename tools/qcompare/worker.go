package main

import (
	"fmt"
	"sync"

	"github.com/jizhuozhi/go-future"
	"github.com/rs/zerolog/log"

	"github.com/maxpert/querygate/classifier"
)

type job struct {
	sql     string
	promise *future.Promise[classifier.Report]
}

// workerGroup classifies statements with one backend. Each worker owns a
// session; statements are dealt to workers round-robin.
type workerGroup struct {
	backend string
	queues  []chan job
	next    int
	wg      sync.WaitGroup
}

func newWorkerGroup(backend string, mode classifier.SQLMode, workers int) (*workerGroup, error) {
	if workers < 1 {
		workers = 1
	}
	g := &workerGroup{backend: backend}
	for i := 0; i < workers; i++ {
		s, err := newCompareSession(backend, mode)
		if err != nil {
			g.Close()
			return nil, err
		}
		q := make(chan job, 64)
		g.queues = append(g.queues, q)
		g.wg.Add(1)
		go g.work(s, q)
	}
	return g, nil
}

func newCompareSession(backend string, mode classifier.SQLMode) (*classifier.Session, error) {
	driver, err := classifier.NewBackend(backend)
	if err != nil {
		return nil, err
	}
	s, err := classifier.NewSession(classifier.SessionConfig{
		Driver:    driver,
		SQLMode:   mode,
		CacheSize: 1024,
		Stats:     classifier.NewStats(),
		Logger:    log.With().Str("backend", backend).Logger(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to initialize %s session: %w", backend, err)
	}
	return s, nil
}

func (g *workerGroup) work(s *classifier.Session, q chan job) {
	defer g.wg.Done()
	defer s.Close()

	for j := range q {
		stmt := classifier.NewStatement(j.sql)
		if _, err := s.Classify(stmt, classifier.CollectAll); err != nil {
			log.Debug().Err(err).Str("sql", j.sql).Msg("Classification aborted")
		}
		j.promise.Set(classifier.Describe(stmt.Result()), nil)
	}
}

// Submit queues sql and returns the future report.
func (g *workerGroup) Submit(sql string) *future.Future[classifier.Report] {
	p := future.NewPromise[classifier.Report]()
	g.queues[g.next] <- job{sql: sql, promise: p}
	g.next = (g.next + 1) % len(g.queues)
	return p.Future()
}

// Close stops the workers after their queues drain.
func (g *workerGroup) Close() {
	for _, q := range g.queues {
		close(q)
	}
	g.wg.Wait()
}

// classifyAll classifies every statement and returns the reports in order.
func classifyAll(g *workerGroup, stmts []string) ([]classifier.Report, error) {
	futures := make([]*future.Future[classifier.Report], len(stmts))
	for i, s := range stmts {
		futures[i] = g.Submit(s)
	}

	reports := make([]classifier.Report, len(stmts))
	for i, f := range futures {
		r, err := f.Get()
		if err != nil {
			return nil, fmt.Errorf("%s: statement %d: %w", g.backend, i, err)
		}
		reports[i] = r
	}
	return reports, nil
}
