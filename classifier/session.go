package classifier

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/maxpert/querygate/canonical"
	"github.com/maxpert/querygate/cfg"
	"github.com/maxpert/querygate/grammar"
	"github.com/maxpert/querygate/telemetry"
)

// warmupSQL is classified once per session so the driver's lazy setup
// happens before the first real statement.
const warmupSQL = "CREATE TABLE __querygate__warmup__ (field int UNIQUE)"

// SessionConfig holds everything a Session needs. Zero values are usable
// except for Driver.
type SessionConfig struct {
	Driver        grammar.Driver
	SQLMode       SQLMode
	ServerVersion uint32
	Options       Options
	MaxDepth      int

	CacheSize    int
	CacheExclude []glob.Glob
	Stats        *Stats

	Logger              zerolog.Logger
	LogLevel            LogLevel
	LogBurst            uint32
	LogPeriod           time.Duration
	LogOncePerStatement bool
}

// ConfigFromSettings builds a SessionConfig from the process configuration,
// creating the configured backend driver.
func ConfigFromSettings(c *cfg.Configuration) (SessionConfig, error) {
	driver, err := NewBackend(c.Classifier.Backend)
	if err != nil {
		return SessionConfig{}, err
	}
	mode, ok := ParseSQLMode(c.Classifier.SQLMode)
	if !ok {
		return SessionConfig{}, fmt.Errorf("invalid sql mode: %s", c.Classifier.SQLMode)
	}
	version, err := cfg.ParseServerVersion(c.Classifier.ServerVersion)
	if err != nil {
		return SessionConfig{}, err
	}
	level, err := ParseLogLevel(c.Classifier.LogUnrecognized)
	if err != nil {
		return SessionConfig{}, err
	}
	exclude, err := CompileExcludes(c.Cache.Exclude)
	if err != nil {
		return SessionConfig{}, err
	}

	return SessionConfig{
		Driver:              driver,
		SQLMode:             mode,
		ServerVersion:       version,
		Options:             ParseOptions(c.Classifier.Options),
		MaxDepth:            c.Classifier.MaxDepth,
		CacheSize:           c.Cache.Size,
		CacheExclude:        exclude,
		Stats:               DefaultStats,
		Logger:              log.With().Str("component", "classifier").Logger(),
		LogLevel:            level,
		LogBurst:            c.Classifier.LogBurst,
		LogPeriod:           time.Duration(c.Classifier.LogPeriodSeconds) * time.Second,
		LogOncePerStatement: c.Classifier.LogOncePerStatement,
	}, nil
}

// Session classifies statements. It is not safe for concurrent use; each
// goroutine classifies with its own Session.
type Session struct {
	driver   grammar.Driver
	mode     SQLMode
	mapper   nameMapper
	version  uint32
	options  Options
	ceiling  Status
	maxDepth int

	cache  *resultCache
	stats  *Stats
	logger *degradedLogger

	// current is the result being filled, set only during Classify.
	current *Result
	closed  bool
}

func NewSession(c SessionConfig) (*Session, error) {
	if c.Driver == nil {
		return nil, ErrNoDriver
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = grammar.MaxDepth
	}
	if c.Stats == nil {
		c.Stats = DefaultStats
	}
	if c.LogPeriod <= 0 {
		c.LogPeriod = time.Second
	}

	cache, err := newResultCache(c.CacheSize, c.CacheExclude, c.Stats)
	if err != nil {
		return nil, err
	}

	s := &Session{
		driver:   c.Driver,
		mode:     c.SQLMode,
		mapper:   mapperFor(c.SQLMode),
		version:  c.ServerVersion,
		options:  c.Options,
		ceiling:  StatusParsed,
		maxDepth: c.MaxDepth,
		cache:    cache,
		stats:    c.Stats,
		logger:   newDegradedLogger(c.Logger, c.LogLevel, c.LogBurst, c.LogPeriod, c.LogOncePerStatement),
	}
	s.stats.sessions.Inc()
	telemetry.ActiveSessions.Inc()
	return s, nil
}

// Init runs one throw-away classification.
func (s *Session) Init() error {
	stmt := NewStatement(warmupSQL)
	_, err := s.run(stmt, CollectEssentials, canonical.Canonicalize(warmupSQL), true)
	return err
}

// Close releases the session's cache. The session must not be used after.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.cache != nil {
		s.cache.purge()
	}
	if c, ok := s.driver.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Str("backend", s.driver.Name()).Msg("Failed to close grammar driver")
		}
	}
	s.stats.sessions.Dec()
	telemetry.ActiveSessions.Dec()
}

// Backend names the grammar driver in use.
func (s *Session) Backend() string {
	return s.driver.Name()
}

// Classify makes sure stmt carries a result covering collect. A statement
// classified before is only driven again when it lacks a category; the
// second pass collects everything.
//
// The returned error reports an aborted pass; the statement is then
// INVALID and still usable.
func (s *Session) Classify(stmt *Statement, collect Collect) (Status, error) {
	if r := stmt.result; r != nil {
		if r.Collected&collect == collect {
			return r.Status, nil
		}
		telemetry.ReparsesTotal.Inc()
		return s.run(stmt, CollectAll, r.Canonical, true)
	}

	canon := canonicalOf(stmt)
	if s.cache != nil {
		if r, ok := s.cache.get(canon, s.mode, s.options, collect); ok {
			stmt.result = r
			return r.Status, nil
		}
	}
	return s.run(stmt, collect, canon, false)
}

// canonicalOf returns the canonical form stmt is cached and reported
// under. Prepared statements carry the prepared suffix.
func canonicalOf(stmt *Statement) string {
	if stmt.Prepared() {
		return canonical.CanonicalizePrepared(stmt.SQL())
	}
	return canonical.Canonicalize(stmt.SQL())
}

func (s *Session) run(stmt *Statement, collect Collect, canon string, reparse bool) (Status, error) {
	r := &Result{
		Requested:   collect,
		Collected:   collect,
		Canonical:   canon,
		Fingerprint: canonical.Fingerprint(canon),
		Mode:        s.mode,
		Options:     s.options,
	}

	s.current = r
	err := s.drive(stmt)
	s.current = nil

	if r.Status > s.ceiling {
		r.Status = s.ceiling
	}
	stmt.result = r

	if err == nil && s.cache != nil {
		s.cache.put(canon, r)
	}
	if !reparse {
		s.logger.log(stmt, r)
	}
	return r.Status, err
}

// drive runs one grammar pass into the current result. Faults inside the
// driver or the visitor leave the result INVALID.
func (s *Session) drive(stmt *Statement) (err error) {
	r := s.current
	p := &pass{
		r:        r,
		collect:  r.Collected,
		mode:     s.mode,
		mapper:   s.mapper,
		version:  s.version,
		options:  s.options,
		maxDepth: s.maxDepth,
	}
	backend := s.driver.Name()
	start := time.Now()

	defer func() {
		if v := recover(); v != nil {
			r.invalidate()
			if _, ok := v.(depthExceeded); ok {
				telemetry.InternalFaultsTotal.With("depth").Inc()
				err = ErrRecursionLimit
			} else {
				telemetry.InternalFaultsTotal.With("panic").Inc()
				err = fmt.Errorf("%w: %v", ErrInternalFault, v)
			}
		}
		telemetry.ClassifyDurationSeconds.With(backend).Observe(time.Since(start).Seconds())
		telemetry.ClassificationsTotal.With(backend, r.Status.String()).Inc()
	}()

	outcome, derr := s.driver.Drive(stmt.SQL(), s.mode.grammar(), p)
	if derr != nil {
		r.invalidate()
		if errors.Is(derr, grammar.ErrTooDeep) {
			telemetry.InternalFaultsTotal.With("depth").Inc()
			return ErrRecursionLimit
		}
		telemetry.InternalFaultsTotal.With("driver").Inc()
		return fmt.Errorf("%w: %v", ErrInternalFault, derr)
	}
	settle(p, outcome)
	return nil
}

// settle derives the final status of a pass from how far the driver got.
func settle(p *pass, outcome grammar.Outcome) {
	r := p.r
	switch {
	case p.invalid:
		r.invalidate()
	case outcome == grammar.Empty:
		r.Status = StatusParsed
		r.TypeMask = TypeRead
	case p.parsed && outcome == grammar.Complete && !p.partial:
		r.Status = StatusParsed
	case p.parsed:
		r.Status = StatusPartiallyParsed
	case r.Status == StatusInvalid:
		r.invalidate()
	}
}

// result classifies stmt for collect and returns its result, never nil.
func (s *Session) result(stmt *Statement, collect Collect) *Result {
	s.Classify(stmt, collect)
	if stmt.result == nil {
		return &Result{}
	}
	return stmt.result
}

func (s *Session) TypeMask(stmt *Statement) TypeMask {
	return s.result(stmt, CollectEssentials).TypeMask
}

func (s *Session) Operation(stmt *Statement) Operation {
	return s.result(stmt, CollectEssentials).Operation
}

func (s *Session) Canonical(stmt *Statement) string {
	return s.result(stmt, CollectEssentials).Canonical
}

func (s *Session) TableNames(stmt *Statement, collect Collect) []TableName {
	return s.result(stmt, collect|CollectTables).TableNames
}

func (s *Session) DatabaseNames(stmt *Statement, collect Collect) []string {
	return s.result(stmt, collect|CollectDatabases).DatabaseNames
}

func (s *Session) FieldInfos(stmt *Statement, collect Collect) []FieldInfo {
	return s.result(stmt, collect|CollectFields).FieldInfos
}

// FunctionInfos returns the functions and the result that owns their field
// indices.
func (s *Session) FunctionInfos(stmt *Statement, collect Collect) ([]FunctionInfo, *Result) {
	r := s.result(stmt, collect|CollectFunctions)
	return r.FunctionInfos, r
}

func (s *Session) CreatedTableName(stmt *Statement) string {
	return s.result(stmt, CollectEssentials).CreatedTableName
}

func (s *Session) PrepareName(stmt *Statement) string {
	return s.result(stmt, CollectEssentials).PrepareName
}

// PreparableStmt returns the statement a PREPARE ... FROM 'text' prepares.
// It is owned by stmt's result.
func (s *Session) PreparableStmt(stmt *Statement) *Statement {
	return s.result(stmt, CollectEssentials).PreparableStmt
}

func (s *Session) KillInfo(stmt *Statement) *KillInfo {
	return s.result(stmt, CollectEssentials).KillInfo
}

func (s *Session) RelatesToPrevious(stmt *Statement) bool {
	return s.result(stmt, CollectEssentials).RelatesToPrevious
}

// SetStatusCeiling caps the status of subsequent classifications.
func (s *Session) SetStatusCeiling(st Status) {
	s.ceiling = st
}

func (s *Session) StatusCeiling() Status {
	return s.ceiling
}

func (s *Session) SetSQLMode(m SQLMode) {
	s.mode = m
	s.mapper = mapperFor(m)
}

func (s *Session) SQLMode() SQLMode {
	return s.mode
}

func (s *Session) SetServerVersion(v uint32) {
	s.version = v
}

func (s *Session) ServerVersion() uint32 {
	return s.version
}

func (s *Session) SetOptions(o Options) {
	s.options = o
}

func (s *Session) Options() Options {
	return s.options
}

// CacheLen returns the number of cached results, 0 when caching is off.
func (s *Session) CacheLen() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.len()
}
