package classifier

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	cuckoo "github.com/linvon/cuckoo-filter"
	"github.com/rs/zerolog"

	"github.com/maxpert/querygate/telemetry"
)

// LogLevel selects which degraded classifications are logged.
type LogLevel int

const (
	LogNothing LogLevel = iota
	// LogNonParsed logs everything below PARSED.
	LogNonParsed
	// LogNonPartiallyParsed logs TOKENIZED and INVALID statements.
	LogNonPartiallyParsed
	// LogNonTokenized logs INVALID statements only.
	LogNonTokenized
)

func ParseLogLevel(s string) (LogLevel, error) {
	switch s {
	case "nothing", "":
		return LogNothing, nil
	case "non_parsed":
		return LogNonParsed, nil
	case "non_partially_parsed":
		return LogNonPartiallyParsed, nil
	case "non_tokenized":
		return LogNonTokenized, nil
	}
	return LogNothing, fmt.Errorf("invalid log level: %s", s)
}

// below is the status a statement must fall under to be logged.
func (l LogLevel) below() Status {
	switch l {
	case LogNonParsed:
		return StatusParsed
	case LogNonPartiallyParsed:
		return StatusPartiallyParsed
	case LogNonTokenized:
		return StatusTokenized
	}
	return StatusInvalid
}

const (
	seenBucketSize      = 4
	seenFingerprintSize = 16
	seenNumBuckets      = 1024
)

// degradedLogger reports statements the grammar could not fully parse.
type degradedLogger struct {
	logger zerolog.Logger
	level  LogLevel
	once   bool
	seen   *cuckoo.Filter
	key    [8]byte
}

func newDegradedLogger(logger zerolog.Logger, level LogLevel, burst uint32, period time.Duration, once bool) *degradedLogger {
	d := &degradedLogger{
		logger: logger.Sample(&zerolog.BurstSampler{Burst: burst, Period: period}),
		level:  level,
		once:   once,
	}
	if once && level != LogNothing {
		d.seen = cuckoo.NewFilter(seenBucketSize, seenFingerprintSize, seenNumBuckets, cuckoo.TableTypePacked)
	}
	return d
}

func (d *degradedLogger) log(stmt *Statement, r *Result) {
	if d.level == LogNothing || r.Status >= d.level.below() {
		return
	}
	telemetry.DegradedStatementsTotal.With(r.Status.String()).Inc()

	if d.seen != nil {
		binary.LittleEndian.PutUint64(d.key[:], xxhash.Sum64String(r.Canonical))
		if d.seen.Contain(d.key[:]) {
			return
		}
		d.seen.Add(d.key[:])
	}

	var msg string
	switch r.Status {
	case StatusTokenized:
		msg = "statement was classified only based on keywords"
	case StatusPartiallyParsed:
		msg = "statement was only partially parsed"
	default:
		msg = "statement was neither parsed nor recognized from keywords"
	}
	d.logger.Warn().
		Str("status", r.Status.String()).
		Str("type_mask", r.TypeMask.String()).
		Str("sql", stmt.SQL()).
		Msg(msg)
}
