package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/maxpert/querygate/classifier"
	"github.com/maxpert/querygate/encoding"
)

// baselineHeader is the first record of a baseline.
type baselineHeader struct {
	Backend string `msgpack:"backend"`
	SQLMode string `msgpack:"sql_mode"`
	Count   int    `msgpack:"count"`
}

type baselineRecord struct {
	SQL    string            `msgpack:"sql"`
	Report classifier.Report `msgpack:"report"`
}

type mismatch struct {
	Index int
	SQL   string
	Diff  string
}

func sqlMode(cmd *cobra.Command) (classifier.SQLMode, error) {
	name, _ := cmd.Flags().GetString("mode")
	mode, ok := classifier.ParseSQLMode(name)
	if !ok {
		return mode, fmt.Errorf("invalid sql mode: %s", name)
	}
	return mode, nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	mode, err := sqlMode(cmd)
	if err != nil {
		return err
	}
	left, _ := cmd.Flags().GetString("left")
	right, _ := cmd.Flags().GetString("right")
	workers, _ := cmd.Flags().GetInt("workers")

	stmts, err := loadCorpus(cmd)
	if err != nil {
		return err
	}

	lg, err := newWorkerGroup(left, mode, workers)
	if err != nil {
		return err
	}
	defer lg.Close()
	rg, err := newWorkerGroup(right, mode, workers)
	if err != nil {
		return err
	}
	defer rg.Close()

	diffs, err := compareBackends(lg, rg, stmts)
	if err != nil {
		return err
	}
	return report(cmd.OutOrStdout(), left, right, len(stmts), diffs)
}

// compareBackends classifies stmts with both groups concurrently.
func compareBackends(left, right *workerGroup, stmts []string) ([]mismatch, error) {
	type outcome struct {
		reports []classifier.Report
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := classifyAll(right, stmts)
		done <- outcome{r, err}
	}()

	lr, err := classifyAll(left, stmts)
	ro := <-done
	if err != nil {
		return nil, err
	}
	if ro.err != nil {
		return nil, ro.err
	}
	return diffReports(stmts, lr, ro.reports), nil
}

func diffReports(stmts []string, left, right []classifier.Report) []mismatch {
	var out []mismatch
	for i := range stmts {
		if d := cmp.Diff(left[i], right[i]); d != "" {
			out = append(out, mismatch{Index: i, SQL: stmts[i], Diff: d})
		}
	}
	return out
}

func report(w io.Writer, left, right string, total int, diffs []mismatch) error {
	for _, m := range diffs {
		fmt.Fprintf(w, "--- statement %d: %s\n(-%s +%s)\n%s\n", m.Index+1, m.SQL, left, right, m.Diff)
	}
	fmt.Fprintf(w, "%d statements, %d differ\n", total, len(diffs))
	if len(diffs) > 0 {
		return fmt.Errorf("%d of %d statements differ", len(diffs), total)
	}
	return nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	mode, err := sqlMode(cmd)
	if err != nil {
		return err
	}
	backend, _ := cmd.Flags().GetString("backend")
	workers, _ := cmd.Flags().GetInt("workers")
	out, _ := cmd.Flags().GetString("out")

	stmts, err := loadCorpus(cmd)
	if err != nil {
		return err
	}
	g, err := newWorkerGroup(backend, mode, workers)
	if err != nil {
		return err
	}
	defer g.Close()

	reports, err := classifyAll(g, stmts)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create baseline: %w", err)
	}
	defer f.Close()

	header := baselineHeader{Backend: backend, SQLMode: mode.String(), Count: len(stmts)}
	if err := writeBaseline(f, header, stmts, reports); err != nil {
		return err
	}
	log.Info().Str("path", out).Int("statements", len(stmts)).Msg("Baseline recorded")
	return f.Sync()
}

func writeBaseline(w io.Writer, header baselineHeader, stmts []string, reports []classifier.Report) error {
	sw, err := encoding.NewSnapshotWriter(w, zstd.SpeedDefault)
	if err != nil {
		return err
	}
	if err := sw.Write(header); err != nil {
		sw.Close()
		return fmt.Errorf("failed to write baseline header: %w", err)
	}
	for i, s := range stmts {
		if err := sw.Write(baselineRecord{SQL: s, Report: reports[i]}); err != nil {
			sw.Close()
			return fmt.Errorf("failed to write baseline record %d: %w", i, err)
		}
	}
	return sw.Close()
}

func readBaseline(r io.Reader) (baselineHeader, []baselineRecord, error) {
	var header baselineHeader
	sr, err := encoding.NewSnapshotReader(r)
	if err != nil {
		return header, nil, err
	}
	defer sr.Close()

	if err := sr.Read(&header); err != nil {
		return header, nil, fmt.Errorf("failed to read baseline header: %w", err)
	}
	records := make([]baselineRecord, 0, header.Count)
	for {
		var rec baselineRecord
		err := sr.Read(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return header, nil, err
		}
		records = append(records, rec)
	}
	if len(records) != header.Count {
		return header, nil, fmt.Errorf("baseline holds %d records, header says %d", len(records), header.Count)
	}
	return header, records, nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("baseline")
	backend, _ := cmd.Flags().GetString("backend")
	workers, _ := cmd.Flags().GetInt("workers")

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open baseline: %w", err)
	}
	defer f.Close()

	header, records, err := readBaseline(f)
	if err != nil {
		return err
	}
	if backend == "" {
		backend = header.Backend
	}
	mode, _ := classifier.ParseSQLMode(header.SQLMode)

	g, err := newWorkerGroup(backend, mode, workers)
	if err != nil {
		return err
	}
	defer g.Close()

	stmts := make([]string, len(records))
	baseline := make([]classifier.Report, len(records))
	for i, rec := range records {
		stmts[i] = rec.SQL
		baseline[i] = rec.Report
	}

	current, err := classifyAll(g, stmts)
	if err != nil {
		return err
	}
	return report(cmd.OutOrStdout(), "baseline", backend, len(stmts), diffReports(stmts, baseline, current))
}
