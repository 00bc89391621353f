package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpert/querygate/classifier"
	"github.com/maxpert/querygate/encoding"
	"github.com/maxpert/querygate/grammar/vitess"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "single", text: "SELECT 1", want: []string{"SELECT 1"}},
		{name: "terminated", text: "SELECT 1;\nSELECT 2;\n", want: []string{"SELECT 1", "SELECT 2"}},
		{name: "quoted semicolon", text: "SELECT ';' FROM t; DELETE FROM t", want: []string{"SELECT ';' FROM t", "DELETE FROM t"}},
		{name: "empty statements", text: ";;SELECT 1;;", want: []string{"SELECT 1"}},
		{name: "comment only", text: "-- nothing here\n", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitStatements(tt.text))
		})
	}
}

func TestGeneralLogQuery(t *testing.T) {
	query, args, err := generalLogQuery(50)
	require.NoError(t, err)
	assert.Contains(t, query, "`mysql`.`general_log`")
	assert.Contains(t, query, "`command_type` IN (?, ?, ?)")
	assert.Contains(t, query, "ORDER BY `event_time` DESC")
	require.Len(t, args, 4)
	assert.Equal(t, generalLogCommands, args[:3])
}

func TestCompareSameBackend(t *testing.T) {
	stmts := []string{
		"SELECT a FROM t WHERE b = 1",
		"INSERT INTO t (a) VALUES (1)",
		"SHOW DATABASES",
		"not sql at all",
	}

	left, err := newWorkerGroup(vitess.Name, classifier.ModeDefault, 2)
	require.NoError(t, err)
	defer left.Close()
	right, err := newWorkerGroup(vitess.Name, classifier.ModeDefault, 1)
	require.NoError(t, err)
	defer right.Close()

	diffs, err := compareBackends(left, right, stmts)
	require.NoError(t, err)
	assert.Empty(t, diffs)
}

func TestClassifyAllKeepsOrder(t *testing.T) {
	g, err := newWorkerGroup(vitess.Name, classifier.ModeDefault, 3)
	require.NoError(t, err)
	defer g.Close()

	reports, err := classifyAll(g, []string{"SELECT 1", "DELETE FROM t", "COMMIT"})
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "SELECT", reports[0].Operation)
	assert.Equal(t, "DELETE", reports[1].Operation)
	assert.Contains(t, reports[2].TypeMask, "COMMIT")
}

func TestDiffReports(t *testing.T) {
	stmts := []string{"SELECT 1", "SELECT 2"}
	left := []classifier.Report{{Status: "PARSED", TypeMask: "READ"}, {Status: "PARSED"}}
	right := []classifier.Report{{Status: "PARSED", TypeMask: "READ"}, {Status: "TOKENIZED"}}

	diffs := diffReports(stmts, left, right)
	require.Len(t, diffs, 1)
	assert.Equal(t, 1, diffs[0].Index)
	assert.Contains(t, diffs[0].Diff, "TOKENIZED")

	var out bytes.Buffer
	err := report(&out, "vitess", "sqlite", len(stmts), diffs)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "2 statements, 1 differ")
}

func TestBaselineRoundTrip(t *testing.T) {
	stmts := []string{"SELECT a FROM t", "KILL QUERY 5"}
	reports := []classifier.Report{
		{Status: "PARSED", TypeMask: "READ", Operation: "SELECT", Tables: []string{"t"}},
		{Status: "PARSED", TypeMask: "WRITE", Operation: "KILL", Kill: &classifier.KillReport{Target: "5", Type: "QUERY"}},
	}
	header := baselineHeader{Backend: vitess.Name, SQLMode: "default", Count: len(stmts)}

	var buf bytes.Buffer
	require.NoError(t, writeBaseline(&buf, header, stmts, reports))

	gotHeader, records, err := readBaseline(&buf)
	require.NoError(t, err)
	assert.Equal(t, header, gotHeader)
	require.Len(t, records, 2)
	assert.Equal(t, stmts[1], records[1].SQL)
	assert.Equal(t, reports[0], records[0].Report)
	assert.Equal(t, reports[1], records[1].Report)
}

func TestReadBaselineRejectsForeignData(t *testing.T) {
	_, _, err := readBaseline(bytes.NewReader([]byte("not a baseline")))
	assert.ErrorIs(t, err, encoding.ErrBadSnapshot)
}
