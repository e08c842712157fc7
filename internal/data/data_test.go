package data

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateThenLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "logs.csv")
	require.NoError(t, GenerateSyntheticGameLogs(150, 9, path))

	logs, err := LoadGameLogs(path)
	require.NoError(t, err)
	require.Len(t, logs, 150)
	for _, g := range logs {
		assert.NotEmpty(t, g.PlayerID)
		assert.NotEqual(t, g.Team, g.Opponent)
		assert.GreaterOrEqual(t, g.Assists, 0.0)
		assert.False(t, g.GameDate.IsZero())
	}
}

func TestGenerateIsSeeded(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")
	require.NoError(t, GenerateSyntheticGameLogs(40, 3, a))
	require.NoError(t, GenerateSyntheticGameLogs(40, 3, b))
	ba, err := os.ReadFile(a)
	require.NoError(t, err)
	bb, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, ba, bb)
}

func TestReadGameLogsReportsBadLine(t *testing.T) {
	in := strings.Join(csvHeader, ",") + "\n" +
		"G1,P1,Ann,BOS,MIA,2024-11-01,true,1,5.2,4.8,31.0,0.22,99.1,97.3,110.2,0,6\n" +
		"G2,P1,Ann,BOS,NYK,2024-11-03,maybe,1,5.2,4.8,31.0,0.22,99.1,97.3,110.2,0,6\n"
	_, err := ReadGameLogs(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "home")

	_, err = ReadGameLogs(strings.NewReader(strings.Join(csvHeader, ",") + "\n"))
	assert.Error(t, err)
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteGameLogsReportsFlushError(t *testing.T) {
	// A handful of rows stays inside the csv buffer, so the failure only shows at flush.
	err := writeGameLogs(brokenWriter{}, 3, 1)
	assert.EqualError(t, err, "disk full")
}

func TestGenerateFailsOnUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	assert.Error(t, GenerateSyntheticGameLogs(5, 1, filepath.Join(blocker, "logs.csv")))
}
