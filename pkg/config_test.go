package litex

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vilterp/litex/pkg/util"
)

func writeFile(t *testing.T, name string, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "litex.yaml", `
port: 9100
data_file: /var/lib/litex.data
engine:
  trace_store: true
  max_check_depth: 16
`)
	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9100", config.Addr())
	require.Equal(t, "/var/lib/litex.data", config.DataFile)
	require.Equal(t, DefaultConfig().HistoryFile, config.HistoryFile)
	require.True(t, config.Engine.TraceStore)
	require.False(t, config.Engine.TraceDef)
	require.Equal(t, 16, config.Engine.MaxCheckDepth)
}

func TestLoadConfigErrors(t *testing.T) {
	testCases := []struct {
		contents string
		error    string
	}{
		{"port: 70000\n", "invalid config %s: port out of range: 70000"},
		{"engine:\n  max_check_depth: -1\n", "invalid config %s: max_check_depth must not be negative; given -1"},
		{"host: localhost\n", ""},
	}

	for idx, testCase := range testCases {
		path := writeFile(t, "litex.yaml", testCase.contents)
		expected := testCase.error
		if expected != "" {
			expected = fmt.Sprintf(expected, path)
		}
		_, err := LoadConfig(path)
		util.AssertError(t, idx, expected, err)
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	_, err = LoadConfig(writeFile(t, "bad.yaml", "port: [1, 2"))
	require.Error(t, err)
}
