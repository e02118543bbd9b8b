package exec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvisionWritesWorkspaceFiles(t *testing.T) {
	root := t.TempDir()
	runner := NewDockerRunner(root, "latest", 1<<20)
	pipeline, _ := PipelineFor(LangCPP)

	ws, err := runner.Provision(pipeline, "int main() { return 0; }", "some input")
	require.NoError(t, err)
	defer runner.Teardown(ws)

	assert.True(t, strings.HasPrefix(filepath.Base(ws.Dir), "code-run-"))

	source, err := os.ReadFile(filepath.Join(ws.Dir, "code.cpp"))
	require.NoError(t, err)
	assert.Equal(t, "int main() { return 0; }", string(source))

	stdin, err := os.ReadFile(filepath.Join(ws.Dir, StdinFilename))
	require.NoError(t, err)
	assert.Equal(t, "some input", string(stdin))
}

func TestProvisionUniqueWorkspaces(t *testing.T) {
	root := t.TempDir()
	runner := NewDockerRunner(root, "latest", 1<<20)
	pipeline, _ := PipelineFor(LangPython)

	a, err := runner.Provision(pipeline, "pass", "")
	require.NoError(t, err)
	b, err := runner.Provision(pipeline, "pass", "")
	require.NoError(t, err)
	defer runner.Teardown(a)
	defer runner.Teardown(b)

	assert.NotEqual(t, a.Dir, b.Dir)
}

func TestTeardownRemovesWorkspace(t *testing.T) {
	root := t.TempDir()
	runner := NewDockerRunner(root, "latest", 1<<20)
	pipeline, _ := PipelineFor(LangJava)

	ws, err := runner.Provision(pipeline, "class Main {}", "")
	require.NoError(t, err)

	require.NoError(t, runner.Teardown(ws))

	_, statErr := os.Stat(ws.Dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestBoundedBufferTruncates(t *testing.T) {
	buf := newBoundedBuffer(10)

	n, err := buf.Write([]byte("0123456789abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 16, n)

	out := buf.String()
	assert.Contains(t, out, "0123456789")
	assert.Contains(t, out, "[output truncated]")
	assert.NotContains(t, out, "abcdef")
}

func TestBoundedBufferUnderLimit(t *testing.T) {
	buf := newBoundedBuffer(1 << 20)

	_, err := buf.Write([]byte("short output"))
	require.NoError(t, err)
	assert.Equal(t, "short output", buf.String())
}
