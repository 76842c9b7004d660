package maincmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/catkin/internal/maincmd"
)

func writeTemp(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	name := filepath.Join(dir, "prog.ct")
	require.NoError(t, os.WriteFile(name, []byte(src), 0o644))
	return name
}

func TestRunPrintsOutput(t *testing.T) {
	name := writeTemp(t, `print(1 + 2)`)

	var out, errOut bytes.Buffer
	c := &maincmd.Cmd{}
	err := c.Run(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{name})

	require.NoError(t, err)
	assert.Equal(t, "3\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestRunMaxStepsGuard(t *testing.T) {
	name := writeTemp(t, `
i = 0
while i < 1000000 do
  i = i + 1
end
`)

	var out, errOut bytes.Buffer
	c := &maincmd.Cmd{MaxSteps: "10"}
	err := c.Run(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{name})

	require.Error(t, err)
	assert.Contains(t, errOut.String(), "RecursionError")
}

func TestRunReportsCheckerError(t *testing.T) {
	name := writeTemp(t, `
class Outer
  class Inner
  end
end
`)

	var out, errOut bytes.Buffer
	c := &maincmd.Cmd{}
	err := c.Run(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{name})

	require.Error(t, err)
	assert.NotEmpty(t, errOut.String())
}
