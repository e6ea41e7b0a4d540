package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	Version, Commit, BuildDate = "1.2.3", "abc123", "2026-01-02"
	t.Cleanup(func() { Version, Commit, BuildDate = "dev", "unknown", "unknown" })

	cmd := NewVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "ebs-dash version 1.2.3\n  commit: abc123\n  built:  2026-01-02\n", buf.String())
}
