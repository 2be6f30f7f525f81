package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfig(t *testing.T) {
	dir := t.TempDir()
	body := `bot:
  id: 7777
database:
  path: ` + filepath.Join(dir, "archive.db") + `
debug:
  listen: 127.0.0.1:9321
rooms:
  - id: 9001
    known_members:
      "42": Alice
    live:
      room_id: "92613"
      online_message: 开播啦
      offline_message: 下播了
      poll_interval: 90s
  - id: 9002
`
	cfgPath := filepath.Join(dir, "chatrelic.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))

	buf := &bytes.Buffer{}
	root := NewRootCommand()
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"check-config", "--config", cfgPath})

	require.NoError(t, root.Execute())

	out := buf.String()
	assert.Contains(t, out, "Configuration OK")
	assert.Contains(t, out, "bot id:       7777")
	assert.Contains(t, out, "debug listen: 127.0.0.1:9321")
	assert.Contains(t, out, "room 9001: 1 known members, watches live room 92613 every 1m30s")
	assert.Contains(t, out, "room 9002: 0 known members")
}

func TestCheckConfig_Invalid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("bot:\n  id: -5\n"), 0o644))

	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"check-config", "--config", cfgPath})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration invalid")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCheckConfig_MissingFile(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"check-config", "--config", filepath.Join(t.TempDir(), "absent.yaml")})

	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
