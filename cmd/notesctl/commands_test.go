package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NOTES_DATABASE_PATH", filepath.Join(t.TempDir(), "notes.db"))
	t.Setenv("NOTES_LOGGING_LEVEL", "error")
	chdir(t, t.TempDir())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	out, err := execute(t, "# Title\n\n<script>alert(1)</script>", "render")
	require.NoError(t, err)
	require.Contains(t, out, "<h1")
	require.Contains(t, out, "Title</h1>")
	require.NotContains(t, out, "<script>")
}

func TestTablesCommand(t *testing.T) {
	out, err := execute(t, "", "tables")
	require.NoError(t, err)
	require.Contains(t, out, "TABLE")
	require.Contains(t, out, "notes")
	require.Contains(t, out, "roles")
}

func TestFixRolesDryRun(t *testing.T) {
	out, err := execute(t, "", "fix-roles", "--dry-run")
	require.NoError(t, err)
	require.Contains(t, out, "would fix 0 role name(s)")
}

func TestCreateAdminUnknownRole(t *testing.T) {
	_, err := execute(t, "", "create-admin", "-u", "alice", "-p", "long-enough-password", "-r", "owner")
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}
