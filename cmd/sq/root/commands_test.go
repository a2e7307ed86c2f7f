package root

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestParseTaskFlag(t *testing.T) {
	got, err := parseTaskFlag("Deadlocks:200")
	require.NoError(t, err)
	require.Equal(t, "Deadlocks", got.Title)
	require.NotNil(t, got.XP)
	require.Equal(t, 200, *got.XP)

	got, err = parseTaskFlag("Unit 3: Tools & Methods")
	require.NoError(t, err)
	require.Equal(t, "Unit 3: Tools & Methods", got.Title)
	require.Nil(t, got.XP)

	_, err = parseTaskFlag("Paging:0")
	require.Error(t, err)
	_, err = parseTaskFlag("  ")
	require.Error(t, err)
}

func runCmd(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{}, args...))
	require.NoError(t, cmd.Execute())
	return out.String()
}

func useLocalStore(t *testing.T, user string) {
	t.Helper()
	t.Setenv("STUDYQUEST_STORE_DRIVER", "sqlite")
	t.Setenv("STUDYQUEST_STORE_SQLITE_PATH", filepath.Join(t.TempDir(), "quests.db"))
	t.Setenv("STUDYQUEST_LOG_LEVEL", "error")
	configPath = ""
	userFlag = user
	t.Cleanup(func() { userFlag = "" })
}

func TestCommandsAgainstLocalStore(t *testing.T) {
	useLocalStore(t, "alice")

	out := runCmd(t, newListCmd())
	require.Contains(t, out, "Cyber Security")
	require.Contains(t, out, "Theory of Automata")

	out = runCmd(t, newToggleCmd(), "2", "1")
	require.Contains(t, out, "Process Management")
	require.Contains(t, out, "+200 XP")

	out = runCmd(t, newAddCmd(), "Algebra", "--task", "Ch1:120", "--task", "Ch2")
	require.Contains(t, out, "Algebra")
	require.Contains(t, out, "(120 XP)")
	require.Contains(t, out, "(100 XP)")

	out = runCmd(t, newStatusCmd())
	require.Contains(t, out, "350")
	require.Contains(t, out, "Algebra")
	require.Contains(t, out, "Operating Systems")
}

func TestToggleUnknownQuestFails(t *testing.T) {
	useLocalStore(t, "bob")

	cmd := newToggleCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"nope", "1"})
	require.ErrorContains(t, cmd.Execute(), `no quest "nope"`)
}

func TestLoadRequiresUser(t *testing.T) {
	useLocalStore(t, "")
	t.Setenv("STUDYQUEST_USER", "")

	cmd := newListCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	require.ErrorIs(t, cmd.Execute(), errNoUser)
}
