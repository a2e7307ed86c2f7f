package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"studyquest/internal/ui"
)

const Version = "0.1.0"

var (
	configPath string
	userFlag   string
)

var rootCmd = &cobra.Command{
	Use:           "sq",
	Short:         "StudyQuest: study quests with XP, synced to your quest store",
	Long:          "StudyQuest tracks study quests and their tasks, awards XP for completed tasks and keeps the quest log in sync with a local or remote store.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (yaml|toml|json)")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "User id (overrides STUDYQUEST_USER)")

	rootCmd.AddCommand(
		newListCmd(),
		newStatusCmd(),
		newAddCmd(),
		newToggleCmd(),
		newAskCmd(),
		newBoardCmd(),
		newDBCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
