package cmd

import (
	"github.com/spf13/cobra"

	"github.com/theirongolddev/clstat/internal/background"
)

var (
	flagRefreshSessionID  string
	flagRefreshTranscript string
)

// refreshCmd is the detached worker the render spawns after printing. It is
// hidden: users never invoke it directly.
var refreshCmd = &cobra.Command{
	Use:    "refresh-models",
	Short:  "Rebuild the per-session model token cache",
	Hidden: true,
	Args:   cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		background.RefreshModelCache(flagRefreshSessionID, flagRefreshTranscript)
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)

	f := refreshCmd.Flags()
	f.StringVar(&flagRefreshSessionID, "session-id", "", "Session identifier")
	f.StringVar(&flagRefreshTranscript, "transcript-path", "", "Transcript JSONL path")
	_ = refreshCmd.MarkFlagRequired("session-id")
	_ = refreshCmd.MarkFlagRequired("transcript-path")
}
