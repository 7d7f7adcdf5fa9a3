package cmd

import (
	"context"
	"fmt"
	"time"

	"postsync-curator/internal/history"
	"postsync-curator/internal/model"
	"postsync-curator/internal/redisclient"
	"postsync-curator/internal/relevance"

	"github.com/spf13/cobra"
)

// seenCmd computes the dedup fingerprint for a URL (and optional title) and
// reports whether the history store has it inside the configured window.
// Handy for answering "why was this link skipped" without reading logs.
var seenCmd = &cobra.Command{
	Use:   "seen <url> [title]",
	Short: "Check whether a URL is in the dedup history",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		c := model.ContentCandidate{SourceURL: args[0]}
		if len(args) == 2 {
			c.Title = args[1]
		}
		fp, err := relevance.NewFingerprint(c)
		if err != nil {
			return err
		}

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		hist := history.NewRedisStore(rdb, 2*cfg.Scoring.DedupWindow())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		seen, err := hist.Exists(ctx, string(fp), cfg.Scoring.DedupWindow())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "fingerprint: %s\n", fp)
		if seen {
			fmt.Fprintf(w, "seen within the last %d days\n", cfg.Scoring.DedupWindowDays)
		} else {
			fmt.Fprintln(w, "not seen")
		}
		return nil
	},
}

func init() {
	redisCmd.AddCommand(seenCmd)
}
