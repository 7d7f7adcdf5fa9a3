package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"postsync-curator/internal/redisclient"
	"postsync-curator/internal/source/hackernews"
	"postsync-curator/internal/source/reddit"
	"postsync-curator/internal/storage"
	"postsync-curator/worker"

	"github.com/spf13/cobra"
)

var discoverStore bool

// discoverCmd polls a source once and prints what it found. With --store the
// candidates also land in the Redis pool under today's key, exactly as the
// serve collectors would put them.
var discoverCmd = &cobra.Command{
	Use:   "discover <hackernews|reddit>",
	Short: "Poll a data source once and print the candidates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		var src worker.Source
		switch args[0] {
		case "hackernews":
			src = &hackernews.Fetcher{
				Client:       hackernews.NewClient(cfg.Sources.HN.BaseAPI),
				Lists:        cfg.Sources.HN.Lists,
				LimitPerList: cfg.Sources.HN.LimitPerList,
			}
		case "reddit":
			if len(cfg.Sources.Reddit.Subreddits) == 0 {
				return fmt.Errorf("no subreddits configured")
			}
			subs := make([]reddit.Subreddit, 0, len(cfg.Sources.Reddit.Subreddits))
			for _, s := range cfg.Sources.Reddit.Subreddits {
				subs = append(subs, reddit.Subreddit{Name: s.Name, MinScore: s.MinScore})
			}
			src = &reddit.Fetcher{
				Client:      reddit.NewClient(cfg.Sources.Reddit.BaseURL, cfg.Sources.Reddit.UserAgent),
				Subreddits:  subs,
				MinScore:    cfg.Sources.Reddit.MinScore,
				MaxAge:      time.Duration(cfg.Sources.Reddit.MaxAgeHours * float64(time.Hour)),
				LimitPerSub: cfg.Sources.Reddit.LimitPerSub,
			}
		default:
			return fmt.Errorf("unknown source %q", args[0])
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		batch, err := src.Fetch(ctx)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s: %d candidates\n", src.Name(), len(batch))
		for _, c := range batch {
			fmt.Fprintf(w, "  %-12s up=%-5d comments=%-4d %s\n", c.ID, c.Upvotes, c.CommentCount, c.Title)
		}

		if !discoverStore {
			return nil
		}
		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		pool := storage.NewPool(rdb)
		day := time.Now().UTC().Format("2006-01-02")
		stored := 0
		for _, c := range batch {
			if err := pool.Add(ctx, src.Name(), day, c); err != nil {
				slog.Warn("discover: failed to store candidate", "id", c.ID, "error", err)
				continue
			}
			stored++
		}
		fmt.Fprintf(w, "stored %d/%d candidates in pool for %s\n", stored, len(batch), day)
		return nil
	},
}

func init() {
	discoverCmd.Flags().BoolVar(&discoverStore, "store", false, "store fetched candidates into the Redis pool")
	rootCmd.AddCommand(discoverCmd)
}
