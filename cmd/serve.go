package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postsync-curator/internal/ai"
	"postsync-curator/internal/history"
	"postsync-curator/internal/redisclient"
	"postsync-curator/internal/relevance"
	"postsync-curator/internal/source/hackernews"
	"postsync-curator/internal/source/reddit"
	"postsync-curator/internal/storage"
	"postsync-curator/worker"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the discovery collectors and digest builders",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		pool := storage.NewPool(rdb)

		// History retention must outlive the dedup window so Exists can
		// always answer for it.
		hist := history.NewRedisStore(rdb, 2*cfg.Scoring.DedupWindow())
		ranker := relevance.NewRanker(relevance.NewScorer(cfg.Scoring), hist)

		var summarizer ai.Summarizer
		if cfg.OpenAI.APIKey != "" {
			summarizer = ai.NewOpenAI(ai.Config{APIKey: cfg.OpenAI.APIKey, Model: cfg.OpenAI.Model, BaseURL: cfg.OpenAI.BaseURL})
		}

		var ws []worker.Worker

		hnInterval, err := time.ParseDuration(cfg.Sources.HN.FetchInterval)
		if err != nil {
			return err
		}
		hnFetcher := &hackernews.Fetcher{
			Client:       hackernews.NewClient(cfg.Sources.HN.BaseAPI),
			Lists:        cfg.Sources.HN.Lists,
			LimitPerList: cfg.Sources.HN.LimitPerList,
		}
		slog.Info("starting Hacker News collector", "lists", hnFetcher.Lists)
		ws = append(ws, &worker.Collector{Source: hnFetcher, Pool: pool, Interval: hnInterval})

		if len(cfg.Sources.Reddit.Subreddits) > 0 {
			rdInterval, err := time.ParseDuration(cfg.Sources.Reddit.FetchInterval)
			if err != nil {
				return err
			}
			subs := make([]reddit.Subreddit, 0, len(cfg.Sources.Reddit.Subreddits))
			for _, s := range cfg.Sources.Reddit.Subreddits {
				subs = append(subs, reddit.Subreddit{Name: s.Name, MinScore: s.MinScore})
			}
			rdFetcher := &reddit.Fetcher{
				Client:      reddit.NewClient(cfg.Sources.Reddit.BaseURL, cfg.Sources.Reddit.UserAgent),
				Subreddits:  subs,
				MinScore:    cfg.Sources.Reddit.MinScore,
				MaxAge:      time.Duration(cfg.Sources.Reddit.MaxAgeHours * float64(time.Hour)),
				LimitPerSub: cfg.Sources.Reddit.LimitPerSub,
			}
			slog.Info("starting Reddit collector", "subreddits", len(subs))
			ws = append(ws, &worker.Collector{Source: rdFetcher, Pool: pool, Interval: rdInterval})
		}

		evalInterval, err := time.ParseDuration(cfg.Digests.EvalInterval)
		if err != nil {
			return err
		}
		for _, ch := range cfg.Digests.Channels {
			ws = append(ws, &worker.DigestBuilder{
				Pool:       pool,
				Ranker:     ranker,
				History:    hist,
				Channel:    ch.Name,
				Sources:    ch.Sources,
				Frequency:  ch.Frequency,
				TopN:       ch.TopN,
				MinItems:   ch.MinItems,
				OutputDir:  ch.OutputDir,
				Interval:   evalInterval,
				Language:   ch.Language,
				Title:      ch.Title,
				Preface:    ch.Preface,
				Postscript: ch.Postscript,
				Summarizer: summarizer,
			})
		}

		mgr := worker.NewManager(ws...)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			log.Printf("received signal: %s, shutting down", s)
			cancel()
		}()

		return mgr.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
