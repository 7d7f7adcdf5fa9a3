package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"postsync-curator/internal/history"
	"postsync-curator/internal/model"
	"postsync-curator/internal/redisclient"
	"postsync-curator/internal/relevance"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	rankUseRedis bool
	rankJSON     bool
)

// rankCmd runs a single ranking pass over a candidates file. Useful for
// tuning weights without touching the live pool.
var rankCmd = &cobra.Command{
	Use:   "rank <candidates-file>",
	Short: "Score and rank a batch of candidates from a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		batch, err := readCandidates(args[0])
		if err != nil {
			return err
		}

		var hist history.Store
		if rankUseRedis {
			rdb := redisclient.New(cfg.Redis)
			defer rdb.Close()
			hist = history.NewRedisStore(rdb, 2*cfg.Scoring.DedupWindow())
		} else {
			hist = history.NewMemoryStore()
		}
		ranker := relevance.NewRanker(relevance.NewScorer(cfg.Scoring), hist)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		out, err := ranker.Rank(ctx, batch)
		if err != nil {
			return err
		}
		for _, d := range out.Invalid {
			slog.Warn("rank: dropped invalid candidate", "id", d.ID, "reason", d.Reason, "error", d.Err)
		}
		for _, d := range out.StoreFailures {
			slog.Warn("rank: candidate excluded, history store unavailable", "id", d.ID, "error", d.Err)
		}

		if rankJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out.Ranked)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%d candidates in, %d ranked (%d duplicates, %d below threshold, %d invalid, %d store failures)\n\n",
			len(batch), len(out.Ranked), out.Duplicates, out.BelowThreshold, len(out.Invalid), len(out.StoreFailures))
		for i, rc := range out.Ranked {
			fmt.Fprintf(w, "%2d. [%5.1f] %s\n", i+1, rc.Score, rc.Candidate.Title)
			fmt.Fprintf(w, "    %s\n", rc.Candidate.SourceURL)
			fmt.Fprintf(w, "    upvotes %.2f · comments %.2f · recency %.2f · keywords %.2f\n",
				rc.Breakdown.Upvotes, rc.Breakdown.Comments, rc.Breakdown.Recency, rc.Breakdown.Keywords)
		}
		return nil
	},
}

// readCandidates loads a candidate batch from a YAML or JSON file, chosen by
// extension.
func readCandidates(path string) ([]model.ContentCandidate, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var batch []model.ContentCandidate
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(b, &batch); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default: // yaml
		if err := yaml.Unmarshal(b, &batch); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return batch, nil
}

func init() {
	rankCmd.Flags().BoolVar(&rankUseRedis, "redis", false, "deduplicate against the Redis history store instead of an empty in-memory one")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "emit ranked candidates as JSON")
	rootCmd.AddCommand(rankCmd)
}
