package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"postsync-curator/internal/digest"

	"github.com/spf13/cobra"
)

// previewCmd prints a generated digest file. Given a directory it picks the
// most recent .md file in it, which matches how DigestBuilder names output
// by period key.
var previewCmd = &cobra.Command{
	Use:   "preview <file-or-dir>",
	Short: "Print a generated digest's frontmatter and body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			path, err = latestDigest(path)
			if err != nil {
				return err
			}
		}

		doc, err := digest.ParseFile(path)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "file: %s\n", path)
		if t := doc.Title(); t != "" {
			fmt.Fprintf(w, "title: %s\n", t)
		}
		if s := doc.Summary(); s != "" {
			fmt.Fprintf(w, "summary: %s\n", s)
		}
		fmt.Fprintln(w, strings.Repeat("-", 60))
		fmt.Fprint(w, doc.Body)
		return nil
	},
}

// latestDigest returns the lexicographically last .md file in dir. Digest
// filenames embed the period key, so lexicographic order is date order.
func latestDigest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no digest files in %s", dir)
	}
	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1]), nil
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
