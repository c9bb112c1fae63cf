package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SlpAus/fame-list-backend/internal/platform/remote"
	"github.com/SlpAus/fame-list-backend/internal/profile"
)

var (
	profilesCaste string
	profilesJSON  bool
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Print the current list sorted by caste",
	Long: `Fetch the full collection from the profile store and print it
in caste order. Use --caste to show a single caste.`,
	RunE: runProfiles,
}

func init() {
	profilesCmd.Flags().StringVar(&profilesCaste, "caste", "all", "caste filter")
	profilesCmd.Flags().BoolVar(&profilesJSON, "json", false, "print JSON")
}

func runProfiles(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	caste, err := profile.ParseCasteFilter(profilesCaste)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	repo := profile.NewHTTPRepository(cfg.Remote.ProfilesURL, remote.NewClient(cfg.Remote.Timeout))
	all, err := repo.FetchAll(ctx)
	if err != nil {
		return err
	}
	sorted := profile.FilterSort(all, caste)

	if profilesJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sorted)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCASTE\tVIEWS\tLIKES")
	for _, p := range sorted {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\n", p.ID, p.Name, p.Caste, p.Views, p.Likes)
	}
	return w.Flush()
}
