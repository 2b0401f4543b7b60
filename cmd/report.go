package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvarnah/wingman/internal/utils"
	"github.com/mvarnah/wingman/pkg/catalog"
	"github.com/mvarnah/wingman/pkg/discord"
	"github.com/mvarnah/wingman/pkg/raidar"
	"github.com/mvarnah/wingman/pkg/reconcile"
	"github.com/mvarnah/wingman/pkg/report"
	"github.com/mvarnah/wingman/pkg/state"
	"github.com/mvarnah/wingman/pkg/store"
	"github.com/mvarnah/wingman/pkg/storage"
)

// reportCmd runs the whole pipeline once: list remote encounters since
// the last publish, match them against the local log store, render the
// per-day report and post it to the webhook.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Reconcile recent encounters and post the clear report",
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		sinceOverride, _ := cmd.Flags().GetInt64("since")
		useDB, _ := cmd.Flags().GetBool("db")

		token := viper.GetString("raidar.token")
		storeRoot := viper.GetString("store.root")
		webhook := viper.GetString("discord.webhook_url")
		stateFile := viper.GetString("report.state_file")

		if token == "" {
			return fmt.Errorf("raidar.token is not set. Run 'wingman token' first")
		}
		if storeRoot == "" {
			return fmt.Errorf("store.root is not set in the config")
		}
		if !debug {
			if webhook == "" {
				return fmt.Errorf("discord.webhook_url is not set in the config")
			}
			if stateFile == "" {
				return fmt.Errorf("report.state_file is not set in the config")
			}
		}

		since := state.Read(stateFile)
		if sinceOverride >= 0 {
			since = sinceOverride
		}

		ctx := cmd.Context()
		client := &raidar.Client{APIURL: viper.GetString("raidar.api_url"), Token: token}

		types := catalog.Tracked()
		areasBody, err := client.FetchAreas(ctx)
		if err != nil {
			return err
		}
		catalog.Resolve(types, areasBody)

		assigner := reconcile.NewRemoteAssigner(types)
		tagGlob := viper.GetString("report.tag_filter")
		err = client.ListEncountersSince(ctx, since, tagGlob, func(e raidar.Encounter) bool {
			assigner.Offer(reconcile.RemoteRecord{
				AreaID:    e.AreaID,
				Link:      client.EncounterURL(e.URLID),
				StartedAt: e.StartedAt,
			})
			return !assigner.Done()
		})
		if err != nil {
			return err
		}
		utils.Log.Debugf("Assigned %d remote encounters", len(assigner.Assigned()))

		st := &store.Store{
			Root:       storeRoot,
			Identities: viper.GetStringMapString("accounts"),
		}
		results, err := reconcile.Reconcile(types, assigner.Assigned(), st, since, true)
		if err != nil {
			return err
		}

		payload, empty := report.Render(results, report.Config{
			TitlePrefix:  viper.GetString("report.title_prefix"),
			ThumbnailURL: viper.GetString("report.thumbnail_url"),
			Emojis:       viper.GetStringMapString("emojis"),
		})
		if empty {
			utils.Log.Info("No new encounters to report.")
			return nil
		}

		if err := discord.Publish(payload, discord.Options{
			WebhookURL: webhook,
			Debug:      debug,
			DumpDir:    viper.GetString("report.debug_dir"),
			StatePath:  stateFile,
		}); err != nil {
			return err
		}

		if useDB && !debug {
			dbPath := viper.GetString("history.db_path")
			if dbPath == "" {
				dbPath = "wingman.sqlite"
			}
			db, err := storage.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.RecordReport(ctx, resultDates(results), len(results), payload); err != nil {
				utils.Log.Warnf("Could not record report in history: %v", err)
			}
		}

		if !debug {
			utils.Log.Infof("Published %d encounters.", len(results))
		}
		return nil
	},
}

// resultDates returns the distinct calendar dates covered by the run,
// sorted, comma-joined.
func resultDates(results []reconcile.BossResult) string {
	seen := make(map[string]bool)
	var dates []string
	for _, res := range results {
		d := res.StartTime.Format("2006-01-02")
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)
	return strings.Join(dates, ", ")
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().Bool("debug", false, "Print the payload to stdout instead of posting it")
	reportCmd.Flags().Int64("since", -1, "Override the stored last-upload timestamp (unix seconds)")
	reportCmd.Flags().Bool("db", false, "Record the published report in the history database")
}
