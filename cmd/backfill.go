/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/isc-eagr/music-stats-sub000/internal/chart"
)

// backfillCmd represents the backfill command
var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Generates charts for every past week that is missing them",
	Long: `Finds all completed weeks with scrobbles but no chart and generates
both charts for each, oldest first. Weeks that fail are skipped.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runBackfill(viper.GetBool("dry-run")); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(backfillCmd)

	var dryRun bool
	backfillCmd.Flags().BoolVar(&dryRun, "dry-run", false, "List missing weeks without generating anything")
	viper.BindPFlag("dry-run", backfillCmd.Flags().Lookup("dry-run"))
}

func runBackfill(dryRun bool) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	log := newLogger()
	gen := chart.NewGenerator(s, log)
	coordinator := chart.NewCoordinator(s, gen, log)

	if dryRun {
		missing, err := coordinator.MissingCompletedWeeks()
		if err != nil {
			return err
		}
		if len(missing) == 0 {
			fmt.Println("No weeks are missing charts.")
			return nil
		}
		for _, week := range missing {
			fmt.Println(week)
		}
		fmt.Printf("%d weeks missing charts\n", len(missing))
		return nil
	}

	id, err := coordinator.Start()
	if err != nil {
		return err
	}
	defer coordinator.Cleanup(id)

	for {
		progress, ok := coordinator.Progress(id)
		if !ok {
			return fmt.Errorf("backfill session %s disappeared", id)
		}
		if progress.Complete {
			if progress.Err != nil {
				fmt.Printf("Backfilled %d of %d weeks; some weeks failed, last error: %v\n",
					progress.Completed, progress.Total, progress.Err)
			} else {
				fmt.Printf("Backfilled %d weeks\n", progress.Total)
			}
			return nil
		}
		if progress.CurrentPeriodKey != "" {
			fmt.Printf("\r%d/%d %s", progress.Completed, progress.Total, progress.CurrentPeriodKey)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
