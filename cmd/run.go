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
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/isc-eagr/music-stats-sub000/internal/chart"
	"github.com/isc-eagr/music-stats-sub000/internal/store"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [song|album] [id] [week]",
	Short: "Prints an item's week-by-week chart run",
	Long: `Shows every week from the item's first chart appearance through the
given week, including the weeks it fell off, plus time-at-top rollups. The
week defaults to the most recent completed week.`,
	Args: cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		if err := showRun(args); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func showRun(args []string) error {
	chartType, err := parseChartType(args[0])
	if err != nil {
		return err
	}
	itemID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s id %q", chartType, args[1])
	}
	week, err := parseWeekArg(args[2:])
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	stats := chart.NewStats(s)
	run, err := stats.Run(chartType, itemID, week)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s %d has not charted by %s", chartType, itemID, week)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s by %s\n", run.Title, run.Artist)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Week", "Dates", "Pos"})
	for _, w := range run.Weeks {
		pos := "-"
		if w.OnChart {
			pos = strconv.Itoa(w.Position)
		}
		if w.Current {
			pos += " *"
		}
		if err := table.Append([]string{w.PeriodKey, w.DateRange, pos}); err != nil {
			return fmt.Errorf("rendering table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("Peak %d, %d weeks on chart; weeks in top 1/5/10/20: %d/%d/%d/%d\n",
		run.PeakPosition, run.TotalWeeksOnChart,
		run.WeeksAtTop1, run.WeeksAtTop5, run.WeeksAtTop10, run.WeeksAtTop20)
	return nil
}
