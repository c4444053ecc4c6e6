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

	"github.com/spf13/cobra"

	"github.com/isc-eagr/music-stats-sub000/internal/chart"
	"github.com/isc-eagr/music-stats-sub000/internal/store"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [song|album] [id]",
	Short: "Prints an item's all-time chart summary",
	Long: `Shows when the item debuted, when it first reached its peak, and its
totals across every weekly chart.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := showHistory(args); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func showHistory(args []string) error {
	chartType, err := parseChartType(args[0])
	if err != nil {
		return err
	}
	itemID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s id %q", chartType, args[1])
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	stats := chart.NewStats(s)
	ih, err := stats.ItemChartHistory(chartType, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s %d has never charted", chartType, itemID)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s by %s\n", ih.Title, ih.Artist)
	fmt.Printf("Debuted %s (%s)\n", ih.DebutKey, ih.DebutDate)
	fmt.Printf("First hit peak of %d on %s (%s)\n", ih.PeakPosition, ih.FirstPeakKey, ih.FirstPeakDate)
	fmt.Printf("%d weeks on chart, %d at peak\n", ih.TotalWeeks, ih.WeeksAtPeak)
	return nil
}
