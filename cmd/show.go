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
	"github.com/isc-eagr/music-stats-sub000/internal/period"
	"github.com/isc-eagr/music-stats-sub000/internal/store"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [song|album] [period]",
	Short: "Prints a chart",
	Long: `Prints a weekly chart with movement and peak statistics, or a seasonal
or yearly chart. The period defaults to the most recent completed week.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := showChart(args); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func showChart(args []string) error {
	chartType, err := parseChartType(args[0])
	if err != nil {
		return err
	}

	kind := period.Weekly
	var key string
	if len(args) > 1 {
		kind, err = period.KindOfKey(args[1])
		if err != nil {
			return err
		}
		key = args[1]
	} else {
		key, err = parseWeekArg(nil)
		if err != nil {
			return err
		}
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if kind == period.Weekly {
		return printWeeklyChart(s, chartType, key)
	}
	return printCuratedChart(s, chartType, kind, key)
}

func printWeeklyChart(s *store.Store, t store.ChartType, key string) error {
	stats := chart.NewStats(s)
	entries, err := stats.ChartWithStats(t, key)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no %s chart exists for %s - run generate first", t, key)
	}
	if err != nil {
		return err
	}

	start, end, err := period.WeekRange(key)
	if err != nil {
		return err
	}
	fmt.Printf("%s chart, %s (%s)\n", t, period.FormatKey(period.Weekly, key), period.FormatRange(start, end))

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Pos", "LW", "Title", "Artist", "Plays", "Peak", "Weeks"})
	for _, e := range entries {
		row := []string{
			strconv.Itoa(e.Position),
			formatLastPosition(e.LastPosition),
			e.Title,
			e.Artist,
			strconv.FormatInt(e.PlayCount, 10),
			strconv.Itoa(e.PeakPosition),
			strconv.Itoa(e.WeeksOnChart),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("rendering table: %w", err)
		}
	}
	return table.Render()
}

func printCuratedChart(s *store.Store, t store.ChartType, kind period.Kind, key string) error {
	c, err := s.GetChart(t, kind, key)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no %s chart exists for %s", t, key)
	}
	if err != nil {
		return err
	}

	entries, err := s.Entries(c.ID)
	if err != nil {
		return err
	}

	state := "draft"
	if c.Finalized {
		state = "final"
	}
	fmt.Printf("%s chart, %s (%s)\n", t, period.FormatKey(kind, key), state)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Pos", "Title", "Artist"})
	for _, e := range entries {
		title, artist, err := displayNames(s, t, e.ItemID())
		if err != nil {
			return err
		}
		if err := table.Append([]string{strconv.Itoa(e.Position), title, artist}); err != nil {
			return fmt.Errorf("rendering table: %w", err)
		}
	}
	return table.Render()
}

func displayNames(s *store.Store, t store.ChartType, itemID int64) (title, artist string, err error) {
	if t == store.AlbumChart {
		return s.AlbumDisplay(itemID)
	}
	title, artist, _, err = s.SongDisplay(itemID)
	return title, artist, err
}

func formatLastPosition(last int) string {
	switch last {
	case 0:
		return "NEW"
	case chart.ReEntry:
		return "RE"
	default:
		return strconv.Itoa(last)
	}
}
