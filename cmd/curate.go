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
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/isc-eagr/music-stats-sub000/internal/chart"
)

// curateCmd represents the curate command
var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Manages seasonal and yearly chart drafts",
}

var curateDraftCmd = &cobra.Command{
	Use:   "draft [period]",
	Short: "Creates the song and album draft charts for a season or year",
	Long:  `Periods look like '2024-Fall' or '2024'. Existing drafts are reused.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := curateDraft(args[0]); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

var curateSaveCmd = &cobra.Command{
	Use:   "save [chart-id] [pos:item-id ...]",
	Short: "Replaces a draft chart's entries",
	Long: `Each argument is a position:item-id pair, e.g. '1:42 2:17'. The full
entry set is replaced on every save.`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := curateSave(args); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

var curateFinalizeCmd = &cobra.Command{
	Use:   "finalize [period]",
	Short: "Finalizes a season or year's song and album charts together",
	Long: `Requires the period to be over and both charts to meet their entry
minimums. Finalized charts can no longer be edited.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := curateFinalize(args[0]); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(curateCmd)
	curateCmd.AddCommand(curateDraftCmd)
	curateCmd.AddCommand(curateSaveCmd)
	curateCmd.AddCommand(curateFinalizeCmd)
}

func curateDraft(key string) error {
	kind, err := parseCuratedKey(key)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	curator := chart.NewCurator(s, newLogger())
	song, album, err := curator.EnsureDraft(kind, key)
	if err != nil {
		return err
	}

	fmt.Printf("Song chart %d, album chart %d\n", song.ID, album.ID)
	return nil
}

func curateSave(args []string) error {
	chartID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chart id %q", args[0])
	}

	entries := make([]chart.CuratedEntry, 0, len(args)-1)
	for _, arg := range args[1:] {
		pos, item, ok := strings.Cut(arg, ":")
		if !ok {
			return fmt.Errorf("invalid entry %q, use position:item-id", arg)
		}
		position, err := strconv.Atoi(pos)
		if err != nil {
			return fmt.Errorf("invalid position in %q", arg)
		}
		itemID, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid item id in %q", arg)
		}
		entries = append(entries, chart.CuratedEntry{Position: position, ItemID: itemID})
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	curator := chart.NewCurator(s, newLogger())
	if err := curator.SaveEntries(chartID, entries); err != nil {
		return err
	}

	fmt.Printf("Saved %d entries to chart %d\n", len(entries), chartID)
	return nil
}

func curateFinalize(key string) error {
	kind, err := parseCuratedKey(key)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	curator := chart.NewCurator(s, newLogger())
	song, album, err := curator.EnsureDraft(kind, key)
	if err != nil {
		return err
	}
	if err := curator.Finalize(song.ID, album.ID, kind); err != nil {
		return err
	}

	fmt.Printf("Finalized charts for %s\n", key)
	return nil
}
