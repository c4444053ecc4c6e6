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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/isc-eagr/music-stats-sub000/internal/chart"
	"github.com/isc-eagr/music-stats-sub000/internal/period"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [week]",
	Short: "Generates the weekly song and album charts",
	Long: `Computes both charts from the week's scrobbles and stores them. Defaults
to the most recent completed week. Weeks look like '2024-W48'. Generating an
existing week is a no-op.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := generateWeek(args, viper.GetString("type")); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	var chartType string
	generateCmd.Flags().StringVarP(&chartType, "type", "t", "", "Generate only one chart, 'song' or 'album'")
	viper.BindPFlag("type", generateCmd.Flags().Lookup("type"))
}

func generateWeek(args []string, onlyType string) error {
	week, err := parseWeekArg(args)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	gen := chart.NewGenerator(s, newLogger())
	if onlyType != "" {
		t, err := parseChartType(onlyType)
		if err != nil {
			return err
		}
		if err := gen.GenerateOne(t, week); err != nil {
			return err
		}
	} else if err := gen.GenerateBoth(week); err != nil {
		return err
	}

	fmt.Printf("Generated charts for %s\n", period.FormatKey(period.Weekly, week))
	return nil
}
