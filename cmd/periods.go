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
	"time"

	"github.com/isc-eagr/music-stats-sub000/internal/period"
	"github.com/isc-eagr/music-stats-sub000/internal/store"
)

func parseChartType(arg string) (store.ChartType, error) {
	switch arg {
	case "song", "songs":
		return store.SongChart, nil
	case "album", "albums":
		return store.AlbumChart, nil
	}
	return "", fmt.Errorf("unknown chart type %q, use 'song' or 'album'", arg)
}

// parseWeekArg resolves an optional week argument. With no argument it picks
// the most recent completed week, which is always the week before the one
// containing today.
func parseWeekArg(args []string) (string, error) {
	if len(args) == 0 {
		return period.CurrentWeekKey(time.Now().AddDate(0, 0, -7)), nil
	}

	kind, err := period.KindOfKey(args[0])
	if err != nil {
		return "", err
	}
	if kind != period.Weekly {
		return "", fmt.Errorf("%q is not a weekly period key like '2024-W48'", args[0])
	}
	return args[0], nil
}

// parseCuratedKey accepts a seasonal or yearly period key.
func parseCuratedKey(arg string) (period.Kind, error) {
	kind, err := period.KindOfKey(arg)
	if err != nil {
		return "", err
	}
	if kind == period.Weekly {
		return "", fmt.Errorf("weekly charts are generated, not curated; use a key like '2024-Fall' or '2024'")
	}
	return kind, nil
}
