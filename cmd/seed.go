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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/isc-eagr/music-stats-sub000/internal/store"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Imports scrobbles from a CSV export",
	Long: `Reads rows of 'artist,album,title,timestamp' where the timestamp is
'yyyy-mm-dd hh:mm:ss'. The album column may be empty for singles.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := seedFromCsv(args[0]); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func seedFromCsv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 4

	imported := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		when, err := time.ParseInLocation("2006-01-02 15:04:05", record[3], time.Local)
		if err != nil {
			return fmt.Errorf("row %d: invalid timestamp %q", imported+1, record[3])
		}

		songID, err := seedSong(s, record[0], record[1], record[2])
		if err != nil {
			return err
		}
		if err := s.AddScrobbles(songID, []time.Time{when}); err != nil {
			return err
		}
		imported++
	}

	fmt.Printf("Imported %d scrobbles from %s\n", imported, path)
	return nil
}

func seedSong(s *store.Store, artist, album, title string) (int64, error) {
	artistID, err := s.CreateArtist(artist)
	if err != nil {
		return 0, err
	}
	var albumID int64
	if album != "" {
		albumID, err = s.CreateAlbum(artistID, album)
		if err != nil {
			return 0, err
		}
	}
	return s.CreateSong(artistID, albumID, title)
}
