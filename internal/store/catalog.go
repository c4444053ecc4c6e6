package store

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateArtist ensures an artist exists and returns its id.
func (s *Store) CreateArtist(name string) (int64, error) {
	row := s.db.QueryRow("SELECT id FROM Artist WHERE name = ?", name)
	var id int64
	err := row.Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("checking artist %q: %w", name, err)
	}

	result, err := s.db.Exec("INSERT INTO Artist (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("inserting artist %q: %w", name, err)
	}
	return result.LastInsertId()
}

// CreateAlbum ensures an album exists for the artist and returns its id.
func (s *Store) CreateAlbum(artistID int64, name string) (int64, error) {
	row := s.db.QueryRow("SELECT id FROM Album WHERE artist_id = ? AND name = ?", artistID, name)
	var id int64
	err := row.Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("checking album %q: %w", name, err)
	}

	result, err := s.db.Exec("INSERT INTO Album (artist_id, name) VALUES (?, ?)", artistID, name)
	if err != nil {
		return 0, fmt.Errorf("inserting album %q: %w", name, err)
	}
	return result.LastInsertId()
}

// CreateSong ensures a song exists and returns its id. albumID may be 0 for
// songs not attached to an album; those never contribute to album charts.
func (s *Store) CreateSong(artistID, albumID int64, name string) (int64, error) {
	row := s.db.QueryRow(
		"SELECT id FROM Song WHERE artist_id = ? AND name = ? AND album_id IS ?",
		artistID, name, nullableID(albumID))
	var id int64
	err := row.Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("checking song %q: %w", name, err)
	}

	result, err := s.db.Exec(
		"INSERT INTO Song (artist_id, album_id, name) VALUES (?, ?, ?)",
		artistID, nullableID(albumID), name)
	if err != nil {
		return 0, fmt.Errorf("inserting song %q: %w", name, err)
	}
	return result.LastInsertId()
}

// AddScrobbles inserts a batch of play events for a song transactionally.
func (s *Store) AddScrobbles(songID int64, times []time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range times {
		_, err := tx.Exec(
			"INSERT INTO Scrobble (song_id, scrobble_date) VALUES (?, ?)",
			songID, t.Format(scrobbleTimeFormat))
		if err != nil {
			return fmt.Errorf("inserting scrobble for song %d: %w", songID, err)
		}
	}

	return tx.Commit()
}

// SongAlbumID resolves a song to its parent album. Returns 0 when the song
// has no album.
func (s *Store) SongAlbumID(songID int64) (int64, error) {
	row := s.db.QueryRow("SELECT album_id FROM Song WHERE id = ?", songID)
	var albumID sql.NullInt64
	err := row.Scan(&albumID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolving album for song %d: %w", songID, err)
	}
	return albumID.Int64, nil
}

// SongDisplay resolves a song id to display names for history output.
func (s *Store) SongDisplay(songID int64) (song, artist, album string, err error) {
	row := s.db.QueryRow(`
	SELECT s.name, ar.name, COALESCE(al.name, '')
	FROM Song s
	INNER JOIN Artist ar ON s.artist_id = ar.id
	LEFT JOIN Album al ON s.album_id = al.id
	WHERE s.id = ?`, songID)
	err = row.Scan(&song, &artist, &album)
	if err == sql.ErrNoRows {
		return "", "", "", ErrNotFound
	}
	if err != nil {
		return "", "", "", fmt.Errorf("resolving song %d: %w", songID, err)
	}
	return song, artist, album, nil
}

// AlbumDisplay resolves an album id to display names.
func (s *Store) AlbumDisplay(albumID int64) (album, artist string, err error) {
	row := s.db.QueryRow(`
	SELECT al.name, ar.name
	FROM Album al
	INNER JOIN Artist ar ON al.artist_id = ar.id
	WHERE al.id = ?`, albumID)
	err = row.Scan(&album, &artist)
	if err == sql.ErrNoRows {
		return "", "", ErrNotFound
	}
	if err != nil {
		return "", "", fmt.Errorf("resolving album %d: %w", albumID, err)
	}
	return album, artist, nil
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
