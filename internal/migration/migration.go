package migration

// Create contains the DDL for a fresh database. Dates are stored as text:
// "yyyy-mm-dd" for period boundaries, "yyyy-mm-dd hh:mm:ss" for scrobbles.
const Create = `
CREATE TABLE Artist (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);

CREATE TABLE Album (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  artist_id INTEGER NOT NULL,
  name TEXT NOT NULL,
  FOREIGN KEY (artist_id) REFERENCES Artist(id),
  UNIQUE (artist_id, name)
);

CREATE TABLE Song (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  artist_id INTEGER NOT NULL,
  album_id INTEGER,
  name TEXT NOT NULL,
  FOREIGN KEY (artist_id) REFERENCES Artist(id),
  FOREIGN KEY (album_id) REFERENCES Album(id)
);

CREATE TABLE Scrobble (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  song_id INTEGER NOT NULL,
  scrobble_date TEXT NOT NULL,
  FOREIGN KEY (song_id) REFERENCES Song(id)
);

CREATE INDEX idx_scrobble_date ON Scrobble(scrobble_date);
CREATE INDEX idx_scrobble_song ON Scrobble(song_id);

CREATE TABLE Chart (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  chart_type TEXT NOT NULL,
  period_type TEXT NOT NULL,
  period_key TEXT NOT NULL,
  period_start_date TEXT NOT NULL,
  period_end_date TEXT NOT NULL,
  is_finalized INTEGER NOT NULL DEFAULT 0,
  generated_date TEXT,
  UNIQUE (chart_type, period_type, period_key)
);

CREATE TABLE ChartEntry (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  chart_id INTEGER NOT NULL,
  position INTEGER NOT NULL,
  song_id INTEGER,
  album_id INTEGER,
  play_count INTEGER NOT NULL DEFAULT 0,
  FOREIGN KEY (chart_id) REFERENCES Chart(id),
  UNIQUE (chart_id, position)
);

CREATE INDEX idx_chartentry_chart ON ChartEntry(chart_id);
CREATE INDEX idx_chartentry_song ON ChartEntry(song_id);
CREATE INDEX idx_chartentry_album ON ChartEntry(album_id);
`
