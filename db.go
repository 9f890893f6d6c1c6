package csimage

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3" // register sqlite3 driver
)

// Manifest records the conversions done by Scan so unchanged sources can be
// skipped on later runs.
type Manifest struct {
	db *sql.DB
}

// Record describes one converted source.
type Record struct {
	Source           string
	SHA1             string
	Options          string
	Output           string
	Format           int32
	Compression      int32
	Checksum         int64
	UncompressedSize int64
	FinalSize        int64
}

// NewManifest opens, creating if necessary, the manifest database at file.
func NewManifest(file string) (*Manifest, error) {
	db, err := sql.Open("sqlite3", file+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// Writers are serialised by sqlite anyway
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS conversion (id INTEGER PRIMARY KEY NOT NULL, source TEXT NOT NULL UNIQUE, sha1 TEXT NOT NULL, options TEXT NOT NULL, output TEXT NOT NULL, format INTEGER NOT NULL, compression INTEGER NOT NULL, checksum INTEGER NOT NULL, uncompressed_size INTEGER NOT NULL, final_size INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &Manifest{
		db: db,
	}, nil
}

// Close closes the underlying database.
func (m *Manifest) Close() error {
	return m.db.Close()
}

// Lookup returns the record for source, or nil if there isn't one.
func (m *Manifest) Lookup(source string) (*Record, error) {
	r := Record{Source: source}
	switch err := m.db.QueryRow("SELECT sha1, options, output, format, compression, checksum, uncompressed_size, final_size FROM conversion WHERE source = ?", source).Scan(&r.SHA1, &r.Options, &r.Output, &r.Format, &r.Compression, &r.Checksum, &r.UncompressedSize, &r.FinalSize); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return &r, nil
	default:
		return nil, err
	}
}

// Put stores r, replacing any existing record for the same source.
func (m *Manifest) Put(r *Record) error {
	if _, err := m.db.Exec("INSERT OR REPLACE INTO conversion (source, sha1, options, output, format, compression, checksum, uncompressed_size, final_size) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", r.Source, r.SHA1, r.Options, r.Output, r.Format, r.Compression, r.Checksum, r.UncompressedSize, r.FinalSize); err != nil {
		return err
	}
	return nil
}
