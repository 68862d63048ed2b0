package vcbanner

import (
	"bytes"
	"crypto/sha1"
	"database/sql"
	"fmt"
	"image"
	_ "image/gif"  // GIF artwork
	_ "image/jpeg" // JPEG artwork
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/bodgit/vcbanner/label"
	_ "github.com/mattn/go-sqlite3"
	_ "golang.org/x/image/bmp"  // BMP artwork
	_ "golang.org/x/image/webp" // WebP artwork
)

// GameDB maps ROM checksums to the title, subtitle and label artwork used
// to build their banners
type GameDB struct {
	db *sql.DB
}

// Game is an entry in the database
type Game struct {
	Title    string
	Subtitle string
	// Label is the artwork already fitted to the label texture, it may be
	// nil
	Label image.Image
}

// NewGameDB opens or creates the database in file
func NewGameDB(file string) (*GameDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS artwork (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, png BLOB NOT NULL)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS game (id INTEGER PRIMARY KEY NOT NULL, title TEXT NOT NULL, subtitle TEXT NOT NULL, artwork_id INTEGER, FOREIGN KEY(artwork_id) REFERENCES artwork(id))"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS checksum (game_id INTEGER NOT NULL, crc TEXT NOT NULL UNIQUE, FOREIGN KEY(game_id) REFERENCES game(id))"); err != nil {
		return nil, err
	}

	return &GameDB{
		db: db,
	}, nil
}

// Close closes the database
func (db *GameDB) Close() error {
	return db.db.Close()
}

// AddGame records title, subtitle and optionally the artwork in the image
// file for the ROM in file. Adding the same ROM again replaces its entry.
func (db *GameDB) AddGame(file, title, subtitle, artwork string) error {
	crc, err := crcFile(file)
	if err != nil {
		return err
	}

	var id sql.NullInt64
	if artwork != "" {
		if id.Int64, err = db.addArtwork(artwork); err != nil {
			return err
		}
		id.Valid = true
	}

	game, err := db.addGame(title, subtitle, id)
	if err != nil {
		return err
	}

	return db.addChecksum(game, crc)
}

func (db *GameDB) addArtwork(file string) (int64, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := sha1.New()
	m, _, err := image.Decode(io.TeeReader(f, h))
	if err != nil {
		return 0, err
	}
	sha := fmt.Sprintf("%X", h.Sum(nil))

	var id int64
	switch err := db.db.QueryRow("SELECT id FROM artwork WHERE sha1 = ?", sha).Scan(&id); err {
	case sql.ErrNoRows:
		b := new(bytes.Buffer)
		if err := png.Encode(b, label.Fit(m, label.Width, label.Height, nil)); err != nil {
			return 0, err
		}
		result, err := db.db.Exec("INSERT INTO artwork (sha1, png) VALUES (?, ?)", sha, b.Bytes())
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

func (db *GameDB) addGame(title, subtitle string, artwork sql.NullInt64) (int64, error) {
	var id int64
	switch err := db.db.QueryRow("SELECT id FROM game WHERE title = ? AND subtitle = ? AND artwork_id IS ?", title, subtitle, artwork).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := db.db.Exec("INSERT INTO game (title, subtitle, artwork_id) VALUES (?, ?, ?)", title, subtitle, artwork)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

func (db *GameDB) addChecksum(game int64, crc string) error {
	if _, err := db.db.Exec("INSERT OR REPLACE INTO checksum (game_id, crc) VALUES (?, ?)", game, crc); err != nil {
		return err
	}
	return nil
}

// FindGameByCRC returns the game with the given ROM checksum, or nil if
// there isn't one
func (db *GameDB) FindGameByCRC(crc string) (*Game, error) {
	var game Game
	var artwork []byte
	switch err := db.db.QueryRow("SELECT g.title, g.subtitle, a.png FROM checksum AS c JOIN game AS g ON c.game_id = g.id LEFT JOIN artwork AS a ON g.artwork_id = a.id WHERE c.crc = ?", strings.ToUpper(crc)).Scan(&game.Title, &game.Subtitle, &artwork); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		if artwork != nil {
			m, err := png.Decode(bytes.NewReader(artwork))
			if err != nil {
				return nil, err
			}
			game.Label = m
		}
		return &game, nil
	default:
		return nil, err
	}
}

// FindGameByROM returns the game matching the ROM in file, or nil if there
// isn't one
func (db *GameDB) FindGameByROM(file string) (*Game, error) {
	crc, err := crcFile(file)
	if err != nil {
		return nil, err
	}
	return db.FindGameByCRC(crc)
}
