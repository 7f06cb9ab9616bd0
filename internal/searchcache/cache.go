// Package searchcache is a write-through cache for completed searches,
// keyed by the access table's hash, the search date, the departure window,
// and the Monte Carlo seed. Other request fields (ride limit, trip
// duration, walk settings, transit modes) and the network are not part of
// the key. It stores results on disk with github.com/mattn/go-sqlite3.
package searchcache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Key identifies one cached search.
type Key struct {
	AccessHash string
	Date       string // "2006-01-02"
	FromTime   int
	ToTime     int
	Seed       int64
}

// HashAccessTable derives a stable key component for an access table
// (stop -> walk seconds) independent of map iteration order.
func HashAccessTable(access map[int]int) string {
	keys := make([]int, 0, len(access))
	for k := range access {
		keys = append(keys, k)
	}
	sortInts(keys)

	h := sha256.New()
	buf := make([]byte, 8)
	for _, stop := range keys {
		binary.BigEndian.PutUint64(buf, uint64(stop))
		h.Write(buf)
		binary.BigEndian.PutUint64(buf, uint64(access[stop]))
		h.Write(buf)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Cache is a write-through store of serialized search results.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if absent) a sqlite-backed cache at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("searchcache: opening %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS search_results (
	access_hash TEXT NOT NULL,
	date        TEXT NOT NULL,
	from_time   INTEGER NOT NULL,
	to_time     INTEGER NOT NULL,
	seed        INTEGER NOT NULL,
	result_json BLOB NOT NULL,
	PRIMARY KEY (access_hash, date, from_time, to_time, seed)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("searchcache: creating schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying sqlite connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns a previously stored result for key, or (nil, false) on miss.
func (c *Cache) Get(key Key) ([][]int, bool) {
	row := c.db.QueryRow(
		`SELECT result_json FROM search_results WHERE access_hash=? AND date=? AND from_time=? AND to_time=? AND seed=?`,
		key.AccessHash, key.Date, key.FromTime, key.ToTime, key.Seed,
	)
	var blob []byte
	if err := row.Scan(&blob); err != nil {
		return nil, false
	}
	var result [][]int
	if err := json.Unmarshal(blob, &result); err != nil {
		return nil, false
	}
	return result, true
}

// Put stores a search result under key, replacing any prior entry.
func (c *Cache) Put(key Key, result [][]int) error {
	blob, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("searchcache: encoding result: %w", err)
	}
	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO search_results (access_hash, date, from_time, to_time, seed, result_json) VALUES (?, ?, ?, ?, ?, ?)`,
		key.AccessHash, key.Date, key.FromTime, key.ToTime, key.Seed, blob,
	)
	return err
}
