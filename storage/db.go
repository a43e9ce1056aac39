package storage

import (
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
)

// Database is the key-value store the trie layer persists against. It is a
// thin alias over go-ethereum's ethdb.Database so storage/trie can hand the
// backing store straight to triedb.NewDatabase without an adapter layer.
type Database = ethdb.Database

// NewMemDB opens an in-memory store, used by unit tests and ephemeral
// simulation runs.
func NewMemDB() Database {
	return rawdb.NewMemoryDatabase()
}

// NewLevelDB opens (or creates) a LevelDB-backed store at path.
func NewLevelDB(path string) (Database, error) {
	ldb, err := leveldb.New(path, 0, 0, "dposledger/", false)
	if err != nil {
		return nil, err
	}
	return rawdb.NewDatabase(ldb), nil
}
