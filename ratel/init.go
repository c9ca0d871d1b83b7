package ratel

import (
	"encoding/binary"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"nsigner.lol/ratel/prefixes"
)

// Init opens the store at path, creating it if necessary. path is ignored
// when InMemory is set.
func (r *T) Init(path st) (err er) {
	r.dataDir = path
	if r.InMemory {
		r.dataDir = ""
		log.I.Ln("opening in memory ratel secret store")
	} else {
		log.I.Ln("opening ratel secret store at", r.Path())
	}
	opts := badger.DefaultOptions(r.dataDir).WithInMemory(r.InMemory)
	if r.BlockCacheSize > 0 {
		opts.BlockCacheSize = int64(r.BlockCacheSize)
	}
	opts.CompactL0OnClose = true
	opts.Compression = options.None
	if len(r.encryptionKey) > 0 {
		opts = opts.WithEncryptionKey(r.encryptionKey).
			WithIndexCacheSize(int64(r.IndexCacheSize))
	}
	r.Logger = NewLogger(r.InitLogLevel, r.dataDir)
	opts.Logger = r.Logger
	var db *badger.DB
	if db, err = badger.Open(opts); chk.E(err) {
		return err
	}
	r.DB = db
	log.T.Ln("running migrations", r.dataDir)
	if err = r.runMigrations(); chk.E(err) {
		chk.E(r.DB.Close())
		r.DB = nil
		return errorf.E("error running migrations: %w; %s", err, r.dataDir)
	}
	return nil
}

const Version = 1

// ErrNewerVersion is returned by Init when the database was written by a newer
// version of the store.
var ErrNewerVersion = errors.New("database version is newer than this store")

func (r *T) runMigrations() (err er) {
	return r.Update(func(txn *badger.Txn) (err er) {
		var version uint16
		var item *badger.Item
		item, err = txn.Get(prefixes.Version.Key())
		if errors.Is(err, badger.ErrKeyNotFound) {
			version = 0
		} else if chk.E(err) {
			return err
		} else {
			if err = item.Value(func(val by) (err er) {
				if len(val) != 2 {
					return errorf.E("version record has %d bytes", len(val))
				}
				version = binary.BigEndian.Uint16(val)
				return
			}); chk.E(err) {
				return
			}
		}
		switch {
		case version > Version:
			return errorf.E("%w: %d > %d", ErrNewerVersion, version, Version)
		case version < Version:
			// there is no secret layout before version 1, so an unversioned
			// database is only stamped
			return r.bumpVersion(txn, Version)
		}
		return nil
	})
}

func (r *T) bumpVersion(txn *badger.Txn, version uint16) er {
	buf := make(by, 2)
	binary.BigEndian.PutUint16(buf, version)
	return txn.Set(prefixes.Version.Key(), buf)
}
