// Package ratel is a badger DB based secret store. Each encoded secret key is
// a single record under its scope and id, optionally encrypted at rest with
// badger's own AES encryption.
//
// Badger keeps its own copies of values in memtables and the value log, which
// are beyond the reach of the store's wiping. Values returned from Get are
// fresh copies that the caller owns.
package ratel

import (
	"github.com/dgraph-io/badger/v4"

	"nsigner.lol/lol"
	"nsigner.lol/store"
	"nsigner.lol/units"
)

const (
	// DefaultIndexCacheSize is used when an encryption key is set and no index
	// cache size was given, badger refuses to open an encrypted store without
	// one.
	DefaultIndexCacheSize = 64 * units.MiB
	// DefaultBlockCacheSize is far below badger's own default, a secret store
	// holds a few hundred bytes per user.
	DefaultBlockCacheSize = 16 * units.MiB
)

// T is a badger secret store.
type T struct {
	dataDir        string
	BlockCacheSize int
	IndexCacheSize int
	InitLogLevel   int
	Logger         *logger
	// InMemory runs badger without touching the disk, for tests.
	InMemory bool
	// encryptionKey is 16, 24 or 32 bytes of AES key for badger's encryption
	// at rest, or nil. It is wiped on Close.
	encryptionKey by
	// DB is the badger db
	*badger.DB
}

func (r *T) SetLogLevel(level string) {
	log.I.F("setting db log level %s", level)
	r.Logger.SetLogLevel(lol.GetLogLevel(level))
}

var (
	_ store.I      = (*T)(nil)
	_ store.Lister = (*T)(nil)
)

// BackendParams is the configuration used in creating a new ratel.T.
type BackendParams struct {
	BlockCacheSize, IndexCacheSize, LogLevel int
	// EncryptionKey is copied, the caller may wipe it once New returns.
	EncryptionKey by
	InMemory      bool
}

// New configures a new ratel.T secret store. Init opens it.
func New(p BackendParams) (r *T) {
	if p.BlockCacheSize == 0 {
		p.BlockCacheSize = DefaultBlockCacheSize
	}
	r = &T{
		BlockCacheSize: p.BlockCacheSize,
		IndexCacheSize: p.IndexCacheSize,
		InitLogLevel:   p.LogLevel,
		InMemory:       p.InMemory,
	}
	if len(p.EncryptionKey) > 0 {
		r.encryptionKey = append(by(nil), p.EncryptionKey...)
		if r.IndexCacheSize == 0 {
			r.IndexCacheSize = DefaultIndexCacheSize
		}
	}
	return
}

// Path returns the path where the database files are stored.
func (r *T) Path() string { return r.dataDir }
