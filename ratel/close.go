package ratel

import (
	"nsigner.lol/secure"
)

func (r *T) Close() (err er) {
	defer secure.Zero(r.encryptionKey)
	if r.DB == nil {
		return
	}
	if !r.InMemory {
		chk.E(r.DB.Sync())
	}
	log.I.F("closing database %s", r.Path())
	if err = r.DB.Close(); chk.E(err) {
		return
	}
	log.I.F("database closed")
	return
}
