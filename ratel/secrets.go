package ratel

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"nsigner.lol/ratel/prefixes"
	"nsigner.lol/store"
)

func (r *T) Get(c cx, scope, id st) (secret by, err er) {
	if err = store.CheckKey(scope, id); err != nil {
		return
	}
	if err = c.Err(); err != nil {
		return
	}
	err = r.View(func(txn *badger.Txn) (err er) {
		var item *badger.Item
		if item, err = txn.Get(prefixes.Secret.Key(scope, id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				err = store.ErrNotFound
			}
			return
		}
		secret, err = item.ValueCopy(nil)
		return
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		err = errorf.E("ratel: get %s: %w", store.Path("", scope, id), err)
	}
	return
}

func (r *T) Set(c cx, scope, id st, secret by) (err er) {
	if err = store.CheckKey(scope, id); err != nil {
		return
	}
	if err = c.Err(); err != nil {
		return
	}
	err = r.Update(func(txn *badger.Txn) (err er) {
		// badger holds on to the value until the transaction commits, so it
		// gets its own copy
		if err = txn.Set(prefixes.Secret.Key(scope, id),
			append(by(nil), secret...)); err != nil {
			return
		}
		ck := prefixes.Created.Key(scope, id)
		if _, err = txn.Get(ck); errors.Is(err, badger.ErrKeyNotFound) {
			ts := make(by, 8)
			binary.BigEndian.PutUint64(ts, uint64(time.Now().Unix()))
			err = txn.Set(ck, ts)
		}
		return
	})
	if chk.E(err) {
		err = errorf.E("ratel: set %s: %w", store.Path("", scope, id), err)
	}
	return
}

func (r *T) Delete(c cx, scope, id st) (err er) {
	if err = store.CheckKey(scope, id); err != nil {
		return
	}
	if err = c.Err(); err != nil {
		return
	}
	err = r.Update(func(txn *badger.Txn) (err er) {
		if err = txn.Delete(prefixes.Secret.Key(scope, id)); err != nil {
			return
		}
		return txn.Delete(prefixes.Created.Key(scope, id))
	})
	if chk.E(err) {
		err = errorf.E("ratel: delete %s: %w", store.Path("", scope, id), err)
	}
	return
}

// List returns the ids stored under scope, in key order.
func (r *T) List(c cx, scope st) (ids []st, err er) {
	if err = store.CheckKey(scope, "-"); err != nil {
		return
	}
	if err = c.Err(); err != nil {
		return
	}
	prefix := prefixes.Secret.Key(scope, "")
	err = r.View(func(txn *badger.Txn) (err er) {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, st(it.Item().Key()[len(prefix):]))
		}
		return
	})
	return
}

// Created returns when the secret under scope and id was first stored.
func (r *T) Created(c cx, scope, id st) (ts time.Time, err er) {
	if err = store.CheckKey(scope, id); err != nil {
		return
	}
	err = r.View(func(txn *badger.Txn) (err er) {
		var item *badger.Item
		if item, err = txn.Get(prefixes.Created.Key(scope, id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				err = store.ErrNotFound
			}
			return
		}
		return item.Value(func(val by) (err er) {
			if len(val) != 8 {
				return errorf.E("created record has %d bytes", len(val))
			}
			ts = time.Unix(int64(binary.BigEndian.Uint64(val)), 0)
			return
		})
	})
	return
}
