package store_test

import (
	"testing"

	"nsigner.lol/store"
	"nsigner.lol/store/storetest"
)

func TestMemory(t *testing.T) {
	storetest.Run(t, store.NewMemory())
}
