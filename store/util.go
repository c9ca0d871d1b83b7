package store

import (
	"context"

	"nsigner.lol/lol"
)

type (
	by = []byte
	st = string
	er = error
	cx = context.Context
)

var (
	log, chk, errorf = lol.Main.Log, lol.Main.Check, lol.Main.Errorf
)
