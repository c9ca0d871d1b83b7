package p256k

import (
	"nsigner.lol/lol"
)

type (
	bo  = bool
	by  = []byte
	st  = string
	er  = error
	no  = int
	u32 = uint32
	i32 = int32
)

var (
	log, chk, errorf = lol.Main.Log, lol.Main.Check, lol.Main.Errorf
)
