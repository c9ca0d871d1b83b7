package units

import "testing"

func TestSizes(t *testing.T) {
	if Mb != 1000000 || Gb != 1000000000 {
		t.Fatal("base 10 sizes are wrong")
	}
	if MiB != 1048576 || GiB != 1073741824 || KiB != 1024 {
		t.Fatal("base 2 sizes are wrong")
	}
}
