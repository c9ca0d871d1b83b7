// Package units names data sizes in bytes: ISO base 10 names and the base 2
// names that cache and memory sizes are usually given in.
package units

const (
	Kilobyte = 1000
	Kb       = Kilobyte
	Megabyte = Kilobyte * Kilobyte
	Mb       = Megabyte
	Gigabyte = Megabyte * Kilobyte
	Gb       = Gigabyte

	Kibibyte = 1 << 10
	KiB      = Kibibyte
	Mebibyte = Kibibyte << 10
	MiB      = Mebibyte
	Gibibyte = Mebibyte << 10
	GiB      = Gibibyte
)
