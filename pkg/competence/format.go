package competence

import "strconv"

// trimTrailingZeros formats a float32 the way Rust's default Display
// impl would for the typical 1-2 decimal-place scores this module sees
// (0.5, 0.75, 0.9, 1.0 -> "0.5", "0.75", "0.9", "1"): the shortest decimal
// that round-trips.
func trimTrailingZeros(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
