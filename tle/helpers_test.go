package tle

import "fmt"

const (
	issLine1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	issLine2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

// line1 builds a first data line with the given epoch.
func line1(num, yy int, day float64) string {
	return fmt.Sprintf("1 %05dU 90037B   %02d%012.8f  .00001000  00000-0  50000-4 0  9993", num, yy, day)
}

// line2 builds a second data line. ecc is the raw seven-character field.
func line2(num int, inc, raan float64, ecc string, argp, ma, revsPerDay float64) string {
	return fmt.Sprintf("2 %05d %8.4f %8.4f %s %8.4f %8.4f %11.8f123456", num, inc, raan, ecc, argp, ma, revsPerDay)
}

func validLine2(num int) string {
	return line2(num, 28.47, 250, "0002500", 100, 260, 15.1)
}
