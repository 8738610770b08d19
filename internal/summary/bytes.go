package summary

import (
	"math"
	"strconv"
	"strings"
)

// HDFSBlockSize is the block size used to normalise byte volumes.
const HDFSBlockSize = 128 * 1024 * 1024

var units = map[byte]int64{
	'B': 1,
	'K': 1 << 10,
	'M': 1 << 20,
	'G': 1 << 30,
	'T': 1 << 40,
}

// ParseBytes parses a JVM style size such as "4g", "512M" or "2gb".
func ParseBytes(size string) (int64, bool) {
	s := strings.ToUpper(strings.TrimSpace(size))
	if len(s) > 2 && strings.HasSuffix(s, "B") {
		if _, ok := units[s[len(s)-2]]; ok {
			s = s[:len(s)-1]
		}
	}
	if len(s) < 2 {
		return 0, false
	}
	mult, ok := units[s[len(s)-1]]
	if !ok {
		return 0, false
	}
	digits := s[:len(s)-1]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n * mult, true
}

// BytesToBlocks returns the number of HDFS blocks needed to hold b bytes.
func BytesToBlocks(b float64) int64 {
	return int64(math.Ceil(b / HDFSBlockSize))
}
