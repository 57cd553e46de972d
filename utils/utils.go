package utils

import (
	"fmt"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-homedir"
)

// Expands tilde and all environment variables from the given path.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

// ParseSize parses a human readable size such as "16MiB", "4 kB" or
// "1048576". Zero is rejected, there is no unlimited size.
func ParseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("size %q must be greater than zero", s)
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("size %q is too large", s)
	}
	return int64(n), nil
}
