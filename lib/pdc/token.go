package pdc

import (
	"os"
	"strings"
)

// ReadTokenFile reads an API access token from a file. A missing file
// is not an error, runs simply proceed unauthenticated.
func ReadTokenFile(path string) (string, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(contents)), nil
}
