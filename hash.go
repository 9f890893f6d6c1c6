package csimage

import (
	"crypto/sha1"
	"fmt"
	"io"
	"os"
)

// hashFile returns the SHA-1 of the file contents, the manifest uses it to
// spot changed sources.
func hashFile(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err = io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%X", h.Sum(nil)), nil
}
