package headerstore

import (
	"errors"
	"os"
)

func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
