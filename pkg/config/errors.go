package config

import (
	"fmt"
)

// ErrConfigFileExists returned when persisting would overwrite an existing file
type ErrConfigFileExists struct {
	Path string
}

func (e ErrConfigFileExists) Error() string {
	return fmt.Sprintf("config file %s already exists", e.Path)
}
