//go:build !linux && !darwin

package loader

import (
	"os"

	"github.com/pkg/errors"
)

func mapFile(path string) ([]byte, func(), error) {
	p, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	return p, func() {}, nil
}
