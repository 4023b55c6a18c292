package wix

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// GuidFunc issues component guids. Allows test overrides.
type GuidFunc func() (string, error)

// NewGuid returns a fresh random guid, in the uppercase form wix
// prefers. Unlike the product codes, these are not derived from
// anything, so a second run never reproduces them.
func NewGuid() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", errors.Wrap(err, "generating guid")
	}
	return strings.ToUpper(u.String()), nil
}
