package wix

import (
	"strconv"
	"strings"
)

// identFiller is prepended to identifiers that don't start with a
// letter. wix rejects those.
const identFiller = "n"

var identReplacer = strings.NewReplacer(
	".", "",
	" ", "",
	"-", "_",
)

// Sanitize converts a file or directory name into something usable as
// part of a wix identifier. Dots and spaces are removed, hyphens
// become underscores, and the result is lowercased. Anything else
// outside of [a-z0-9_] is then mapped to an underscore, and a filler
// letter is prepended if the result doesn't start with a letter.
//
// Sanitize is deterministic and idempotent. It is not unique, two
// names can sanitize to the same identifier.
func Sanitize(name string) string {
	lowered := strings.ToLower(identReplacer.Replace(name))

	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, lowered)

	if id == "" || id[0] < 'a' || id[0] > 'z' {
		id = identFiller + id
	}

	return id
}

// DirectoryId returns the Directory identifier for a directory visited
// at the given traversal step.
func DirectoryId(prefix, name string, step int) string {
	return prefix + "_" + Sanitize(name) + strconv.Itoa(step)
}

// ComponentId returns the Component identifier for a file found in
// the directory visited at the given traversal step. ComponentRefs use
// the same identifier.
func ComponentId(prefix, name string, step int) string {
	return prefix + Sanitize(name) + strconv.Itoa(step)
}

// FileId returns the File identifier for a file found in the directory
// visited at the given traversal step.
func FileId(prefix, name string, step int) string {
	return prefix + Sanitize(name) + "file" + strconv.Itoa(step)
}
