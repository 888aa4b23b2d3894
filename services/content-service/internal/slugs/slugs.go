// Package slugs builds unique URL identifiers for content records.
package slugs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

const maxLength = 240

var ErrEmpty = errors.New("slugs: source text has no usable characters")

// Exists reports whether a slug is already taken.
type Exists func(ctx context.Context, candidate string) (bool, error)

// Make returns the base slug for s.
func Make(s string) string {
	base := slug.Make(s)
	if len(base) > maxLength {
		base = strings.TrimRight(base[:maxLength], "-")
	}
	return base
}

// Unique returns Make(source), or the first free "-2", "-3", ... variant.
func Unique(ctx context.Context, source string, exists Exists) (string, error) {
	base := Make(source)
	if base == "" {
		return "", ErrEmpty
	}
	candidate := base
	for n := 2; ; n++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
