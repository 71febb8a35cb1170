package patchstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// MinShortIDLength is the minimum length of a short ID prefix.
const MinShortIDLength = 6

// Resolve turns a short ID prefix into a full record ID.
//
// A full UUID (36 chars, 4 hyphens) is checked for existence and returned
// as-is. Shorter input must be at least MinShortIDLength characters and match
// exactly one stored record.
func (c *Client) Resolve(ctx context.Context, shortID string) (string, error) {
	if len(shortID) == 36 && strings.Count(shortID, "-") == 4 {
		ok, err := c.Exists(ctx, shortID)
		if err != nil {
			return "", fmt.Errorf("failed to verify record existence: %w", err)
		}
		if !ok {
			return "", &NotFoundError{ShortID: shortID}
		}
		return shortID, nil
	}

	if len(shortID) < MinShortIDLength {
		return "", fmt.Errorf("short ID must be at least %d characters (got %d)", MinShortIDLength, len(shortID))
	}

	ids, err := c.IDs(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to search for record: %w", err)
	}

	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, shortID) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ShortID: shortID}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{ShortID: shortID, Matches: matches}
	}
}

// NotFoundError indicates no record matched the short ID.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no patches found matching '%s'", e.ShortID)
}

// AmbiguousError indicates several records matched the short ID.
type AmbiguousError struct {
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d patches", e.ShortID, len(e.Matches))
}

// FormatAmbiguousError lists up to 10 matching IDs for the user.
func FormatAmbiguousError(err *AmbiguousError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ambiguous short ID '%s' matches %d patches:\n", err.ShortID, len(err.Matches))

	displayCount := min(len(err.Matches), 10)
	for _, id := range err.Matches[:displayCount] {
		fmt.Fprintf(&b, "  %s\n", id)
	}
	if len(err.Matches) > 10 {
		fmt.Fprintf(&b, "  ...and %d more\n", len(err.Matches)-10)
	}

	b.WriteString("\nUse a longer prefix to uniquely identify the patch.")
	return b.String()
}

// IsNotFoundError reports whether err is a NotFoundError.
func IsNotFoundError(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsAmbiguousError reports whether err is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	var amb *AmbiguousError
	return errors.As(err, &amb)
}
