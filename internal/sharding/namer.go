package sharding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/AD7six/ebs-dash/internal/grouping"
	"github.com/AD7six/ebs-dash/internal/logging"
)

var (
	// nonAlphanumericRegex matches every character a dashboard name may not carry
	nonAlphanumericRegex = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

const (
	// hashLen is the width of the hex key hash used to keep names distinct.
	hashLen = 16

	// MinNameRoom is the room a shard name needs past its prefix: a hash,
	// two separators and a few ordinal digits.
	MinNameRoom = hashLen + 2 + 4
)

// Sanitize replaces every non-alphanumeric character with an underscore. One
// underscore is written per replaced character, so the result is ASCII.
func Sanitize(s string) string {
	return nonAlphanumericRegex.ReplaceAllString(s, "_")
}

// Namer derives shard dashboard names from a group key and an ordinal:
// prefix, separator, sanitized key, "_", ordinal. The separator is "_"
// unless the prefix already ends with one.
type Namer struct {
	prefix    string
	maxLength int
}

// NewNamer returns a Namer for prefix whose names never exceed maxLength.
func NewNamer(prefix string, maxLength int) (*Namer, error) {
	if prefix == "" {
		return nil, fmt.Errorf("dashboard prefix must not be empty")
	}
	prefix = NamePrefix(prefix)
	if maxLength < len(prefix)+MinNameRoom {
		return nil, fmt.Errorf("maximum name length %d is too short for prefix %q", maxLength, prefix)
	}
	return &Namer{prefix: prefix, maxLength: maxLength}, nil
}

// NamePrefix returns prefix followed by the separator, the string every
// shard name under prefix starts with.
func NamePrefix(prefix string) string {
	if strings.HasSuffix(prefix, "_") {
		return prefix
	}
	return prefix + "_"
}

// Name returns the name of shard ordinal of the group with key k.
func (n *Namer) Name(k grouping.Key, ordinal int) string {
	return n.name(k, ordinal, false)
}

// name builds the shard name. With withHash set, or when the sanitized key
// does not fit, a hash of the unsanitized key is inserted before the ordinal.
func (n *Namer) name(k grouping.Key, ordinal int, withHash bool) string {
	key := Sanitize(k.String())
	suffix := "_" + strconv.Itoa(ordinal)
	if key == "" {
		return n.prefix + strconv.Itoa(ordinal)
	}

	room := n.maxLength - len(n.prefix) - len(suffix)
	if !withHash && len(key) <= room {
		return n.prefix + key + suffix
	}

	hash := fmt.Sprintf("%0*x", hashLen, KeyHash(k))
	cut := min(room-hashLen-1, len(key))
	if !withHash {
		logging.Logger.Warn("dashboard name truncated",
			"group", k.Label(),
			"length", len(n.prefix)+len(key)+len(suffix),
			"max", n.maxLength)
	}
	if cut <= 0 {
		return n.prefix + hash + suffix
	}
	return n.prefix + key[:cut] + "_" + hash + suffix
}

// KeyHash is the xxhash64 of the unambiguous encoding of k's tag pairs.
func KeyHash(k grouping.Key) uint64 {
	d := xxhash.New()
	for _, p := range k.Pairs() {
		d.WriteString(p.Name)
		d.WriteString("\x00")
		d.WriteString(p.Value)
		d.WriteString("\x00")
	}
	return d.Sum64()
}
