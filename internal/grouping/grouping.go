// Package grouping partitions resources by the values of a list of tag keys.
package grouping

import (
	"strings"

	"github.com/AD7six/ebs-dash/internal/inventory"
)

// TagPair is one tag name with the value a group carries for it.
type TagPair struct {
	Name  string
	Value string
}

// Key identifies a group: one TagPair per configured tag key, in the order
// the keys were given. Key values are comparable and usable as map keys.
type Key struct {
	// canonical is the unambiguous encoding of the pairs; comparing it is
	// comparing the pairs.
	canonical string
	n         int
}

// keySep cannot appear in tag names or values accepted by EC2.
const keySep = "\x00"

// NewKey builds a key from pairs.
func NewKey(pairs ...TagPair) Key {
	parts := make([]string, 0, 2*len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.Name, p.Value)
	}
	return Key{canonical: strings.Join(parts, keySep), n: len(pairs)}
}

// Pairs returns the tag pairs of k.
func (k Key) Pairs() []TagPair {
	if k.n == 0 {
		return nil
	}
	parts := strings.Split(k.canonical, keySep)
	pairs := make([]TagPair, 0, k.n)
	for i := 0; i+1 < len(parts); i += 2 {
		pairs = append(pairs, TagPair{Name: parts[i], Value: parts[i+1]})
	}
	return pairs
}

// String renders the key as Name_Value pairs joined by "_", the form used in
// dashboard names before sanitizing.
func (k Key) String() string {
	pairs := k.Pairs()
	parts := make([]string, 0, 2*len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.Name, p.Value)
	}
	return strings.Join(parts, "_")
}

// Label renders the key for humans, e.g. "Team=platform, Env=prod".
func (k Key) Label() string {
	pairs := k.Pairs()
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.Name+"="+p.Value)
	}
	return strings.Join(parts, ", ")
}

// Group is the resources sharing one key.
type Group struct {
	Key       Key
	Resources []inventory.Resource
}

// Result holds the groups in order of first appearance.
type Result struct {
	Groups   []Group
	Excluded []inventory.Resource // Resources missing at least one tag key
}

// Len returns the number of groups.
func (r *Result) Len() int {
	return len(r.Groups)
}

// Group partitions resources by the values of tagKeys. A resource missing any
// of the keys is excluded rather than put in a catch-all group. Groups and the
// resources inside them keep input order.
func Group(resources []inventory.Resource, tagKeys []string) *Result {
	res := &Result{}
	index := make(map[Key]int)
	pairs := make([]TagPair, len(tagKeys))

	for _, r := range resources {
		complete := true
		for i, name := range tagKeys {
			v, ok := r.Tag(name)
			if !ok {
				complete = false
				break
			}
			pairs[i] = TagPair{Name: name, Value: v}
		}
		if !complete {
			res.Excluded = append(res.Excluded, r)
			continue
		}

		k := NewKey(pairs...)
		i, ok := index[k]
		if !ok {
			i = len(res.Groups)
			index[k] = i
			res.Groups = append(res.Groups, Group{Key: k})
		}
		res.Groups[i].Resources = append(res.Groups[i].Resources, r)
	}
	return res
}
