package inventory

import (
	"fmt"
	"sort"
	"strings"

	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// TagFilter matches resources carrying tag Key. An empty Value matches any value.
type TagFilter struct {
	Key   string
	Value string
}

func (f TagFilter) String() string {
	if f.Value == "" {
		return f.Key
	}
	return f.Key + "=" + f.Value
}

// ParseTagFilters parses filters in the form Key=Value or Key. Keys may contain
// colons (aws:cloudformation:stack-name), so only the first "=" separates.
func ParseTagFilters(specs []string) ([]TagFilter, error) {
	filters := make([]TagFilter, 0, len(specs))
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		key, value, _ := strings.Cut(spec, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" {
			return nil, fmt.Errorf("invalid tag filter %q: empty tag name", spec)
		}
		filters = append(filters, TagFilter{Key: key, Value: value})
	}
	return filters, nil
}

// TagMap converts EC2 tags to a map. Tags with a nil key are skipped.
func TagMap(tags []ec2types.Tag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		if t.Key == nil {
			continue
		}
		v := ""
		if t.Value != nil {
			v = *t.Value
		}
		m[*t.Key] = v
	}
	return m
}

// HasAllTags reports whether tags satisfy every filter. Matching is
// case-sensitive, as EC2 tag filters are.
func HasAllTags(tags map[string]string, filters []TagFilter) bool {
	for _, f := range filters {
		v, ok := tags[f.Key]
		if !ok {
			return false
		}
		if f.Value != "" && v != f.Value {
			return false
		}
	}
	return true
}

// TagValues is one tag key with every distinct value seen for it.
type TagValues struct {
	Key    string   `json:"key" yaml:"key"`
	Values []string `json:"values" yaml:"values"`
}

// SummarizeTags returns every tag key found on resources with its distinct
// values, both sorted.
func SummarizeTags(resources []Resource) []TagValues {
	seen := make(map[string]map[string]struct{})
	for _, r := range resources {
		for k, v := range r.Tags {
			if seen[k] == nil {
				seen[k] = make(map[string]struct{})
			}
			seen[k][v] = struct{}{}
		}
	}

	out := make([]TagValues, 0, len(seen))
	for k, values := range seen {
		tv := TagValues{Key: k, Values: make([]string, 0, len(values))}
		for v := range values {
			tv.Values = append(tv.Values, v)
		}
		sort.Strings(tv.Values)
		out = append(out, tv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// MissingTagKeys returns the keys no resource carries, in input order.
func MissingTagKeys(resources []Resource, keys []string) []string {
	present := make(map[string]struct{})
	for _, r := range resources {
		for k := range r.Tags {
			present[k] = struct{}{}
		}
	}
	var missing []string
	for _, k := range keys {
		if _, ok := present[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}
