// Package sharding packs the widgets of a group into dashboard documents that
// respect the per-dashboard metric limit, and names them.
package sharding

import (
	"fmt"

	"github.com/AD7six/ebs-dash/internal/grouping"
	"github.com/AD7six/ebs-dash/internal/logging"
	"github.com/AD7six/ebs-dash/internal/widgets"
)

// Shard is one dashboard document of a group.
type Shard struct {
	Name     string
	GroupKey grouping.Key
	Ordinal  int // 1-based, contiguous within a group
	Widgets  []widgets.Widget
}

// MetricCount is the number of series on the shard.
func (s Shard) MetricCount() int {
	return widgets.TotalMetricCount(s.Widgets)
}

// Document returns the dashboard document of the shard.
func (s Shard) Document() widgets.Dashboard {
	return widgets.Dashboard{Widgets: s.Widgets}
}

// Pack splits ws greedily, in order, into runs whose metric count does not
// exceed maxMetrics. A widget is never split; one that alone exceeds
// maxMetrics gets a run of its own.
func Pack(ws []widgets.Widget, maxMetrics int) [][]widgets.Widget {
	var (
		runs    [][]widgets.Widget
		current []widgets.Widget
		count   int
	)
	for _, w := range ws {
		n := widgets.MetricCount(w)
		if count+n > maxMetrics && len(current) > 0 {
			runs = append(runs, current)
			current, count = nil, 0
		}
		if n > maxMetrics {
			logging.Logger.Warn("widget exceeds the dashboard metric limit, placing it alone",
				"resource", w.ResourceID,
				"metrics", n,
				"max", maxMetrics)
		}
		current = append(current, w)
		count += n
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}
	return runs
}

// Sharder packs and names the shards of groups.
type Sharder struct {
	namer      *Namer
	maxMetrics int
}

// New returns a Sharder bounding each shard to maxMetrics series.
func New(namer *Namer, maxMetrics int) (*Sharder, error) {
	if namer == nil {
		return nil, fmt.Errorf("sharder needs a namer")
	}
	if maxMetrics <= 0 {
		return nil, fmt.Errorf("maximum metrics per dashboard must be positive, got %d", maxMetrics)
	}
	return &Sharder{namer: namer, maxMetrics: maxMetrics}, nil
}

// Shard returns the ordered shards of the group with key k.
func (s *Sharder) Shard(k grouping.Key, ws []widgets.Widget) []Shard {
	return s.shard(k, ws, false)
}

func (s *Sharder) shard(k grouping.Key, ws []widgets.Widget, withHash bool) []Shard {
	runs := Pack(ws, s.maxMetrics)
	shards := make([]Shard, 0, len(runs))
	for i, run := range runs {
		ordinal := i + 1
		shards = append(shards, Shard{
			Name:     s.namer.name(k, ordinal, withHash),
			GroupKey: k,
			Ordinal:  ordinal,
			Widgets:  run,
		})
	}
	return shards
}

// GroupWidgets is the widgets built for one group.
type GroupWidgets struct {
	Key     grouping.Key
	Widgets []widgets.Widget
}

// ShardAll shards every group. Distinct keys whose sanitized forms are equal
// ("Team_a b" and "Team_a_b") would share names, so all of them get the key
// hash in their names. An error means two shards still ended up with the same
// name.
func (s *Sharder) ShardAll(groups []GroupWidgets) ([]Shard, error) {
	bySanitized := make(map[string]int, len(groups))
	for _, g := range groups {
		bySanitized[Sanitize(g.Key.String())]++
	}

	var all []Shard
	seen := make(map[string]grouping.Key)
	for _, g := range groups {
		withHash := bySanitized[Sanitize(g.Key.String())] > 1
		if withHash {
			logging.Logger.Warn("group key collides with another after sanitizing, adding key hash",
				"group", g.Key.Label())
		}
		for _, sh := range s.shard(g.Key, g.Widgets, withHash) {
			if other, ok := seen[sh.Name]; ok {
				return nil, fmt.Errorf("dashboard name %q produced by groups %q and %q", sh.Name, other.Label(), g.Key.Label())
			}
			seen[sh.Name] = g.Key
			all = append(all, sh)
		}
	}
	return all, nil
}
