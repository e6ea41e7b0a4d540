package sharding

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AD7six/ebs-dash/internal/grouping"
	"github.com/AD7six/ebs-dash/internal/widgets"
)

// widget returns a widget for id carrying n series.
func widget(id string, n int) widgets.Widget {
	return widgets.Widget{
		ResourceID: id,
		Width:      12,
		Height:     6,
		Properties: widgets.MetricProperties{Metrics: make([]widgets.MetricRef, n)},
	}
}

func ids(ws []widgets.Widget) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.ResourceID)
	}
	return out
}

func newSharder(t *testing.T, prefix string, maxMetrics, maxLen int) *Sharder {
	t.Helper()
	n, err := NewNamer(prefix, maxLen)
	require.NoError(t, err)
	s, err := New(n, maxMetrics)
	require.NoError(t, err)
	return s
}

func TestShard_ThreeWidgetsOfEight(t *testing.T) {
	s := newSharder(t, "PREFIX", 20, 255)
	key := grouping.NewKey(grouping.TagPair{Name: "Team", Value: "platform"})

	shards := s.Shard(key, []widgets.Widget{widget("vol-1", 8), widget("vol-2", 8), widget("vol-3", 8)})

	require.Len(t, shards, 2)
	assert.Equal(t, "PREFIX_Team_platform_1", shards[0].Name)
	assert.Equal(t, 1, shards[0].Ordinal)
	assert.Equal(t, []string{"vol-1", "vol-2"}, ids(shards[0].Widgets))
	assert.Equal(t, 16, shards[0].MetricCount())

	assert.Equal(t, "PREFIX_Team_platform_2", shards[1].Name)
	assert.Equal(t, 2, shards[1].Ordinal)
	assert.Equal(t, []string{"vol-3"}, ids(shards[1].Widgets))
	assert.Equal(t, 8, shards[1].MetricCount())
	assert.Equal(t, key, shards[1].GroupKey)
}

func TestShard_PrefixSeparator(t *testing.T) {
	key := grouping.NewKey(grouping.TagPair{Name: "Team", Value: "platform"})

	withUnderscore := newSharder(t, "EBS_", 2500, 255).Shard(key, []widgets.Widget{widget("vol-1", 8)})
	without := newSharder(t, "EBS", 2500, 255).Shard(key, []widgets.Widget{widget("vol-1", 8)})

	assert.Equal(t, "EBS_Team_platform_1", withUnderscore[0].Name)
	assert.Equal(t, "EBS_Team_platform_1", without[0].Name)
}

func TestPack_Properties(t *testing.T) {
	sizes := []int{8, 3, 12, 8, 1, 20, 7, 7, 7, 2, 19, 8}
	for _, limit := range []int{8, 10, 20, 25, 100} {
		t.Run(fmt.Sprintf("limit %d", limit), func(t *testing.T) {
			var ws []widgets.Widget
			for i, n := range sizes {
				ws = append(ws, widget(fmt.Sprintf("vol-%d", i), n))
			}

			runs := Pack(ws, limit)

			var flat []widgets.Widget
			for _, run := range runs {
				require.NotEmpty(t, run)
				total := widgets.TotalMetricCount(run)
				if total > limit {
					assert.Len(t, run, 1, "only a single oversized widget may exceed the limit")
				}
				flat = append(flat, run...)
			}
			assert.Equal(t, ids(ws), ids(flat), "every widget appears once, in order")
		})
	}
}

func TestPack_OversizedWidget(t *testing.T) {
	runs := Pack([]widgets.Widget{widget("a", 4), widget("big", 30), widget("b", 4)}, 20)

	require.Len(t, runs, 3)
	assert.Equal(t, []string{"a"}, ids(runs[0]))
	assert.Equal(t, []string{"big"}, ids(runs[1]))
	assert.Equal(t, []string{"b"}, ids(runs[2]))
}

func TestPack_Empty(t *testing.T) {
	assert.Empty(t, Pack(nil, 20))
}

func TestShard_Deterministic(t *testing.T) {
	s := newSharder(t, "EBS_", 20, 255)
	key := grouping.NewKey(grouping.TagPair{Name: "Env", Value: "prod/eu"})
	ws := []widgets.Widget{widget("a", 8), widget("b", 8), widget("c", 8), widget("d", 8), widget("e", 8)}

	first := s.Shard(key, ws)
	second := s.Shard(key, ws)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.Equal(t, ids(first[i].Widgets), ids(second[i].Widgets))
	}
	assert.Equal(t, "EBS_Env_prod_eu_3", first[2].Name)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Team_platform", Sanitize("Team_platform"))
	assert.Equal(t, "Env_prod_eu_west_1", Sanitize("Env_prod/eu-west-1"))
	assert.Equal(t, "a__b", Sanitize("a  b"))
	assert.Equal(t, "caf_", Sanitize("café"))
}

func TestNamer_Truncation(t *testing.T) {
	n, err := NewNamer("EBS_", 64)
	require.NoError(t, err)

	long := strings.Repeat("x", 100)
	k1 := grouping.NewKey(grouping.TagPair{Name: "Team", Value: long + "1"})
	k2 := grouping.NewKey(grouping.TagPair{Name: "Team", Value: long + "2"})

	n1 := n.Name(k1, 1)
	n2 := n.Name(k2, 1)

	assert.LessOrEqual(t, len(n1), 64)
	assert.LessOrEqual(t, len(n2), 64)
	assert.NotEqual(t, n1, n2, "truncated names of distinct keys must differ")
	assert.True(t, strings.HasPrefix(n1, "EBS_Team_xxx"))
	assert.True(t, strings.HasSuffix(n1, fmt.Sprintf("_%016x_1", KeyHash(k1))))

	// Ordinals stay distinct after truncation.
	assert.NotEqual(t, n.Name(k1, 1), n.Name(k1, 2))
	assert.LessOrEqual(t, len(n.Name(k1, 1234)), 64)
}

func TestNamer_ShortNamesUntouched(t *testing.T) {
	n, err := NewNamer("EBS_", 64)
	require.NoError(t, err)
	k := grouping.NewKey(grouping.TagPair{Name: "Team", Value: "platform"}, grouping.TagPair{Name: "Env", Value: "prod"})
	assert.Equal(t, "EBS_Team_platform_Env_prod_7", n.Name(k, 7))
}

func TestNamer_EmptyKey(t *testing.T) {
	n, err := NewNamer("EBS_", 255)
	require.NoError(t, err)
	assert.Equal(t, "EBS_1", n.Name(grouping.NewKey(), 1))
}

func TestNewNamer_Invalid(t *testing.T) {
	_, err := NewNamer("", 255)
	assert.Error(t, err)
	_, err = NewNamer("EBS_", 10)
	assert.Error(t, err)
}

func TestShardAll_SanitizeCollision(t *testing.T) {
	s := newSharder(t, "EBS_", 2500, 255)
	k1 := grouping.NewKey(grouping.TagPair{Name: "Team", Value: "a b"})
	k2 := grouping.NewKey(grouping.TagPair{Name: "Team", Value: "a_b"})
	k3 := grouping.NewKey(grouping.TagPair{Name: "Team", Value: "c"})

	shards, err := s.ShardAll([]GroupWidgets{
		{Key: k1, Widgets: []widgets.Widget{widget("vol-1", 8)}},
		{Key: k2, Widgets: []widgets.Widget{widget("vol-2", 8)}},
		{Key: k3, Widgets: []widgets.Widget{widget("vol-3", 8)}},
	})
	require.NoError(t, err)
	require.Len(t, shards, 3)

	assert.Equal(t, fmt.Sprintf("EBS_Team_a_b_%016x_1", KeyHash(k1)), shards[0].Name)
	assert.Equal(t, fmt.Sprintf("EBS_Team_a_b_%016x_1", KeyHash(k2)), shards[1].Name)
	assert.NotEqual(t, shards[0].Name, shards[1].Name)
	assert.Equal(t, "EBS_Team_c_1", shards[2].Name)
}

func TestNew_Invalid(t *testing.T) {
	n, err := NewNamer("EBS_", 255)
	require.NoError(t, err)
	_, err = New(n, 0)
	assert.Error(t, err)
	_, err = New(nil, 10)
	assert.Error(t, err)
}

func TestNamePrefix(t *testing.T) {
	assert.Equal(t, "EBS_", NamePrefix("EBS_"))
	assert.Equal(t, "EBS_", NamePrefix("EBS"))
	assert.Equal(t, "vol-_", NamePrefix("vol-"))
}
