package inventory

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTagFilters(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []TagFilter
		wantErr bool
	}{
		{"equals", []string{"Team=platform"}, []TagFilter{{Key: "Team", Value: "platform"}}, false},
		{"colon key with value", []string{"aws:cloudformation:stack-name=web"}, []TagFilter{{Key: "aws:cloudformation:stack-name", Value: "web"}}, false},
		{"colon key only", []string{"aws:autoscaling:groupName"}, []TagFilter{{Key: "aws:autoscaling:groupName"}}, false},
		{"key only", []string{"Team"}, []TagFilter{{Key: "Team"}}, false},
		{"value keeps later separators", []string{"url=https://x:8080"}, []TagFilter{{Key: "url", Value: "https://x:8080"}}, false},
		{"trims and skips blanks", []string{" Team = platform ", ""}, []TagFilter{{Key: "Team", Value: "platform"}}, false},
		{"empty key", []string{"=platform"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTagFilters(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasAllTags(t *testing.T) {
	tags := map[string]string{"Team": "platform", "Env": "prod"}

	assert.True(t, HasAllTags(tags, nil))
	assert.True(t, HasAllTags(tags, []TagFilter{{Key: "Team", Value: "platform"}, {Key: "Env"}}))
	assert.False(t, HasAllTags(tags, []TagFilter{{Key: "Team", Value: "Platform"}}))
	assert.False(t, HasAllTags(tags, []TagFilter{{Key: "Owner"}}))
}

func TestTagMap(t *testing.T) {
	got := TagMap([]ec2types.Tag{
		{Key: aws.String("Team"), Value: aws.String("platform")},
		{Key: aws.String("Empty")},
		{Value: aws.String("orphan")},
	})
	assert.Equal(t, map[string]string{"Team": "platform", "Empty": ""}, got)
}

func TestSummarizeTags(t *testing.T) {
	resources := []Resource{
		{ID: "vol-1", Tags: map[string]string{"Team": "platform", "Env": "prod"}},
		{ID: "vol-2", Tags: map[string]string{"Team": "data"}},
		{ID: "vol-3", Tags: map[string]string{"Team": "data"}},
	}

	got := SummarizeTags(resources)
	assert.Equal(t, []TagValues{
		{Key: "Env", Values: []string{"prod"}},
		{Key: "Team", Values: []string{"data", "platform"}},
	}, got)

	assert.Equal(t, []string{"Owner"}, MissingTagKeys(resources, []string{"Team", "Owner"}))
	assert.Nil(t, MissingTagKeys(resources, []string{"Env"}))
}
