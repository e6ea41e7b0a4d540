package inventory

import (
	"context"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/AD7six/ebs-dash/internal/logging"
)

// RegionDescriber is the part of the EC2 API used to validate regions.
type RegionDescriber interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

// EC2Source lists EBS volumes with DescribeVolumes, page by page.
type EC2Source struct {
	Client   ec2.DescribeVolumesAPIClient
	PageSize int32
}

// NewEC2Source returns a volume source using client with the given page size.
func NewEC2Source(client ec2.DescribeVolumesAPIClient, pageSize int) *EC2Source {
	return &EC2Source{Client: client, PageSize: int32(pageSize)}
}

// Resources implements Source.
func (s *EC2Source) Resources(ctx context.Context, filter Filter) <-chan ResourceResult {
	out := make(chan ResourceResult)
	go func() {
		defer close(out)

		paginator := ec2.NewDescribeVolumesPaginator(s.Client, describeVolumesInput(filter, s.PageSize))
		page := 0
		for paginator.HasMorePages() {
			resp, err := paginator.NextPage(ctx)
			if err != nil {
				send(ctx, out, ResourceResult{Err: fmt.Errorf("failed to describe volumes page %d: %w", page, err)})
				return
			}
			logging.Logger.Debug("described volumes page", "page", page, "volumes", len(resp.Volumes))
			page++

			for _, v := range resp.Volumes {
				if v.VolumeId == nil {
					continue
				}
				r := Resource{
					ID:   *v.VolumeId,
					Kind: KindVolume,
					Tags: TagMap(v.Tags),
				}
				// Also pushed down to EC2 as request filters.
				if !HasAllTags(r.Tags, filter.Tags) {
					continue
				}
				if !send(ctx, out, ResourceResult{Resource: r}) {
					return
				}
			}
		}
	}()
	return out
}

// describeVolumesInput translates filter into a DescribeVolumes request.
// EC2 rejects MaxResults combined with explicit volume ids.
func describeVolumesInput(filter Filter, pageSize int32) *ec2.DescribeVolumesInput {
	in := &ec2.DescribeVolumesInput{}
	if len(filter.IDs) > 0 {
		in.VolumeIds = slices.Clone(filter.IDs)
	} else if pageSize > 0 {
		in.MaxResults = aws.Int32(pageSize)
	}
	for _, f := range filter.Tags {
		if f.Value == "" {
			in.Filters = append(in.Filters, ec2types.Filter{
				Name:   aws.String("tag-key"),
				Values: []string{f.Key},
			})
			continue
		}
		in.Filters = append(in.Filters, ec2types.Filter{
			Name:   aws.String("tag:" + f.Key),
			Values: []string{f.Value},
		})
	}
	return in
}

// ValidateRegion checks region against the regions enabled for the account.
func ValidateRegion(ctx context.Context, client RegionDescriber, region string) error {
	resp, err := client.DescribeRegions(ctx, &ec2.DescribeRegionsInput{})
	if err != nil {
		return fmt.Errorf("%w: failed to describe regions: %w", ErrInventoryUnavailable, err)
	}
	names := make([]string, 0, len(resp.Regions))
	for _, r := range resp.Regions {
		if r.RegionName == nil {
			continue
		}
		if *r.RegionName == region {
			return nil
		}
		names = append(names, *r.RegionName)
	}
	slices.Sort(names)
	return fmt.Errorf("%w: %q (available: %v)", ErrInvalidRegion, region, names)
}
