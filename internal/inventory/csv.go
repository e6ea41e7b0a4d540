package inventory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/AD7six/ebs-dash/internal/logging"
)

// Column names of a construction data file.
const (
	ColumnTagName   = "Tag-Name"
	ColumnTagValue  = "Tag-Value"
	ColumnVolumeID  = "Volume-ID"
	ColumnRegion    = "Region"
	ColumnAccountID = "Account-Number"
)

// ObjectGetter is the part of the S3 API used to read construction data.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// CSVSource reads resources from a construction data file, either a local
// path or an s3://bucket/key URI. A volume listed on several rows collects
// the tags of all of them.
type CSVSource struct {
	Location string
	S3       ObjectGetter // Required for s3:// locations
}

// Resources implements Source. The file is read in full before the first
// resource is sent.
func (s *CSVSource) Resources(ctx context.Context, filter Filter) <-chan ResourceResult {
	out := make(chan ResourceResult)
	go func() {
		defer close(out)

		rc, err := s.open(ctx)
		if err != nil {
			send(ctx, out, ResourceResult{Err: err})
			return
		}
		defer rc.Close()

		resources, err := parseConstructionData(rc)
		if err != nil {
			send(ctx, out, ResourceResult{Err: fmt.Errorf("failed to parse %s: %w", s.Location, err)})
			return
		}

		wantIDs := make(map[string]struct{}, len(filter.IDs))
		for _, id := range filter.IDs {
			wantIDs[id] = struct{}{}
		}
		for _, r := range resources {
			if len(wantIDs) > 0 {
				if _, ok := wantIDs[r.ID]; !ok {
					continue
				}
			}
			if !HasAllTags(r.Tags, filter.Tags) {
				continue
			}
			if !send(ctx, out, ResourceResult{Resource: r}) {
				return
			}
		}
	}()
	return out
}

func (s *CSVSource) open(ctx context.Context) (io.ReadCloser, error) {
	bucket, key, isS3 := ParseS3URI(s.Location)
	if !isS3 {
		f, err := os.Open(s.Location)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: data file %s not found", ErrMissingInput, s.Location)
		}
		return f, err
	}

	if s.S3 == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	resp, err := s.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		var noBucket *s3types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, fmt.Errorf("%w: %s: %w", ErrMissingInput, s.Location, err)
		}
		return nil, fmt.Errorf("failed to get %s: %w", s.Location, err)
	}
	return resp.Body, nil
}

// ParseS3URI splits s3://bucket/key. ok is false for anything else,
// including URIs without a key.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

func parseConstructionData(r io.Reader) ([]Resource, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{ColumnTagName, ColumnTagValue, ColumnVolumeID} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}
	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var resources []Resource
	index := make(map[string]int)
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, err
		}

		id := field(row, ColumnVolumeID)
		if id == "" {
			logging.Logger.Warn("skipping row without volume id", "line", line)
			continue
		}

		i, ok := index[id]
		if !ok {
			i = len(resources)
			index[id] = i
			resources = append(resources, Resource{
				ID:        id,
				Kind:      KindVolume,
				Tags:      make(map[string]string),
				Region:    field(row, ColumnRegion),
				AccountID: field(row, ColumnAccountID),
			})
		}
		if name := field(row, ColumnTagName); name != "" {
			resources[i].Tags[name] = field(row, ColumnTagValue)
		}
	}
	return resources, nil
}
