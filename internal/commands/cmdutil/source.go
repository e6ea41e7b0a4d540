// Package cmdutil holds the flag sets and output helpers shared by commands.
package cmdutil

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AD7six/ebs-dash/internal/awsclient"
	"github.com/AD7six/ebs-dash/internal/config"
	"github.com/AD7six/ebs-dash/internal/inventory"
	"github.com/AD7six/ebs-dash/internal/utils"
)

// Inventory sources selectable with --source.
const (
	SourceEC2 = "ec2"
	SourceCSV = "csv"
)

// SourceFlags selects and filters the resource inventory.
type SourceFlags struct {
	Source    string   // ec2 or csv
	DataFile  string   // Construction data, path or s3://bucket/key
	Filters   []string // Key=Value tag filters
	VolumeIDs []string // Restrict to these volumes
}

// Register adds the inventory flags to cmd.
func (f *SourceFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Source, "source", SourceEC2, "Inventory source: ec2 or csv")
	cmd.Flags().StringVar(&f.DataFile, "data-file", "", "Construction data file for --source csv (path or s3://bucket/key)")
	cmd.Flags().StringSliceVar(&f.Filters, "filter", nil, "Tag filter Key=Value, repeatable or comma-separated; a bare Key requires the tag")
	cmd.Flags().StringSliceVar(&f.VolumeIDs, "volume-ids", nil, "Comma-separated volume ids to include")
}

// Filter returns the resource filter of the flags.
func (f *SourceFlags) Filter() (inventory.Filter, error) {
	tags, err := inventory.ParseTagFilters(utils.ParseCommaSeparatedAll(f.Filters))
	if err != nil {
		return inventory.Filter{}, err
	}
	return inventory.Filter{
		Tags: tags,
		IDs:  utils.ParseCommaSeparatedAll(f.VolumeIDs),
	}, nil
}

// Build returns the selected source and, for the EC2 source, the client used
// to validate the region. Construction data rows carry their own regions, so
// the CSV source validates nothing.
func (f *SourceFlags) Build(clients *awsclient.Clients, s *config.Settings) (inventory.Source, inventory.RegionDescriber, error) {
	switch f.Source {
	case SourceEC2, "":
		if f.DataFile != "" {
			return nil, nil, fmt.Errorf("--data-file requires --source %s", SourceCSV)
		}
		return inventory.NewEC2Source(clients.EC2, s.PageSize), clients.EC2, nil
	case SourceCSV:
		if f.DataFile == "" {
			return nil, nil, fmt.Errorf("%w: --source %s requires --data-file", inventory.ErrMissingInput, SourceCSV)
		}
		return &inventory.CSVSource{Location: f.DataFile, S3: clients.S3}, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown source %q (use %s or %s)", f.Source, SourceEC2, SourceCSV)
}
