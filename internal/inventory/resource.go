// Package inventory enumerates the monitored resources and their tags.
package inventory

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInventoryUnavailable means the inventory could not be listed; it is
	// fatal for the whole run.
	ErrInventoryUnavailable = errors.New("inventory unavailable")
	// ErrInvalidRegion means the requested region is not offered to the account.
	ErrInvalidRegion = errors.New("invalid region")
	// ErrMissingInput means a required input file or object does not exist.
	ErrMissingInput = errors.New("missing input")
)

// Kind is the type of a monitored resource.
type Kind string

const (
	KindVolume Kind = "Volume"
)

// Resource is a snapshot of one monitored resource, fetched once per run.
type Resource struct {
	ID        string            `json:"id" yaml:"id"`
	Kind      Kind              `json:"kind" yaml:"kind"`
	Tags      map[string]string `json:"tags" yaml:"tags"`
	Region    string            `json:"region,omitempty" yaml:"region,omitempty"`         // Empty means the run region
	AccountID string            `json:"account_id,omitempty" yaml:"account_id,omitempty"` // Empty means the account of the credentials in use
}

// Tag returns the value of the tag named key and whether it is present.
func (r Resource) Tag(key string) (string, bool) {
	v, ok := r.Tags[key]
	return v, ok
}

// ResourceResult wraps a Resource with a potential error from listing.
// A result carrying an error is always the last one sent.
type ResourceResult struct {
	Resource Resource
	Err      error
}

// Filter restricts which resources are listed.
type Filter struct {
	Tags []TagFilter // All must match
	IDs  []string    // Empty means all resources
}

// Narrows reports whether f selects only part of the inventory.
func (f Filter) Narrows() bool {
	return len(f.Tags) > 0 || len(f.IDs) > 0
}

// Source lists resources. Each call starts a new, full pass; the returned
// channel is closed once the pass ends or ctx is cancelled.
type Source interface {
	Resources(ctx context.Context, filter Filter) <-chan ResourceResult
}

// Collect drains one full pass of src into a slice. Any listing error is
// returned wrapped in ErrInventoryUnavailable unless it already is one of
// this package's sentinel errors.
func Collect(ctx context.Context, src Source, filter Filter) ([]Resource, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var resources []Resource
	for res := range src.Resources(ctx, filter) {
		if res.Err != nil {
			if errors.Is(res.Err, ErrMissingInput) || errors.Is(res.Err, ErrInventoryUnavailable) {
				return nil, res.Err
			}
			return nil, fmt.Errorf("%w: %w", ErrInventoryUnavailable, res.Err)
		}
		resources = append(resources, res.Resource)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInventoryUnavailable, err)
	}
	return resources, nil
}

// send delivers res unless ctx is done first. It reports whether the value was sent.
func send(ctx context.Context, out chan<- ResourceResult, res ResourceResult) bool {
	select {
	case out <- res:
		return true
	case <-ctx.Done():
		return false
	}
}
