package awsclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/smithy-go"
	"golang.org/x/time/rate"

	"github.com/AD7six/ebs-dash/internal/logging"
)

// errCodeNotFound is the error code CloudWatch returns for a missing dashboard.
const errCodeNotFound = "ResourceNotFound"

// ErrDashboardNotFound is returned by GetDashboard for a missing dashboard.
var ErrDashboardNotFound = errors.New("dashboard not found")

// CloudWatchAPI is the part of the CloudWatch client used for dashboards.
type CloudWatchAPI interface {
	ListDashboards(ctx context.Context, in *cloudwatch.ListDashboardsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.ListDashboardsOutput, error)
	GetDashboard(ctx context.Context, in *cloudwatch.GetDashboardInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetDashboardOutput, error)
	PutDashboard(ctx context.Context, in *cloudwatch.PutDashboardInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutDashboardOutput, error)
	DeleteDashboards(ctx context.Context, in *cloudwatch.DeleteDashboardsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.DeleteDashboardsOutput, error)
}

// Dashboards stores dashboards in CloudWatch. Puts and deletes share one rate
// limiter so parallel callers stay under the API's call rate.
type Dashboards struct {
	api     CloudWatchAPI
	limiter *rate.Limiter
}

// NewDashboards wraps api, allowing perSecond mutating calls per second.
func NewDashboards(api CloudWatchAPI, perSecond float64) *Dashboards {
	return &Dashboards{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// ListDashboards returns the names of all dashboards starting with prefix.
func (d *Dashboards) ListDashboards(ctx context.Context, prefix string) ([]string, error) {
	var (
		names []string
		next  *string
	)
	for page := 1; ; page++ {
		in := &cloudwatch.ListDashboardsInput{NextToken: next}
		if prefix != "" {
			in.DashboardNamePrefix = aws.String(prefix)
		}
		out, err := d.api.ListDashboards(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("failed to list dashboards (page %d): %w", page, err)
		}
		for _, e := range out.DashboardEntries {
			name := aws.ToString(e.DashboardName)
			// The prefix filter is applied server side; double check.
			if strings.HasPrefix(name, prefix) {
				names = append(names, name)
			}
		}
		logging.Logger.Debug("listed dashboards page", "page", page, "entries", len(out.DashboardEntries))
		if aws.ToString(out.NextToken) == "" {
			return names, nil
		}
		next = out.NextToken
	}
}

// GetDashboard returns the body of the named dashboard.
func (d *Dashboards) GetDashboard(ctx context.Context, name string) ([]byte, error) {
	out, err := d.api.GetDashboard(ctx, &cloudwatch.GetDashboardInput{DashboardName: aws.String(name)})
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrDashboardNotFound, name)
		}
		return nil, fmt.Errorf("failed to get dashboard %s: %w", name, err)
	}
	return []byte(aws.ToString(out.DashboardBody)), nil
}

// PutDashboard creates or replaces the named dashboard. Validation messages
// returned with a successful put are logged; those of a rejected body are
// part of the error.
func (d *Dashboards) PutDashboard(ctx context.Context, name string, body []byte) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}
	out, err := d.api.PutDashboard(ctx, &cloudwatch.PutDashboardInput{
		DashboardName: aws.String(name),
		DashboardBody: aws.String(string(body)),
	})
	if err != nil {
		var invalid *cwtypes.DashboardInvalidInputError
		if errors.As(err, &invalid) && len(invalid.DashboardValidationMessages) > 0 {
			return fmt.Errorf("%w: %s", err, validationText(invalid.DashboardValidationMessages))
		}
		return err
	}
	for _, m := range out.DashboardValidationMessages {
		logging.Logger.Warn("dashboard validation message",
			"dashboard", name,
			"path", aws.ToString(m.DataPath),
			"message", aws.ToString(m.Message))
	}
	return nil
}

// DeleteDashboard deletes the named dashboard. A dashboard that is already
// gone counts as deleted.
func (d *Dashboards) DeleteDashboard(ctx context.Context, name string) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := d.api.DeleteDashboards(ctx, &cloudwatch.DeleteDashboardsInput{DashboardNames: []string{name}})
	if err != nil && IsNotFound(err) {
		logging.Logger.Debug("dashboard already deleted", "dashboard", name)
		return nil
	}
	return err
}

// IsNotFound reports whether err is the API error for a missing dashboard.
func IsNotFound(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == errCodeNotFound
}

func validationText(msgs []cwtypes.DashboardValidationMessage) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, fmt.Sprintf("%s: %s", aws.ToString(m.DataPath), aws.ToString(m.Message)))
	}
	return strings.Join(parts, "; ")
}
