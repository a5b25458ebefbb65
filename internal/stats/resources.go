package stats

import (
	"context"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
)

// Resource paths of the collection endpoints.
const (
	ResourceDownloads   = "/downloads"
	ResourceEvaluations = "/evaluations"
	ResourceErrors      = "/errors"
)

// errorVariation is the period-over-period delta shown on the errors
// card. The API does not expose historical deltas yet, so the value is
// the same placeholder the dashboard has always shown.
const errorVariation = -5

// Service exposes the dashboard's three stat queries over one client.
type Service struct {
	client Client
}

// NewService creates a stats service over the given API client.
func NewService(client Client) *Service {
	return &Service{client: client}
}

// Downloads computes per-platform download counts.
func (s *Service) Downloads(ctx context.Context) (models.DownloadStats, error) {
	result, err := Aggregate(ctx, s.client, ResourceDownloads,
		func(item models.DownloadItem) string { return item.Platform }, nil)
	if err != nil {
		return models.DownloadStats{}, err
	}

	return models.DownloadStats{
		Total:   result.Total,
		Android: result.Category(models.PlatformAndroid).Count,
		IOS:     result.Category(models.PlatformIOS).Count,
		Exact:   result.Exact,
	}, nil
}

// Evaluations computes per-platform review score averages.
func (s *Service) Evaluations(ctx context.Context) (models.EvaluationStats, error) {
	result, err := Aggregate(ctx, s.client, ResourceEvaluations,
		func(item models.EvaluationItem) string { return item.Platform },
		func(item models.EvaluationItem) float64 { return item.ScoreValue() })
	if err != nil {
		return models.EvaluationStats{}, err
	}

	return models.EvaluationStats{
		Total:   result.Total,
		Average: result.Average,
		Android: result.Category(models.PlatformAndroid).Average,
		IOS:     result.Category(models.PlatformIOS).Average,
		Exact:   result.Exact,
	}, nil
}

// Errors computes per-platform error counts.
func (s *Service) Errors(ctx context.Context) (models.ErrorStats, error) {
	result, err := Aggregate(ctx, s.client, ResourceErrors,
		func(item models.ErrorItem) string { return item.Platform }, nil)
	if err != nil {
		return models.ErrorStats{}, err
	}

	return models.ErrorStats{
		Total:     result.Total,
		Android:   result.Category(models.PlatformAndroid).Count,
		IOS:       result.Category(models.PlatformIOS).Count,
		Variation: errorVariation,
		Exact:     result.Exact,
	}, nil
}
