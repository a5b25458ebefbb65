package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
)

func TestServiceDownloads(t *testing.T) {
	client := &fakeClient{
		respond: func(path string) (any, error) {
			if path != ResourceDownloads {
				return nil, errors.New("unexpected path: " + path)
			}
			return downloadsPage(1, 1, 3, "ANDROID", "IOS", "ANDROID"), nil
		},
	}

	stats, err := NewService(client).Downloads(context.Background())
	if err != nil {
		t.Fatalf("Downloads() error: %v", err)
	}

	if stats.Total != 3 || stats.Android != 2 || stats.IOS != 1 {
		t.Errorf("Downloads() = %+v, want total 3, android 2, ios 1", stats)
	}
	if !stats.Exact {
		t.Error("single-page downloads should be exact")
	}
}

func TestServiceEvaluations(t *testing.T) {
	client := &fakeClient{
		respond: func(path string) (any, error) {
			if path != ResourceEvaluations {
				return nil, errors.New("unexpected path: " + path)
			}
			return evaluationsPage(1, 1, 4, map[string][]float64{
				"ANDROID": {4, 5},
				"IOS":     {2, 3},
			}), nil
		},
	}

	stats, err := NewService(client).Evaluations(context.Background())
	if err != nil {
		t.Fatalf("Evaluations() error: %v", err)
	}

	if stats.Android != 4.5 {
		t.Errorf("Android average = %v, want 4.5", stats.Android)
	}
	if stats.IOS != 2.5 {
		t.Errorf("IOS average = %v, want 2.5", stats.IOS)
	}
	if stats.Average != 3.5 {
		t.Errorf("overall average = %v, want 3.5", stats.Average)
	}
}

func TestServiceErrors(t *testing.T) {
	client := &fakeClient{
		respond: func(path string) (any, error) {
			if path != ResourceErrors {
				return nil, errors.New("unexpected path: " + path)
			}
			return models.PageResponse[models.ErrorItem]{
				Data: models.Page[models.ErrorItem]{
					CurrentPage: 1,
					Items: []models.ErrorItem{
						{ID: 1, Platform: "ANDROID"},
						{ID: 2, Platform: "ANDROID"},
						{ID: 3, Platform: "IOS"},
					},
					LastPage: 1,
					Total:    3,
				},
			}, nil
		},
	}

	stats, err := NewService(client).Errors(context.Background())
	if err != nil {
		t.Fatalf("Errors() error: %v", err)
	}

	if stats.Android != 2 || stats.IOS != 1 {
		t.Errorf("Errors() = %+v, want android 2, ios 1", stats)
	}
	if stats.Variation != errorVariation {
		t.Errorf("Variation = %v, want %v", stats.Variation, errorVariation)
	}
}

func TestServicePropagatesFailure(t *testing.T) {
	wantErr := errors.New("unavailable")
	client := &fakeClient{
		respond: func(path string) (any, error) { return nil, wantErr },
	}

	svc := NewService(client)
	if _, err := svc.Downloads(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Downloads() error = %v, want %v", err, wantErr)
	}
	if _, err := svc.Evaluations(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Evaluations() error = %v, want %v", err, wantErr)
	}
	if _, err := svc.Errors(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Errors() error = %v, want %v", err, wantErr)
	}
}
