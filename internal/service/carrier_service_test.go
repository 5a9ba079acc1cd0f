package service

import (
	"context"
	"testing"

	"github.com/kursadbilgin/tcxc-automation/internal/domain"
	"github.com/kursadbilgin/tcxc-automation/internal/marketplace"
	"github.com/kursadbilgin/tcxc-automation/internal/observability"
)

func TestCarrierServiceInterconnectsEveryCheapRate(t *testing.T) {
	t.Parallel()

	var requested []marketplace.Interconnection
	api := &fakeMarketplace{
		searchMarketViewFn: func(ctx context.Context, filter marketplace.Payload) ([]domain.Rate, error) {
			return []domain.Rate{
				{IConnection: "1", VendorName: "A", Price: 0.10},
				{IConnection: "2", VendorName: "B", Price: 0.22},
				{IConnection: "3", VendorName: "C", Price: 0.219},
				{IConnection: "4", VendorName: "D", Price: 0.05},
			}, nil
		},
		interconnectFn: func(ctx context.Context, ic marketplace.Interconnection) (*marketplace.Response, error) {
			requested = append(requested, ic)
			if ic.IConnection == "3" {
				return nil, applicationError(marketplace.EndpointInterconnect, "already connected")
			}
			return &marketplace.Response{StatusCode: 200, Body: map[string]any{"status": "success"}}, nil
		},
	}
	recorder := &recordingRecorder{}

	svc, err := NewCarrierService(api, CarrierOptions{
		Threshold: domain.FeeThreshold{{Field: "price_1", Max: 0.22}},
		IAccount:  "42",
	}, recorder, nil)
	if err != nil {
		t.Fatalf("NewCarrierService() error = %v", err)
	}

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(requested) != 3 {
		t.Fatalf("interconnect calls = %d, want 3", len(requested))
	}
	for _, ic := range requested {
		if ic.IAccount != "42" {
			t.Fatalf("i_account = %q, want 42", ic.IAccount)
		}
		if ic.IConnection == "2" {
			t.Fatal("rate at the limit must be skipped")
		}
	}
	if len(result.Interconnected) != 2 || result.Failed != 1 || result.Skipped != 1 {
		t.Fatalf("result = %+v", result)
	}
	if recorder.count(observability.ResultFailure) != 1 {
		t.Fatalf("actions = %+v", recorder.actions)
	}
}

func TestCarrierServiceSearchFailure(t *testing.T) {
	t.Parallel()

	api := &fakeMarketplace{
		searchMarketViewFn: func(ctx context.Context, filter marketplace.Payload) ([]domain.Rate, error) {
			return nil, applicationError(marketplace.EndpointMarketViewSearch, "no access")
		},
	}

	svc, err := NewCarrierService(api, CarrierOptions{IAccount: "42"}, nil, nil)
	if err != nil {
		t.Fatalf("NewCarrierService() error = %v", err)
	}
	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
