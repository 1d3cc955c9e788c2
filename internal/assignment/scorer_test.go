package assignment

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/numdinkushi/vunalet-backend/pkg/types"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestScoreStaysWithinUnitInterval(t *testing.T) {
	snapshots := []EnhancedWorkload{
		{DispatcherID: uuid.New(), Online: true},
		{DispatcherID: uuid.New(), PendingOrders: 25, Online: false},
		{
			DispatcherID:       uuid.New(),
			PendingOrders:      3,
			CompletionRate:     floatPtr(1.0),
			CustomerRating:     floatPtr(5.0),
			AvgDeliveryMinutes: floatPtr(15),
			Online:             true,
			Coordinates:        &types.Coordinates{Lat: -33.9249, Lng: 18.4241},
		},
		{
			DispatcherID:       uuid.New(),
			PendingOrders:      10,
			CompletionRate:     floatPtr(0),
			CustomerRating:     floatPtr(0),
			AvgDeliveryMinutes: floatPtr(500),
			Online:             false,
			Coordinates:        &types.Coordinates{Lat: 0, Lng: 0},
		},
	}
	pickup := &types.Coordinates{Lat: -33.9249, Lng: 18.4241}

	for _, snapshot := range snapshots {
		score := Score(snapshot, pickup, DefaultWeights)
		if score < 0 || score > 1 {
			t.Fatalf("score %f out of [0,1] for %+v", score, snapshot)
		}
	}
}

func TestWorkloadScoreBottomsOutAtCapacity(t *testing.T) {
	if got := workloadScore(EnhancedWorkload{PendingOrders: 0}); got != 1 {
		t.Fatalf("idle dispatcher should score 1, got %f", got)
	}
	if got := workloadScore(EnhancedWorkload{PendingOrders: 5}); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("half-loaded dispatcher should score 0.5, got %f", got)
	}
	if got := workloadScore(EnhancedWorkload{PendingOrders: 10}); got != 0 {
		t.Fatalf("dispatcher at capacity should score 0, got %f", got)
	}
	if got := workloadScore(EnhancedWorkload{PendingOrders: 14}); got != 0 {
		t.Fatalf("overloaded dispatcher should score 0, got %f", got)
	}
}

func TestProximityScoreNeutralWhenLocationUnknown(t *testing.T) {
	pickup := &types.Coordinates{Lat: -33.9249, Lng: 18.4241}

	if got := proximityScore(EnhancedWorkload{}, pickup); got != 1 {
		t.Fatalf("unknown dispatcher position should be neutral, got %f", got)
	}
	near := EnhancedWorkload{Coordinates: &types.Coordinates{Lat: -33.9249, Lng: 18.4241}}
	if got := proximityScore(near, nil); got != 1 {
		t.Fatalf("unknown pickup should be neutral, got %f", got)
	}
}

func TestProximityScoreDecaysWithDistance(t *testing.T) {
	pickup := &types.Coordinates{Lat: -33.9249, Lng: 18.4241}

	colocated := EnhancedWorkload{Coordinates: &types.Coordinates{Lat: -33.9249, Lng: 18.4241}}
	if got := proximityScore(colocated, pickup); math.Abs(got-1) > 1e-9 {
		t.Fatalf("co-located dispatcher should score 1, got %f", got)
	}

	// Stellenbosch is roughly 40 km from the Cape Town pickup.
	nearby := EnhancedWorkload{Coordinates: &types.Coordinates{Lat: -33.9321, Lng: 18.8602}}
	got := proximityScore(nearby, pickup)
	if got <= 0 || got >= 0.5 {
		t.Fatalf("40 km away should land between 0 and 0.5, got %f", got)
	}

	// Johannesburg is far beyond the 50 km cutoff.
	distant := EnhancedWorkload{Coordinates: &types.Coordinates{Lat: -26.2041, Lng: 28.0473}}
	if got := proximityScore(distant, pickup); got != 0 {
		t.Fatalf("dispatcher beyond cutoff should score 0, got %f", got)
	}
}

func TestPerformanceScoreDefaults(t *testing.T) {
	// No history at all: 0.4*0.8 + 0.3*(4.0/5) + 0.3*0.5.
	got := performanceScore(EnhancedWorkload{})
	if math.Abs(got-0.71) > 1e-9 {
		t.Fatalf("default performance should be 0.71, got %f", got)
	}
}

func TestPerformanceScoreUsesRealAggregates(t *testing.T) {
	snapshot := EnhancedWorkload{
		CompletionRate:     floatPtr(1.0),
		CustomerRating:     floatPtr(5.0),
		AvgDeliveryMinutes: floatPtr(60),
	}
	// 0.4*1 + 0.3*1 + 0.3*(1 - 60/120).
	got := performanceScore(snapshot)
	if math.Abs(got-0.85) > 1e-9 {
		t.Fatalf("expected 0.85, got %f", got)
	}

	slow := EnhancedWorkload{AvgDeliveryMinutes: floatPtr(300)}
	got = performanceScore(slow)
	// Speed component clamps to 0: 0.4*0.8 + 0.3*0.8 + 0.
	if math.Abs(got-0.56) > 1e-9 {
		t.Fatalf("expected 0.56 for very slow dispatcher, got %f", got)
	}
}

func TestAvailabilityScore(t *testing.T) {
	if got := availabilityScore(EnhancedWorkload{Online: true}); got != 1 {
		t.Fatalf("online dispatcher should score 1, got %f", got)
	}
	if got := availabilityScore(EnhancedWorkload{Online: false}); got != offlineAvailabilityScore {
		t.Fatalf("offline dispatcher should score %f, got %f", offlineAvailabilityScore, got)
	}
}

func TestScoreOrdersLessLoadedDispatcherFirst(t *testing.T) {
	idle := EnhancedWorkload{DispatcherID: uuid.New(), PendingOrders: 0, Online: true}
	busy := EnhancedWorkload{DispatcherID: uuid.New(), PendingOrders: 8, Online: true}

	if Score(idle, nil, DefaultWeights) <= Score(busy, nil, DefaultWeights) {
		t.Fatal("idle dispatcher must outscore a busy one, all else equal")
	}
}
