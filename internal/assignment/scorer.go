package assignment

import (
	"github.com/google/uuid"

	"github.com/numdinkushi/vunalet-backend/pkg/geo"
	"github.com/numdinkushi/vunalet-backend/pkg/types"
)

const (
	// maxWorkload is the pending-order count at which a dispatcher's
	// workload factor bottoms out at zero.
	maxWorkload = 10
	// proximityCutoffKm is the distance at which the proximity factor
	// reaches zero.
	proximityCutoffKm = 50.0
	// avgTimeCeilingMinutes is the average delivery time at which the
	// speed component of the performance factor reaches zero.
	avgTimeCeilingMinutes = 120.0

	// Defaults for dispatchers with no recorded history. The completion
	// rate and rating defaults are placeholders until real ratings and
	// delivery-duration aggregates exist.
	defaultCompletionRate = 0.8
	defaultCustomerRating = 4.0
	missingAvgTimeScore   = 0.5

	offlineAvailabilityScore = 0.3
)

// Weights distributes the four scoring factors. They should sum to 1.0;
// Config.Load enforces that for the env-driven values.
type Weights struct {
	Workload     float64
	Proximity    float64
	Performance  float64
	Availability float64
}

// DefaultWeights is the reference weighting.
var DefaultWeights = Weights{
	Workload:     0.4,
	Proximity:    0.3,
	Performance:  0.2,
	Availability: 0.1,
}

// EnhancedWorkload is the per-dispatcher read model scored by the sweep.
// It is computed fresh on every run and never persisted; pending counts
// shift as orders are assigned within a single sweep.
type EnhancedWorkload struct {
	DispatcherID       uuid.UUID
	PendingOrders      int
	TotalOrders        int
	CompletionRate     *float64
	CustomerRating     *float64
	AvgDeliveryMinutes *float64
	Online             bool
	Coordinates        *types.Coordinates
}

// Score rates a dispatcher against an order pickup point, returning a value
// in [0,1]. A nil pickup or unknown dispatcher position leaves the proximity
// factor at its neutral best so missing location data never penalizes.
func Score(d EnhancedWorkload, pickup *types.Coordinates, w Weights) float64 {
	return w.Workload*workloadScore(d) +
		w.Proximity*proximityScore(d, pickup) +
		w.Performance*performanceScore(d) +
		w.Availability*availabilityScore(d)
}

func workloadScore(d EnhancedWorkload) float64 {
	score := 1 - float64(d.PendingOrders)/maxWorkload
	if score < 0 {
		return 0
	}
	return score
}

func proximityScore(d EnhancedWorkload, pickup *types.Coordinates) float64 {
	if d.Coordinates == nil || pickup == nil {
		return 1
	}
	distance := geo.DistanceKm(d.Coordinates.Lat, d.Coordinates.Lng, pickup.Lat, pickup.Lng)
	score := 1 - distance/proximityCutoffKm
	if score < 0 {
		return 0
	}
	return score
}

func performanceScore(d EnhancedWorkload) float64 {
	completion := defaultCompletionRate
	if d.CompletionRate != nil {
		completion = *d.CompletionRate
	}
	rating := defaultCustomerRating
	if d.CustomerRating != nil {
		rating = *d.CustomerRating
	}

	timeScore := missingAvgTimeScore
	if d.AvgDeliveryMinutes != nil {
		timeScore = 1 - *d.AvgDeliveryMinutes/avgTimeCeilingMinutes
		if timeScore < 0 {
			timeScore = 0
		}
	}

	return 0.4*completion + 0.3*(rating/5.0) + 0.3*timeScore
}

func availabilityScore(d EnhancedWorkload) float64 {
	if d.Online {
		return 1
	}
	return offlineAvailabilityScore
}
