package matching

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConflicts struct {
	conflict bool
	err      error
	calls    int
}

func (s *stubConflicts) HasAcceptedConflict(context.Context, uuid.UUID, time.Time) (bool, error) {
	s.calls++
	return s.conflict, s.err
}

func TestDistanceKm_FiveDegreesLatitude(t *testing.T) {
	d := DistanceKm(Point{Lat: 0, Lng: 0}, Point{Lat: 5, Lng: 0})
	assert.InDelta(t, 555.97, d, 1.0)
}

func TestDistanceKm_NonNegativeAndSymmetric(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		a := Point{Lat: r.Float64()*180 - 90, Lng: r.Float64()*360 - 180}
		b := Point{Lat: r.Float64()*180 - 90, Lng: r.Float64()*360 - 180}
		ab := DistanceKm(a, b)
		ba := DistanceKm(b, a)
		require.GreaterOrEqual(t, ab, 0.0)
		require.InDelta(t, ab, ba, 1e-9)
	}
	assert.Equal(t, 0.0, DistanceKm(Point{Lat: 10, Lng: 10}, Point{Lat: 10, Lng: 10}))
}

func TestSkillScore(t *testing.T) {
	cases := []struct {
		name     string
		worker   []string
		required []string
		want     float64
	}{
		{name: "no requirement", worker: nil, required: nil, want: 100},
		{name: "no requirement ignores worker", worker: []string{"Cook"}, required: []string{}, want: 100},
		{name: "exact", worker: []string{"Barista"}, required: []string{"barista"}, want: 100},
		{name: "half", worker: []string{"Cashier"}, required: []string{"cashier", "Cook"}, want: 50},
		{name: "none", worker: []string{"Driver"}, required: []string{"Cook"}, want: 0},
		{name: "worker tag contains required", worker: []string{"Senior Barista"}, required: []string{"barista"}, want: 100},
		// Known boundary: substring either way over-matches short tags.
		{name: "short tag over-matches", worker: []string{"Bar"}, required: []string{"Barista"}, want: 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, SkillScore(tc.worker, tc.required), 1e-9)
		})
	}
}

func TestLocationScore_Bands(t *testing.T) {
	origin := Point{Lat: 0, Lng: 0}
	kmPerDeg := DistanceKm(Point{}, Point{Lat: 1})

	cases := []struct {
		km   float64
		want float64
	}{
		{km: 0, want: 100},
		{km: 4.9, want: 100},
		{km: 9.9, want: 90},
		{km: 19.9, want: 70},
		{km: 29.9, want: 50},
		{km: 49.9, want: 30},
		{km: 60, want: 0},
	}
	for _, tc := range cases {
		p := Point{Lat: tc.km / kmPerDeg}
		assert.Equal(t, tc.want, LocationScore(&origin, &p, DefaultMaxDistanceKm), "km=%.1f", tc.km)
		assert.Equal(t, LocationScore(&origin, &p, DefaultMaxDistanceKm), LocationScore(&p, &origin, DefaultMaxDistanceKm))
	}

	assert.Equal(t, 50.0, LocationScore(nil, &origin, DefaultMaxDistanceKm))
	assert.Equal(t, 50.0, LocationScore(&origin, nil, DefaultMaxDistanceKm))
}

func TestAvailabilityScore_Steps(t *testing.T) {
	assert.Equal(t, 0.0, AvailabilityScore(true, 100))
	assert.Equal(t, 100.0, AvailabilityScore(false, 50))
	assert.Equal(t, 80.0, AvailabilityScore(false, 20))
	assert.Equal(t, 60.0, AvailabilityScore(false, 10))
	assert.Equal(t, 40.0, AvailabilityScore(false, 5))
	assert.Equal(t, 20.0, AvailabilityScore(false, 1))
	assert.Equal(t, 10.0, AvailabilityScore(false, 0))
}

func TestWeightsValidate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())

	err := Weights{Skill: 0.5, Location: 0.5, Rating: 0.5}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidWeights))

	err = Weights{Skill: 1.2, Location: -0.2}.Validate()
	assert.True(t, errors.Is(err, ErrInvalidWeights))

	_, err = NewScorer(Policy{Weights: Weights{Skill: 2}}, nil)
	assert.True(t, errors.Is(err, ErrInvalidWeights))
}

func TestScorer_RatingAndMissingCoordinates(t *testing.T) {
	s, err := NewScorer(DefaultPolicy(), nil)
	require.NoError(t, err)

	site := Point{Lat: 10.77, Lng: 106.70}
	res, err := s.Score(context.Background(),
		Worker{ID: uuid.New(), Rating: 4.5},
		Job{ID: uuid.New(), Site: &site, Start: time.Now(), End: time.Now().Add(time.Hour)},
	)
	require.NoError(t, err)
	assert.Equal(t, 50.0, res.Breakdown.Location)
	assert.InDelta(t, 90.0, res.Breakdown.Rating, 1e-9)
	assert.Equal(t, 100.0, res.Breakdown.Skill)
	assert.Equal(t, 10.0, res.Breakdown.Availability)
	// 100*.4 + 50*.3 + 90*.2 + 10*.1
	assert.InDelta(t, 74.0, res.Total, 1e-9)
}

func TestScorer_ConflictZeroesAvailability(t *testing.T) {
	stub := &stubConflicts{conflict: true}
	s, err := NewScorer(DefaultPolicy(), stub)
	require.NoError(t, err)

	res, err := s.Score(context.Background(), Worker{ID: uuid.New(), Rating: 5, CompletedJobs: 80}, Job{ID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Breakdown.Availability)
	assert.Equal(t, 1, stub.calls)
}

func TestScorer_ConflictCheckFailure(t *testing.T) {
	boom := errors.New("db down")
	s, err := NewScorer(DefaultPolicy(), &stubConflicts{err: boom})
	require.NoError(t, err)

	_, err = s.Score(context.Background(), Worker{ID: uuid.New()}, Job{ID: uuid.New()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestScorer_TotalStaysInRange(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 300; i++ {
		raw := []float64{r.Float64(), r.Float64(), r.Float64(), r.Float64()}
		sum := raw[0] + raw[1] + raw[2] + raw[3]
		w := Weights{Skill: raw[0] / sum, Location: raw[1] / sum, Rating: raw[2] / sum}
		w.Availability = 1 - w.Skill - w.Location - w.Rating
		if w.Availability < 0 {
			w.Availability = 0
		}
		if math.Abs(w.Sum()-1) > weightTolerance {
			continue
		}

		s, err := NewScorer(Policy{Weights: w}, &stubConflicts{conflict: r.Intn(2) == 0})
		require.NoError(t, err)

		wp := Point{Lat: r.Float64()*2 - 1, Lng: r.Float64()*2 - 1}
		jp := Point{Lat: r.Float64()*2 - 1, Lng: r.Float64()*2 - 1}
		res, err := s.Score(context.Background(),
			Worker{ID: uuid.New(), Skills: []string{"cook"}, Location: &wp, Rating: r.Float64() * 5, CompletedJobs: r.Intn(80)},
			Job{ID: uuid.New(), Skills: []string{"cook", "cashier"}, Site: &jp},
		)
		require.NoError(t, err)
		require.GreaterOrEqual(t, res.Total, 0.0)
		require.LessOrEqual(t, res.Total, 100.0)
	}
}
