package logic

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/crickpulse/prediction-api/internal/models"
)

func featureInput() models.PredictionInput {
	return models.PredictionInput{
		Team1ID: "ind",
		Team2ID: "aus",
		Venue:   "MCG",
		Format:  models.FormatODI,
	}
}

// chByQuery routes QueryRow calls to canned rows by query text.
func chByQuery(venueRow, h2hRow *MockCHRow) *MockCHConn {
	return &MockCHConn{QueryRowFunc: func(ctx context.Context, query string, args ...interface{}) driver.Row {
		if strings.Contains(query, "venue = ?") {
			return venueRow
		}
		return h2hRow
	}}
}

func TestMatchFeatures(t *testing.T) {
	ch := chByQuery(
		&MockCHRow{data: []any{uint64(8), uint64(10)}},                      // venue: 8 of 10 at MCG
		&MockCHRow{data: []any{uint64(5), uint64(2), uint64(1), uint64(8)}}, // h2h
	)
	rdb := &MockRedis{data: map[string]map[string]string{
		"live_form:odi": {"ind": "0.72", "aus": "0.41"},
	}}

	s := NewFeatureStore(ch, rdb)
	feats, err := s.MatchFeatures(context.Background(), featureInput())
	if err != nil {
		t.Fatalf("MatchFeatures() unexpected error: %v", err)
	}

	if feats.Team1RecentForm != 0.72 || feats.Team2RecentForm != 0.41 {
		t.Errorf("forms = %v/%v, want 0.72/0.41", feats.Team1RecentForm, feats.Team2RecentForm)
	}
	if want := 2*0.8 - 1; feats.VenueBias != want {
		t.Errorf("VenueBias = %v, want %v", feats.VenueBias, want)
	}
	if feats.HeadToHead.Matches != 8 || feats.HeadToHead.Team1Wins != 5 {
		t.Errorf("HeadToHead = %+v, want 8 matches with 5 team1 wins", feats.HeadToHead)
	}
	if feats.Coverage != 1.0 {
		t.Errorf("Coverage = %v, want 1.0 with every signal backed", feats.Coverage)
	}
}

func TestMatchFeaturesDegradesToNeutral(t *testing.T) {
	// No form data, venue sample too small, no prior meetings.
	ch := chByQuery(
		&MockCHRow{data: []any{uint64(1), uint64(2)}},
		&MockCHRow{data: []any{uint64(0), uint64(0), uint64(0), uint64(0)}},
	)
	rdb := &MockRedis{}

	s := NewFeatureStore(ch, rdb)
	feats, err := s.MatchFeatures(context.Background(), featureInput())
	if err != nil {
		t.Fatalf("MatchFeatures() unexpected error: %v", err)
	}

	if feats.Team1RecentForm != 0.5 || feats.Team2RecentForm != 0.5 {
		t.Errorf("forms = %v/%v, want neutral 0.5", feats.Team1RecentForm, feats.Team2RecentForm)
	}
	if feats.VenueBias != 0 {
		t.Errorf("VenueBias = %v, want 0 below the venue sample floor", feats.VenueBias)
	}
	if feats.Coverage != 0 {
		t.Errorf("Coverage = %v, want 0 with no signal backed", feats.Coverage)
	}
}

func TestMatchFeaturesFailures(t *testing.T) {
	t.Run("redis failure", func(t *testing.T) {
		ch := chByQuery(&MockCHRow{}, &MockCHRow{})
		s := NewFeatureStore(ch, &MockRedis{err: errors.New("redis down")})
		if _, err := s.MatchFeatures(context.Background(), featureInput()); err == nil {
			t.Error("MatchFeatures() expected error on redis failure")
		}
	})

	t.Run("malformed form value", func(t *testing.T) {
		ch := chByQuery(&MockCHRow{}, &MockCHRow{})
		rdb := &MockRedis{data: map[string]map[string]string{
			"live_form:odi": {"ind": "not-a-number"},
		}}
		s := NewFeatureStore(ch, rdb)
		if _, err := s.MatchFeatures(context.Background(), featureInput()); err == nil {
			t.Error("MatchFeatures() expected error on malformed form")
		}
	})

	t.Run("clickhouse failure", func(t *testing.T) {
		ch := chByQuery(&MockCHRow{err: errors.New("clickhouse down")}, &MockCHRow{})
		s := NewFeatureStore(ch, &MockRedis{})
		if _, err := s.MatchFeatures(context.Background(), featureInput()); err == nil {
			t.Error("MatchFeatures() expected error on clickhouse failure")
		}
	})
}
