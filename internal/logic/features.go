package logic

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/redis/go-redis/v9"

	"github.com/crickpulse/prediction-api/internal/models"
)

// minVenueSample is the number of matches at a venue below which the venue
// signal is treated as absent.
const minVenueSample = 3

// FeatureStore sources the contextual signals for the feature ensemble:
// live form from Redis, venue and head-to-head history from ClickHouse.
// It implements engine.FeatureSource.
type FeatureStore struct {
	ch    driver.Conn
	redis RedisClient
}

func NewFeatureStore(ch driver.Conn, redis RedisClient) *FeatureStore {
	return &FeatureStore{ch: ch, redis: redis}
}

// MatchFeatures gathers the signals for one fixture. Individual signals that
// have no backing data degrade to neutral and lower the coverage; genuine
// store failures are returned as errors so the ensemble can fall back.
func (s *FeatureStore) MatchFeatures(ctx context.Context, input models.PredictionInput) (*models.MatchFeatures, error) {
	feats := &models.MatchFeatures{
		Team1RecentForm: 0.5,
		Team2RecentForm: 0.5,
	}

	var covered float64

	form1, ok, err := s.liveForm(ctx, input.Team1ID, input.Format)
	if err != nil {
		return nil, err
	}
	if ok {
		feats.Team1RecentForm = form1
		covered++
	}

	form2, ok, err := s.liveForm(ctx, input.Team2ID, input.Format)
	if err != nil {
		return nil, err
	}
	if ok {
		feats.Team2RecentForm = form2
		covered++
	}

	if input.Venue != "" {
		bias, ok, err := s.venueBias(ctx, input)
		if err != nil {
			return nil, err
		}
		if ok {
			feats.VenueBias = bias
			covered++
		}
	}

	h2h, err := s.headToHead(ctx, input)
	if err != nil {
		return nil, err
	}
	feats.HeadToHead = h2h
	if h2h.Matches > 0 {
		covered++
	}

	feats.Coverage = covered / 4
	return feats, nil
}

// liveForm reads the recency-weighted form a settled-result worker maintains
// in Redis. A missing field means the team has no recent matches, not an
// infrastructure failure.
func (s *FeatureStore) liveForm(ctx context.Context, teamID string, format models.MatchFormat) (float64, bool, error) {
	raw, err := s.redis.HGet(ctx, "live_form:"+string(format), teamID).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("live form lookup failed: %w", err)
	}

	form, err := strconv.ParseFloat(raw, 64)
	if err != nil || form < 0 || form > 1 {
		return 0, false, fmt.Errorf("malformed live form %q for %s", raw, teamID)
	}
	return form, true, nil
}

// venueBias measures team1's record at the venue: +1 means team1 has won
// everything played there, -1 the opposite.
func (s *FeatureStore) venueBias(ctx context.Context, input models.PredictionInput) (float64, bool, error) {
	query := `
		SELECT
			countIf((team1_id = ? AND outcome = 'team1_win') OR (team2_id = ? AND outcome = 'team2_win')) AS team1_wins,
			count() AS matches
		FROM match_results
		WHERE venue = ? AND (team1_id = ? OR team2_id = ?)
	`
	var wins, matches uint64
	err := s.ch.QueryRow(ctx, query,
		input.Team1ID, input.Team1ID,
		input.Venue, input.Team1ID, input.Team1ID,
	).Scan(&wins, &matches)
	if err != nil {
		return 0, false, fmt.Errorf("venue query failed: %w", err)
	}

	if matches < minVenueSample {
		return 0, false, nil
	}
	return 2*float64(wins)/float64(matches) - 1, true, nil
}

// headToHead tallies recent meetings between the two sides in this format.
func (s *FeatureStore) headToHead(ctx context.Context, input models.PredictionInput) (models.H2HRecord, error) {
	query := `
		SELECT
			countIf((team1_id = ? AND outcome = 'team1_win') OR (team2_id = ? AND outcome = 'team2_win')) AS team1_wins,
			countIf((team1_id = ? AND outcome = 'team1_win') OR (team2_id = ? AND outcome = 'team2_win')) AS team2_wins,
			countIf(outcome = 'draw') AS draws,
			count() AS matches
		FROM match_results
		WHERE format = ?
		  AND ((team1_id = ? AND team2_id = ?) OR (team1_id = ? AND team2_id = ?))
	`
	var record models.H2HRecord
	var t1, t2, draws, matches uint64
	err := s.ch.QueryRow(ctx, query,
		input.Team1ID, input.Team1ID,
		input.Team2ID, input.Team2ID,
		string(input.Format),
		input.Team1ID, input.Team2ID, input.Team2ID, input.Team1ID,
	).Scan(&t1, &t2, &draws, &matches)
	if err != nil {
		return record, fmt.Errorf("head-to-head query failed: %w", err)
	}

	record.Team1Wins = int(t1)
	record.Team2Wins = int(t2)
	record.Draws = int(draws)
	record.Matches = int(matches)
	return record, nil
}
