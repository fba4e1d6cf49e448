package worker

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/crickpulse/prediction-api/internal/models"
)

// MockRatingStore implements RatingStore with an in-memory map
type MockRatingStore struct {
	mu      sync.Mutex
	ratings map[string]*models.TeamRating
	upserts int
}

func NewMockRatingStore() *MockRatingStore {
	return &MockRatingStore{ratings: make(map[string]*models.TeamRating)}
}

func (m *MockRatingStore) key(teamID string, format models.MatchFormat) string {
	return teamID + "|" + string(format)
}

func (m *MockRatingStore) GetOrInitRating(ctx context.Context, teamID string, format models.MatchFormat) (*models.TeamRating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.ratings[m.key(teamID, format)]; ok {
		clone := *r
		return &clone, nil
	}
	return models.NewTeamRating(teamID, format), nil
}

func (m *MockRatingStore) UpsertRating(ctx context.Context, rating *models.TeamRating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *rating
	m.ratings[m.key(rating.TeamID, rating.Format)] = &clone
	m.upserts++
	return nil
}

func (m *MockRatingStore) get(teamID string, format models.MatchFormat) *models.TeamRating {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ratings[m.key(teamID, format)]
}

// MockFormWriter implements FormWriter
type MockFormWriter struct {
	mu     sync.Mutex
	fields map[string]map[string]string
}

func NewMockFormWriter() *MockFormWriter {
	return &MockFormWriter{fields: make(map[string]map[string]string)}
}

func (m *MockFormWriter) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fields[key] == nil {
		m.fields[key] = make(map[string]string)
	}
	for i := 0; i+1 < len(values); i += 2 {
		m.fields[key][values[i].(string)] = values[i+1].(string)
	}
	return redis.NewIntCmd(ctx)
}

func testPool(store *MockRatingStore, forms *MockFormWriter) *Pool {
	return NewPool(PoolConfig{
		WorkerCount: 1,
		QueueSize:   10,
		Ratings:     store,
		Forms:       forms,
		Logger:      zap.NewNop(),
	})
}

func TestSettleWin(t *testing.T) {
	store := NewMockRatingStore()
	forms := NewMockFormWriter()
	p := testPool(store, forms)

	result := &models.MatchResult{
		MatchID:  "m1",
		Team1ID:  "ind",
		Team2ID:  "aus",
		Format:   models.FormatODI,
		Outcome:  models.OutcomeTeam1Win,
		PlayedAt: time.Now().UTC(),
	}
	if err := p.settle(result); err != nil {
		t.Fatalf("settle() unexpected error: %v", err)
	}

	r1 := store.get("ind", models.FormatODI)
	r2 := store.get("aus", models.FormatODI)
	if r1 == nil || r2 == nil {
		t.Fatal("settle() did not persist both ratings")
	}

	// Even teams: the winner gains K/2 and the loser mirrors it.
	if want := models.InitialRating + DefaultKFactor*0.5; math.Abs(r1.EloRating-want) > 1e-9 {
		t.Errorf("winner Elo = %v, want %v", r1.EloRating, want)
	}
	if math.Abs((r1.EloRating-models.InitialRating)+(r2.EloRating-models.InitialRating)) > 1e-9 {
		t.Error("Elo deltas not zero-sum")
	}

	if r1.Wins != 1 || r1.MatchesPlayed != 1 || r2.Losses != 1 {
		t.Errorf("tallies wrong: winner %+v, loser %+v", r1, r2)
	}
	if !r1.Consistent() || !r2.Consistent() {
		t.Error("settled ratings violate matches = wins+losses+draws")
	}
	if r1.FormRating <= 0.5 || r2.FormRating >= 0.5 {
		t.Errorf("form ratings = %v/%v, want winner above and loser below neutral", r1.FormRating, r2.FormRating)
	}
	if r1.PeakRating != r1.EloRating {
		t.Errorf("PeakRating = %v, want updated to %v", r1.PeakRating, r1.EloRating)
	}

	if got := forms.fields["live_form:odi"]["ind"]; got == "" {
		t.Error("winner form not published to live_form hash")
	}
}

func TestSettleDraw(t *testing.T) {
	store := NewMockRatingStore()
	p := testPool(store, NewMockFormWriter())

	result := &models.MatchResult{
		Team1ID: "ind",
		Team2ID: "aus",
		Format:  models.FormatTest,
		Outcome: models.OutcomeDraw,
	}
	if err := p.settle(result); err != nil {
		t.Fatalf("settle() unexpected error: %v", err)
	}

	r1 := store.get("ind", models.FormatTest)
	if r1.Draws != 1 || r1.Wins != 0 || r1.Losses != 0 {
		t.Errorf("draw tallies wrong: %+v", r1)
	}
	// Even teams drawing should not move Elo.
	if math.Abs(r1.EloRating-models.InitialRating) > 1e-9 {
		t.Errorf("Elo = %v after even draw, want unchanged", r1.EloRating)
	}
}

func TestSettleMarginScalesDelta(t *testing.T) {
	store := NewMockRatingStore()
	p := testPool(store, NewMockFormWriter())

	narrow := &models.MatchResult{Team1ID: "a", Team2ID: "b", Format: models.FormatT20, Outcome: models.OutcomeTeam1Win, Margin: 0}
	if err := p.settle(narrow); err != nil {
		t.Fatal(err)
	}
	narrowGain := store.get("a", models.FormatT20).EloRating - models.InitialRating

	crushing := &models.MatchResult{Team1ID: "c", Team2ID: "d", Format: models.FormatT20, Outcome: models.OutcomeTeam1Win, Margin: 1}
	if err := p.settle(crushing); err != nil {
		t.Fatal(err)
	}
	crushingGain := store.get("c", models.FormatT20).EloRating - models.InitialRating

	if crushingGain <= narrowGain {
		t.Errorf("crushing win gain %v not above narrow win gain %v", crushingGain, narrowGain)
	}
}

func TestEnqueueLoadShedding(t *testing.T) {
	p := NewPool(PoolConfig{
		WorkerCount: 1,
		QueueSize:   1,
		Ratings:     NewMockRatingStore(),
		Logger:      zap.NewNop(),
	})
	// Not started: nothing drains the queue.
	p.ctx, p.cancel = context.WithCancel(context.Background())
	defer p.cancel()

	result := &models.MatchResult{Team1ID: "a", Team2ID: "b", Format: models.FormatT20, Outcome: models.OutcomeTeam1Win}
	if !p.Enqueue(result) {
		t.Fatal("first Enqueue() rejected with empty queue")
	}
	if p.Enqueue(result) {
		t.Error("Enqueue() accepted result beyond queue capacity")
	}
	if depth := p.QueueDepth(); depth != 1 {
		t.Errorf("QueueDepth() = %d, want 1", depth)
	}
}

func TestPoolProcessesQueuedResults(t *testing.T) {
	store := NewMockRatingStore()
	p := testPool(store, NewMockFormWriter())

	p.Start(context.Background())
	ok := p.Enqueue(&models.MatchResult{
		Team1ID: "ind", Team2ID: "aus",
		Format: models.FormatODI, Outcome: models.OutcomeTeam1Win,
	})
	if !ok {
		t.Fatal("Enqueue() rejected result")
	}

	// Stop drains the queue before returning.
	p.Stop()

	if store.get("ind", models.FormatODI) == nil {
		t.Error("queued result was not settled before shutdown")
	}
}
