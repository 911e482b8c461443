package progression

import (
	"errors"
	"math"
	"testing"

	"github.com/julianstephens/studywith/internal/models"
	"github.com/julianstephens/studywith/internal/storage"
)

// seqRand replays a fixed sequence of rolls, cycling when exhausted.
type seqRand struct {
	vals []float64
	i    int
}

func (r *seqRand) Float64() float64 {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

// memRepo keeps the last saved record in memory.
type memRepo struct {
	rec     *models.ProgressionRecord
	loadErr error
	saveErr error
	saves   int
}

func (m *memRepo) LoadProgression() (models.ProgressionRecord, error) {
	if m.loadErr != nil {
		return models.ProgressionRecord{}, m.loadErr
	}
	if m.rec == nil {
		return models.ProgressionRecord{}, storage.ErrNoData
	}
	return *m.rec, nil
}

func (m *memRepo) SaveProgression(rec models.ProgressionRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.rec = &rec
	return nil
}

func (m *memRepo) GetConfigPath() string {
	return "mem"
}

var errDiskFull = errors.New("disk full")

func newTestEngine(t *testing.T, rolls ...float64) (*Engine, *memRepo) {
	t.Helper()
	if len(rolls) == 0 {
		rolls = []float64{0.5}
	}
	repo := &memRepo{}
	return NewEngine(repo, WithRand(&seqRand{vals: rolls})), repo
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
