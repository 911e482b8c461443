package progression

import (
	"errors"
	"testing"

	"github.com/julianstephens/studywith/internal/constants"
	"github.com/julianstephens/studywith/internal/models"
	"github.com/julianstephens/studywith/internal/storage"
)

func TestNewEngineDefaults(t *testing.T) {
	e, repo := newTestEngine(t)

	st := e.State()
	if st.Points != 0 || st.Stage != 1 || st.Scrolls != 0 {
		t.Errorf("unexpected fresh state: %+v", st)
	}
	if e.TotalPower() != 32.0 {
		t.Errorf("fresh total power = %v, want 32.0", e.TotalPower())
	}
	if repo.saves != 0 {
		t.Errorf("loading should not write, got %d saves", repo.saves)
	}
}

func TestNewEngineLoadFailureStartsFresh(t *testing.T) {
	repo := &memRepo{loadErr: errors.New("unexpected end of JSON input")}
	e := NewEngine(repo, WithRand(&seqRand{vals: []float64{0.5}}))

	if st := e.State(); st.Stage != 1 || len(st.Inventory) != 3 {
		t.Errorf("expected default state, got %+v", st)
	}
}

func TestNewEngineMergesPartialRecord(t *testing.T) {
	points, stage, scrolls := 55, 0, -3
	enh := 2
	repo := &memRepo{rec: &models.ProgressionRecord{
		Points:  &points,
		Stage:   &stage,
		Scrolls: &scrolls,
		Inventory: map[constants.Slot]models.EquipmentRecord{
			constants.SlotPencil: {Enhancement: &enh},
		},
	}}
	e := NewEngine(repo, WithRand(&seqRand{vals: []float64{0.5}}))

	st := e.State()
	if st.Points != 55 || st.Stage != 1 || st.Scrolls != 0 {
		t.Errorf("counters not merged and clamped: %+v", st)
	}
	if p := st.Inventory[constants.SlotPencil]; p.BasePower != 7 || p.Enhancement != 2 {
		t.Errorf("pencil not merged: %+v", p)
	}
	if b := st.Inventory[constants.SlotBook]; b.BasePower != 10 || b.Enhancement != 0 {
		t.Errorf("book should be default: %+v", b)
	}
}

func TestGrantPointsFromSession(t *testing.T) {
	e, repo := newTestEngine(t)

	if got := e.GrantPointsFromSession(0, 0, 25); got != 0 {
		t.Errorf("empty session earned %d", got)
	}
	if repo.saves != 0 {
		t.Error("empty session should not persist")
	}

	if got := e.GrantPointsFromSession(50, 2, 25); got != 18 {
		t.Errorf("earned %d, want 18", got)
	}
	if got := e.State().Points; got != 18 {
		t.Errorf("points = %d, want 18", got)
	}
	if repo.saves != 1 || *repo.rec.Points != 18 {
		t.Errorf("grant not persisted: saves=%d", repo.saves)
	}
}

func TestAddPoints(t *testing.T) {
	e, _ := newTestEngine(t)

	if e.AddPoints(0) || e.AddPoints(-5) {
		t.Error("non-positive amounts must fail")
	}
	if !e.AddPoints(40) {
		t.Fatal("AddPoints(40) failed")
	}
	if got := e.State().Points; got != 40 {
		t.Errorf("points = %d, want 40", got)
	}
}

func TestBuyScroll(t *testing.T) {
	tests := []struct {
		name        string
		points      int
		quantity    int
		wantOK      bool
		wantPoints  int
		wantScrolls int
	}{
		{"not enough points", 100, 3, false, 100, 0},
		{"exact points", 120, 3, true, 0, 3},
		{"zero quantity", 120, 0, false, 120, 0},
		{"negative quantity", 120, -1, false, 120, 0},
		{"leftover points", 95, 2, true, 15, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			e.AddPoints(tt.points)

			if got := e.BuyScroll(tt.quantity, constants.DefaultScrollCost); got != tt.wantOK {
				t.Errorf("BuyScroll() = %v, want %v", got, tt.wantOK)
			}
			st := e.State()
			if st.Points != tt.wantPoints || st.Scrolls != tt.wantScrolls {
				t.Errorf("points=%d scrolls=%d, want %d and %d", st.Points, st.Scrolls, tt.wantPoints, tt.wantScrolls)
			}
		})
	}
}

func TestEnhanceWithoutScrolls(t *testing.T) {
	e, repo := newTestEngine(t, 0.0)

	if res := e.Enhance(constants.SlotBook); res != nil {
		t.Errorf("expected nil result with no scrolls, got %+v", res)
	}
	if repo.saves != 0 {
		t.Error("failed enhance should not persist")
	}
}

func TestEnhanceUnknownSlot(t *testing.T) {
	e, _ := newTestEngine(t, 0.0)
	e.AddPoints(40)
	e.BuyScroll(1, 40)

	if res := e.Enhance("sword"); res != nil {
		t.Errorf("expected nil for unknown slot, got %+v", res)
	}
	if e.State().Scrolls != 1 {
		t.Error("unknown slot must not consume a scroll")
	}
	if rates := e.EnhanceRates("sword"); rates != (models.EnhanceRates{}) {
		t.Errorf("expected zero rates, got %+v", rates)
	}
}

func TestEnhanceOutcomes(t *testing.T) {
	tests := []struct {
		name           string
		level          int
		rolls          []float64
		wantSuccess    bool
		wantAfter      int
		wantDowngraded bool
		wantRate       float64
	}{
		{"success at level 0", 0, []float64{0.1}, true, 1, false, 90.0},
		{"roll just under rate succeeds", 5, []float64{0.49}, true, 6, false, 50.0},
		{"failure at level 0 never downgrades", 0, []float64{0.95, 0.0}, false, 0, false, 90.0},
		{"zero downgrade rate ignores a zero roll", 1, []float64{0.95, 0.0}, false, 1, false, 82.0},
		{"failure with downgrade", 5, []float64{0.9, 0.05}, false, 4, true, 50.0},
		{"failure without downgrade", 5, []float64{0.9, 0.5}, false, 5, false, 50.0},
		{"floor rate", 12, []float64{0.2}, false, 12, false, 15.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, scrolls := 0, 2
			level := tt.level
			repo := &memRepo{rec: &models.ProgressionRecord{
				Points:  &points,
				Scrolls: &scrolls,
				Inventory: map[constants.Slot]models.EquipmentRecord{
					constants.SlotLaptop: {Enhancement: &level},
				},
			}}
			rolls := append(append([]float64{}, tt.rolls...), 0.99)
			e := NewEngine(repo, WithRand(&seqRand{vals: rolls}))

			res := e.Enhance(constants.SlotLaptop)
			if res == nil {
				t.Fatal("Enhance returned nil")
			}
			if res.Success != tt.wantSuccess || res.AfterLevel != tt.wantAfter || res.Downgraded != tt.wantDowngraded {
				t.Errorf("got %+v", res)
			}
			if res.BeforeLevel != tt.level || res.Slot != constants.SlotLaptop {
				t.Errorf("wrong before/slot: %+v", res)
			}
			if !approx(res.SuccessRate, tt.wantRate) {
				t.Errorf("success rate = %v, want %v", res.SuccessRate, tt.wantRate)
			}
			if e.State().Scrolls != 1 {
				t.Errorf("scrolls = %d, want exactly one consumed", e.State().Scrolls)
			}
			if got := *repo.rec.Inventory[constants.SlotLaptop].Enhancement; got != tt.wantAfter {
				t.Errorf("persisted enhancement = %d, want %d", got, tt.wantAfter)
			}
		})
	}
}

func TestEnhanceAlwaysConsumesOneScroll(t *testing.T) {
	e, _ := newTestEngine(t, 0.1, 0.99, 0.99, 0.0, 0.5, 0.95, 0.01)
	e.AddPoints(400)
	e.BuyScroll(10, 40)

	for i := 10; i > 0; i-- {
		if e.State().Scrolls != i {
			t.Fatalf("scrolls = %d before attempt, want %d", e.State().Scrolls, i)
		}
		if res := e.Enhance(constants.Slots[i%3]); res == nil {
			t.Fatalf("attempt with %d scrolls returned nil", i)
		}
	}
	if e.State().Scrolls != 0 {
		t.Errorf("scrolls = %d, want 0", e.State().Scrolls)
	}
	if e.Enhance(constants.SlotBook) != nil {
		t.Error("enhance with no scrolls left should fail")
	}
}

func TestEnhanceRates(t *testing.T) {
	e, _ := newTestEngine(t)
	rates := e.EnhanceRates(constants.SlotBook)
	if rates.Success != 90.0 || rates.Downgrade != 0.0 {
		t.Errorf("level 0 rates = %+v", rates)
	}

	level := 5
	repo := &memRepo{rec: &models.ProgressionRecord{
		Inventory: map[constants.Slot]models.EquipmentRecord{constants.SlotBook: {Enhancement: &level}},
	}}
	e = NewEngine(repo)
	rates = e.EnhanceRates(constants.SlotBook)
	if rates.Success != 50.0 || rates.Downgrade != 12.0 {
		t.Errorf("level 5 rates = %+v", rates)
	}
}

func TestTryAutoAdvance(t *testing.T) {
	e, repo := newTestEngine(t)

	stage, ok := e.TryAutoAdvance()
	if !ok || stage != 2 {
		t.Fatalf("TryAutoAdvance() = (%d, %v), want (2, true)", stage, ok)
	}
	if repo.saves != 1 {
		t.Errorf("expected one save, got %d", repo.saves)
	}

	if _, ok := e.TryAutoAdvance(); ok {
		t.Error("second advance should not move with 32 power")
	}
	if repo.saves != 1 {
		t.Error("no-op advance should not persist")
	}
}

func TestTryAutoAdvanceMultipleStages(t *testing.T) {
	level := 10
	repo := &memRepo{rec: &models.ProgressionRecord{
		Inventory: map[constants.Slot]models.EquipmentRecord{constants.SlotLaptop: {Enhancement: &level}},
	}}
	e := NewEngine(repo)

	// 10 + 7 + 45 = 62 power reaches the stage 5 requirement of 60
	stage, ok := e.TryAutoAdvance()
	if !ok || stage != 5 {
		t.Errorf("TryAutoAdvance() = (%d, %v), want (5, true)", stage, ok)
	}
}

func TestPersistFailureIsRecorded(t *testing.T) {
	e, repo := newTestEngine(t)
	repo.saveErr = errDiskFull

	if !e.AddPoints(10) {
		t.Fatal("AddPoints should succeed in memory despite write failure")
	}
	if e.State().Points != 10 {
		t.Error("in-memory change was rolled back")
	}

	err := e.LastPersistError()
	var perr *storage.PersistError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *storage.PersistError, got %v", err)
	}
	if !errors.Is(err, errDiskFull) || perr.Op != "save progression" {
		t.Errorf("unexpected persist error: %+v", perr)
	}

	repo.saveErr = nil
	e.AddPoints(1)
	if e.LastPersistError() != nil {
		t.Error("persist error should clear after a successful write")
	}
}

func TestProgressionRoundTrip(t *testing.T) {
	e, repo := newTestEngine(t, 0.0)
	e.AddPoints(200)
	e.BuyScroll(3, 40)
	e.Enhance(constants.SlotBook)
	e.Enhance(constants.SlotPencil)
	e.TryAutoAdvance()
	want := e.State()

	reloaded := NewEngine(repo).State()
	if reloaded.Points != want.Points || reloaded.Stage != want.Stage || reloaded.Scrolls != want.Scrolls {
		t.Errorf("counters differ: got %+v, want %+v", reloaded, want)
	}
	for _, slot := range constants.Slots {
		if reloaded.Inventory[slot] != want.Inventory[slot] {
			t.Errorf("%s differs: got %+v, want %+v", slot, reloaded.Inventory[slot], want.Inventory[slot])
		}
	}
}

func TestSnapshot(t *testing.T) {
	e, _ := newTestEngine(t)
	e.AddPoints(7)

	snap := e.Snapshot()
	if snap.Points != 7 || snap.Stage != 1 || snap.Scrolls != 0 {
		t.Errorf("unexpected counters: %+v", snap)
	}
	if snap.TotalPower != 32.0 || snap.NextStageRequirement != 30 {
		t.Errorf("power=%v requirement=%d", snap.TotalPower, snap.NextStageRequirement)
	}
	if s := snap.Inventory[constants.SlotLaptop]; s.Level != 0 || s.Power != 15 || s.BasePower != 15 {
		t.Errorf("laptop snapshot = %+v", s)
	}
}
