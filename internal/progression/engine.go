package progression

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/julianstephens/studywith/internal/constants"
	"github.com/julianstephens/studywith/internal/logger"
	"github.com/julianstephens/studywith/internal/models"
	"github.com/julianstephens/studywith/internal/storage"
)

// RandSource yields uniform values in [0, 1).
type RandSource interface {
	Float64() float64
}

// Repository is the slice of storage.Provider the engine needs.
type Repository interface {
	LoadProgression() (models.ProgressionRecord, error)
	SaveProgression(models.ProgressionRecord) error
	GetConfigPath() string
}

// Engine owns points, scrolls, stage and inventory. Every mutating call
// persists the whole state; a failed write is logged and kept for
// LastPersistError but never undoes the in-memory change.
type Engine struct {
	mu      sync.Mutex
	repo    Repository
	rng     RandSource
	state   models.ProgressionState
	battle  *models.BattleState
	persist error
}

type Option func(*Engine)

// WithRand replaces the default time-seeded generator.
func WithRand(r RandSource) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

// NewEngine loads the saved state from repo. Missing or unreadable state
// starts a fresh game.
func NewEngine(repo Repository, opts ...Option) *Engine {
	seed := uint64(time.Now().UnixNano())
	e := &Engine{
		repo: repo,
		rng:  rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state = e.load()
	return e
}

func defaultState() models.ProgressionState {
	return models.ProgressionState{
		Points:    0,
		Stage:     1,
		Scrolls:   0,
		Inventory: DefaultInventory(),
	}
}

func (e *Engine) load() models.ProgressionState {
	rec, err := e.repo.LoadProgression()
	if err != nil {
		if !errors.Is(err, storage.ErrNoData) {
			logger.Warn("Failed to load progression, starting fresh", "path", e.repo.GetConfigPath(), "error", err)
		}
		return defaultState()
	}
	return FromRecord(rec)
}

// FromRecord merges a possibly partial record onto the defaults.
func FromRecord(rec models.ProgressionRecord) models.ProgressionState {
	st := defaultState()
	if rec.Points != nil {
		st.Points = max(*rec.Points, 0)
	}
	if rec.Stage != nil {
		st.Stage = max(*rec.Stage, 1)
	}
	if rec.Scrolls != nil {
		st.Scrolls = max(*rec.Scrolls, 0)
	}
	st.Inventory = MergeInventory(rec.Inventory)
	return st
}

// save must be called with e.mu held.
func (e *Engine) save() {
	if err := e.repo.SaveProgression(e.state.Record()); err != nil {
		perr := &storage.PersistError{Op: "save progression", Path: e.repo.GetConfigPath(), Err: err}
		logger.PersistFailure(perr, "stage", e.state.Stage)
		e.persist = perr
		return
	}
	e.persist = nil
}

// LastPersistError returns the most recent write failure, or nil once a
// later write succeeded.
func (e *Engine) LastPersistError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persist
}

// State returns a deep copy of the current progression state.
func (e *Engine) State() models.ProgressionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.state
	st.Inventory = make(map[constants.Slot]models.Equipment, len(e.state.Inventory))
	for slot, item := range e.state.Inventory {
		st.Inventory[slot] = item
	}
	return st
}

// AddPoints grants points outside of a session (test mode). It fails for
// non-positive amounts.
func (e *Engine) AddPoints(amount int) bool {
	if amount <= 0 {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Points += amount
	e.save()
	return true
}

// GrantPointsFromSession awards points for a finished session and returns
// how many were earned. Nothing changes when the session had neither
// focus minutes nor completed cycles.
func (e *Engine) GrantPointsFromSession(focusMinutes, completedCycles, focusDuration int) int {
	if focusMinutes <= 0 && completedCycles <= 0 {
		return 0
	}
	earned := PointsForSession(focusMinutes, completedCycles, focusDuration)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Points += earned
	e.save()
	return earned
}

// BuyScroll trades quantity × costPerScroll points for scrolls. It fails
// without changing anything when quantity is not positive or points are short.
func (e *Engine) BuyScroll(quantity, costPerScroll int) bool {
	if quantity <= 0 {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	cost := quantity * costPerScroll
	if e.state.Points < cost {
		return false
	}
	e.state.Points -= cost
	e.state.Scrolls += quantity
	e.save()
	return true
}

// EnhanceRates reports the current success and downgrade odds for slot in
// percent. Unknown slots report zeros.
func (e *Engine) EnhanceRates(slot constants.Slot) models.EnhanceRates {
	e.mu.Lock()
	defer e.mu.Unlock()

	item, ok := e.state.Inventory[slot]
	if !ok {
		return models.EnhanceRates{}
	}
	return models.EnhanceRates{
		Success:   round(SuccessRate(item.Enhancement)*100, 1),
		Downgrade: round(DowngradeRate(item.Enhancement)*100, 1),
	}
}

// Enhance spends one scroll on slot. It returns nil, and consumes nothing,
// when the slot is unknown or no scrolls are left. The scroll is spent
// whatever the outcome.
func (e *Engine) Enhance(slot constants.Slot) *models.EnhanceResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	item, ok := e.state.Inventory[slot]
	if !ok || e.state.Scrolls <= 0 {
		return nil
	}

	before := item.Enhancement
	rate := SuccessRate(before)
	downgradeRate := DowngradeRate(before)
	e.state.Scrolls--

	success := e.rng.Float64() < rate
	downgraded := false
	if success {
		item.Enhancement++
	} else if item.Enhancement > 0 && e.rng.Float64() < downgradeRate {
		item.Enhancement--
		downgraded = true
	}
	e.state.Inventory[slot] = item
	e.save()

	return &models.EnhanceResult{
		Slot:        slot,
		Success:     success,
		BeforeLevel: before,
		AfterLevel:  item.Enhancement,
		SuccessRate: round(rate*100, 1),
		Downgraded:  downgraded,
	}
}

func (e *Engine) TotalPower() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return TotalPower(e.state.Inventory)
}

// TryAutoAdvance climbs every stage the current power already satisfies.
// It returns the new stage and true if at least one stage was gained.
func (e *Engine) TryAutoAdvance() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	power := TotalPower(e.state.Inventory)
	advanced := false
	for power >= float64(PowerRequirement(e.state.Stage+1)) {
		e.state.Stage++
		advanced = true
	}
	if !advanced {
		return 0, false
	}
	e.save()
	return e.state.Stage, true
}

// Snapshot is a read-only summary for display.
func (e *Engine) Snapshot() models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	inv := make(map[constants.Slot]models.SlotSnapshot, len(e.state.Inventory))
	for slot, item := range e.state.Inventory {
		inv[slot] = models.SlotSnapshot{
			Level:     item.Enhancement,
			Power:     Power(item),
			BasePower: item.BasePower,
		}
	}
	return models.Snapshot{
		Points:               e.state.Points,
		Stage:                e.state.Stage,
		Scrolls:              e.state.Scrolls,
		Inventory:            inv,
		TotalPower:           TotalPower(e.state.Inventory),
		NextStageRequirement: PowerRequirement(e.state.Stage + 1),
	}
}
