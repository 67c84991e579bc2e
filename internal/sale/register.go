package sale

import (
	"sync"

	"sucursalpos/internal/domain"
)

// Register is the state of one selling terminal: the last search and the cart
// being built. It is not safe for concurrent use; go through Registers.
type Register struct {
	BranchID string
	Query    string
	Results  []domain.InventoryItem
	Cart     Cart
}

func (r *Register) SetResults(query string, results []domain.InventoryItem) {
	r.Query = query
	r.Results = results
}

// AddResult adds one unit of a search result to the cart. The search is
// cleared only when the add succeeds.
func (r *Register) AddResult(itemID string) error {
	for _, item := range r.Results {
		if item.ID != itemID {
			continue
		}
		if err := r.Cart.Add(FromInventory(item)); err != nil {
			return err
		}
		r.clearSearch()
		return nil
	}
	return ErrNotInResults
}

func (r *Register) AddManual(item Item) error {
	if err := r.Cart.Add(item); err != nil {
		return err
	}
	r.clearSearch()
	return nil
}

func (r *Register) clearSearch() {
	r.Query = ""
	r.Results = nil
}

func (r *Register) View() domain.RegisterView {
	results := r.Results
	if results == nil {
		results = []domain.InventoryItem{}
	}
	return domain.RegisterView{
		BranchID: r.BranchID,
		Query:    r.Query,
		Results:  results,
		Lines:    r.Cart.Lines(),
		Total:    r.Cart.Total(),
	}
}

type entry struct {
	mu       sync.Mutex
	register Register
}

// Registers keeps one register per user. Work on a single register is
// serialized; different users never block each other.
type Registers struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewRegisters() *Registers {
	return &Registers{entries: make(map[string]*entry)}
}

func (rs *Registers) get(userID string) *entry {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	e, ok := rs.entries[userID]
	if !ok {
		e = &entry{}
		rs.entries[userID] = e
	}
	return e
}

// Do runs fn with exclusive access to the user's register. A register bound
// to another branch is reset first.
func (rs *Registers) Do(userID, branchID string, fn func(r *Register) error) error {
	e := rs.get(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.register.BranchID != branchID {
		e.register = Register{BranchID: branchID}
	}
	return fn(&e.register)
}

// Drop forgets the user's register, e.g. after logout.
func (rs *Registers) Drop(userID string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	delete(rs.entries, userID)
}
