// Package search holds the view state of the search screen and the
// transitions driven by user actions and fetch completions.
//
// State never performs I/O. Transitions that need the network return a
// Request; the caller runs the fetch and feeds the outcome back through
// ListLoaded or LookupDone.
package search

import (
	"strings"

	"github.com/f3rmion/pokedex/internal/pokedex"
	"go.uber.org/zap"
)

// NotFoundMessage is shown for every failed single lookup.
const NotFoundMessage = "Pokémon not found, try another name"

// Mode selects what the screen displays.
type Mode int

const (
	ModeList Mode = iota
	ModeSingle
)

func (m Mode) String() string {
	if m == ModeSingle {
		return "single"
	}
	return "list"
}

// Phase is the state machine position derived from State.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoadingList
	PhaseLoadingOne
	PhaseShowingList
	PhaseShowingOne
)

var phaseNames = [...]string{"idle", "loading-list", "loading-one", "showing-list", "showing-one"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// Request is a single lookup the caller must perform.
type Request struct {
	Name       string // normalized lookup key
	Generation uint64
}

// State is the search screen's view state.
type State struct {
	Query        string
	List         []pokedex.Entry
	Selected     *pokedex.Entry
	Mode         Mode
	Loading      bool
	ListLoading  bool
	ErrorMessage string

	mounted    bool
	generation uint64
	logger     *zap.Logger
}

// New creates an unmounted state. A nil logger discards output.
func New(logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{logger: logger}
}

// Phase reports the current state machine position.
func (s *State) Phase() Phase {
	switch {
	case !s.mounted:
		return PhaseIdle
	case s.Loading:
		return PhaseLoadingOne
	case s.ListLoading:
		return PhaseLoadingList
	case s.Mode == ModeSingle:
		return PhaseShowingOne
	default:
		return PhaseShowingList
	}
}

// IsLoading reports whether any fetch is outstanding.
func (s *State) IsLoading() bool {
	return s.Loading || s.ListLoading
}

// Mount starts the batch fetch. It reports false if the state was already
// mounted, in which case no fetch should be issued.
func (s *State) Mount() bool {
	if s.mounted {
		return false
	}
	s.mounted = true
	s.ListLoading = true
	s.Mode = ModeList
	return true
}

// ListLoaded applies the batch fetch outcome. Failures leave the list empty
// and are only logged.
func (s *State) ListLoaded(entries []pokedex.Entry, err error) {
	s.ListLoading = false
	if err != nil {
		s.logger.Warn("loading initial list failed", zap.Error(err))
		s.List = nil
		return
	}
	s.List = entries
	s.logger.Debug("initial list loaded", zap.Int("count", len(entries)))
}

// SetQuery records the text field contents.
func (s *State) SetQuery(q string) {
	s.Query = q
}

// Submit handles the search action. A blank query returns to the list with
// no fetch. Otherwise it returns the lookup to perform and true.
func (s *State) Submit() (Request, bool) {
	if strings.TrimSpace(s.Query) == "" {
		s.supersede()
		s.showList()
		return Request{}, false
	}

	s.generation++
	s.Loading = true
	s.ErrorMessage = ""

	req := Request{Name: pokedex.NormalizeName(s.Query), Generation: s.generation}
	s.logger.Debug("lookup requested", zap.String("name", req.Name), zap.Uint64("generation", req.Generation))
	return req, true
}

// Current reports whether req is still the newest lookup.
func (s *State) Current(req Request) bool {
	return req.Generation == s.generation
}

// LookupDone applies the result of req. Results for superseded requests are
// dropped and LookupDone returns false.
func (s *State) LookupDone(req Request, entry *pokedex.Entry, err error) bool {
	if !s.Current(req) {
		s.logger.Debug("dropping stale lookup", zap.String("name", req.Name), zap.Uint64("generation", req.Generation))
		return false
	}

	s.Loading = false
	if err != nil || entry == nil {
		s.logger.Info("lookup failed", zap.String("name", req.Name), zap.Error(err))
		s.Selected = nil
		s.Mode = ModeList
		s.ErrorMessage = NotFoundMessage
		return true
	}

	found := *entry
	s.Selected = &found
	s.Mode = ModeSingle
	s.ErrorMessage = ""
	return true
}

// Choose shows List[index] directly, without a network call, and puts its
// name in the query field.
func (s *State) Choose(index int) bool {
	if index < 0 || index >= len(s.List) {
		return false
	}
	s.supersede()

	chosen := s.List[index]
	s.Selected = &chosen
	s.Mode = ModeSingle
	s.Query = chosen.Name
	s.ErrorMessage = ""
	return true
}

// Dismiss leaves the single view and clears the query.
func (s *State) Dismiss() {
	s.supersede()
	s.Query = ""
	s.showList()
}

func (s *State) showList() {
	s.Selected = nil
	s.Mode = ModeList
	s.ErrorMessage = ""
}

// supersede invalidates any in-flight lookup.
func (s *State) supersede() {
	if s.Loading {
		s.logger.Debug("superseding lookup", zap.Uint64("generation", s.generation))
	}
	s.generation++
	s.Loading = false
}
