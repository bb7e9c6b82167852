package services

import (
	"sync"

	"github.com/dmms090191-rgb/duerp-sub001/models"
)

// ViewMode says what the active position displays: the category's intro text
// or one of its questions.
type ViewMode string

const (
	ViewCategoryIntro ViewMode = "category_intro"
	ViewQuestion      ViewMode = "question"
)

// NavigatorState is the cursor over the catalog: which category and question
// are active and in which view mode. It is a plain value so that every
// transition is observable and reproducible from (catalog, responses).
type NavigatorState struct {
	ActiveCategoryIndex int      `json:"active_category_index"`
	ActiveQuestionIndex int      `json:"active_question_index"`
	ViewMode            ViewMode `json:"view_mode"`
}

// Navigator advances and retreats through the catalog according to the gating
// rules and the completion engine. It holds no response data itself; every
// transition takes the current response snapshot as input. Only the automatic
// transitions (advance, retreat, resync) follow the completion rules; manual
// selection of any reachable target is always allowed.
type Navigator struct {
	mu      sync.Mutex
	catalog *models.QuestionCatalog
	state   NavigatorState
}

// NewNavigator places the cursor on the first incomplete reachable category,
// in intro view when the category has intro text to show first, directly on
// the first question otherwise (a category opening with its own gate question
// always starts on that question).
func NewNavigator(catalog *models.QuestionCatalog, responses models.ResponseSet) *Navigator {
	n := &Navigator{catalog: catalog}
	n.state = enterCategory(catalog, FirstIncompleteCategoryIndex(catalog, responses), 1, responses)
	return n
}

// State returns the current cursor position.
func (n *Navigator) State() NavigatorState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Reset recomputes the initial placement, e.g. after a full response reset.
func (n *Navigator) Reset(responses models.ResponseSet) NavigatorState {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state = enterCategory(n.catalog, FirstIncompleteCategoryIndex(n.catalog, responses), 1, responses)
	return n.state
}

// GoNext advances one step: intro -> first question, question -> next
// question, last question -> next reachable category. Unreachable categories
// are skipped. At the end of the catalog the cursor stays put and the second
// return value is false.
func (n *Navigator) GoNext(responses models.ResponseSet) (NavigatorState, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.clamp()
	category := &n.catalog.Categories[n.state.ActiveCategoryIndex]

	if n.state.ViewMode == ViewCategoryIntro {
		if len(category.Questions) == 0 {
			return n.advanceCategory(1, responses)
		}
		n.state.ViewMode = ViewQuestion
		n.state.ActiveQuestionIndex = 0
		return n.state, true
	}

	if len(category.Questions) == 0 {
		return n.advanceCategory(1, responses)
	}

	question := &category.Questions[n.state.ActiveQuestionIndex]
	if question.IsGate() && responses.Get(question.ID).RiskStatus == models.RiskStatusUnmastered {
		return n.advanceCategory(1, responses)
	}
	if n.state.ActiveQuestionIndex+1 < len(category.Questions) {
		n.state.ActiveQuestionIndex++
		return n.state, true
	}
	return n.advanceCategory(1, responses)
}

// GoPrev retreats one step, symmetrically to GoNext: question -> previous
// question, first question -> intro (when the category has one), otherwise
// the previous reachable category, entered at its last relevant question.
func (n *Navigator) GoPrev(responses models.ResponseSet) (NavigatorState, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.clamp()
	category := &n.catalog.Categories[n.state.ActiveCategoryIndex]

	if n.state.ViewMode == ViewQuestion {
		if n.state.ActiveQuestionIndex > 0 {
			n.state.ActiveQuestionIndex--
			return n.state, true
		}
		if category.Kind == models.CategoryIntroThenList {
			n.state.ViewMode = ViewCategoryIntro
			return n.state, true
		}
	}
	return n.advanceCategory(-1, responses)
}

// advanceCategory moves to the next reachable category in the given
// direction, or reports a terminal state (moved=false, position unchanged)
// when the scan runs off the end. Caller holds the lock.
func (n *Navigator) advanceCategory(direction int, responses models.ResponseSet) (NavigatorState, bool) {
	next := NextReachableCategoryIndex(n.catalog, n.state.ActiveCategoryIndex, responses, direction)
	if next < 0 {
		return n.state, false
	}
	n.state = enterCategory(n.catalog, next, direction, responses)
	return n.state, true
}

// Resync is the reactive auto-advance: called after every store mutation.
// When the active category has just been completed (or has become
// unreachable because a gate flipped), the cursor jumps to the first
// incomplete reachable category. Deterministic given identical responses.
func (n *Navigator) Resync(responses models.ResponseSet) (NavigatorState, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.clamp()
	active := &n.catalog.Categories[n.state.ActiveCategoryIndex]
	if IsCategoryReachable(active, responses) && !IsCategoryCompleted(active, responses) {
		return n.state, false
	}
	target := FirstIncompleteCategoryIndex(n.catalog, responses)
	if target == n.state.ActiveCategoryIndex {
		return n.state, false
	}
	n.state = enterCategory(n.catalog, target, 1, responses)
	return n.state, true
}

// SelectCategory jumps to any reachable category, regardless of completion.
// Unreachable or out-of-range targets are a no-op: gating can flip between
// the time a target is rendered and the time it is clicked.
func (n *Navigator) SelectCategory(index int, responses models.ResponseSet) (NavigatorState, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if index < 0 || index >= len(n.catalog.Categories) {
		return n.state, false
	}
	if !IsCategoryReachable(&n.catalog.Categories[index], responses) {
		return n.state, false
	}
	n.state = enterCategory(n.catalog, index, 1, responses)
	return n.state, true
}

// SelectQuestion jumps to a question within the active category, clamping
// out-of-range indexes instead of failing.
func (n *Navigator) SelectQuestion(index int) (NavigatorState, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.clamp()
	category := &n.catalog.Categories[n.state.ActiveCategoryIndex]
	if len(category.Questions) == 0 {
		return n.state, false
	}
	if index < 0 {
		index = 0
	}
	if index >= len(category.Questions) {
		index = len(category.Questions) - 1
	}
	n.state.ActiveQuestionIndex = index
	n.state.ViewMode = ViewQuestion
	return n.state, true
}

// clamp keeps the cursor inside the catalog bounds. Caller holds the lock.
func (n *Navigator) clamp() {
	if len(n.catalog.Categories) == 0 {
		n.state = NavigatorState{ViewMode: ViewQuestion}
		return
	}
	if n.state.ActiveCategoryIndex < 0 {
		n.state.ActiveCategoryIndex = 0
	}
	if n.state.ActiveCategoryIndex >= len(n.catalog.Categories) {
		n.state.ActiveCategoryIndex = len(n.catalog.Categories) - 1
	}
	questions := n.catalog.Categories[n.state.ActiveCategoryIndex].Questions
	if n.state.ActiveQuestionIndex < 0 {
		n.state.ActiveQuestionIndex = 0
	}
	if len(questions) > 0 && n.state.ActiveQuestionIndex >= len(questions) {
		n.state.ActiveQuestionIndex = len(questions) - 1
	}
}

// enterCategory computes the entry state for a category. Entering forward
// shows the intro first when the category has one (a gate-first category goes
// straight to its gate question); entering backward lands on the last
// question, except that a gate-first category whose own gate is denied lands
// back on the gate itself.
func enterCategory(catalog *models.QuestionCatalog, index, direction int, responses models.ResponseSet) NavigatorState {
	if len(catalog.Categories) == 0 {
		return NavigatorState{ViewMode: ViewQuestion}
	}
	if index < 0 {
		index = 0
	}
	if index >= len(catalog.Categories) {
		index = len(catalog.Categories) - 1
	}
	category := &catalog.Categories[index]
	state := NavigatorState{ActiveCategoryIndex: index, ViewMode: ViewQuestion}

	if len(category.Questions) == 0 {
		if category.DefaultDescription != "" {
			state.ViewMode = ViewCategoryIntro
		}
		return state
	}

	if direction >= 0 {
		if category.Kind == models.CategoryIntroThenList {
			state.ViewMode = ViewCategoryIntro
		}
		return state
	}

	if category.Kind == models.CategoryGateFirst {
		gate := &category.Questions[0]
		if responses.Get(gate.ID).RiskStatus == models.RiskStatusUnmastered {
			return state // land on the denied gate, not its moot children
		}
	}
	state.ActiveQuestionIndex = len(category.Questions) - 1
	return state
}
