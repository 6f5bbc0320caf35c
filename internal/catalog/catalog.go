package catalog

import (
	"slices"
	"strings"

	"github.com/speechpath/speechpath/internal/errs"
)

// Goal is a single measurable therapy target within a category.
type Goal struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Category groups the ordered goals of one clinical disorder area.
// Goal order defines the unlock sequence.
type Category struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Goals []Goal `json:"goals"`
}

// FirstGoal returns the goal every new child starts with.
func (c Category) FirstGoal() Goal {
	return c.Goals[0]
}

// Catalog is the immutable category -> goal hierarchy with precomputed indices.
// It is safe for concurrent use because nothing mutates it after New returns.
type Catalog struct {
	categories []Category
	byID       map[string]int
	goalIndex  map[string]map[string]int
}

// New validates the categories and builds a Catalog.
func New(categories []Category) (*Catalog, error) {
	if err := validateCategories(categories); err != nil {
		return nil, err
	}

	c := &Catalog{
		categories: make([]Category, len(categories)),
		byID:       make(map[string]int, len(categories)),
		goalIndex:  make(map[string]map[string]int, len(categories)),
	}
	for i, cat := range categories {
		cat.Goals = slices.Clone(cat.Goals)
		c.categories[i] = cat
		c.byID[cat.ID] = i

		idx := make(map[string]int, len(cat.Goals))
		for j, g := range cat.Goals {
			idx[g.ID] = j
		}
		c.goalIndex[cat.ID] = idx
	}
	return c, nil
}

// ListCategories returns all categories in catalog order.
func (c *Catalog) ListCategories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		cat.Goals = slices.Clone(cat.Goals)
		out[i] = cat
	}
	return out
}

// Category returns a category by ID.
func (c *Catalog) Category(categoryID string) (Category, error) {
	i, ok := c.byID[categoryID]
	if !ok {
		return Category{}, errs.NotFound("category", categoryID)
	}
	cat := c.categories[i]
	cat.Goals = slices.Clone(cat.Goals)
	return cat, nil
}

// GetGoal returns a goal by category and goal ID.
func (c *Catalog) GetGoal(categoryID, goalID string) (Goal, error) {
	j, err := c.GoalIndex(categoryID, goalID)
	if err != nil {
		return Goal{}, err
	}
	return c.categories[c.byID[categoryID]].Goals[j], nil
}

// GoalIndex returns the position of a goal within its category.
func (c *Catalog) GoalIndex(categoryID, goalID string) (int, error) {
	idx, ok := c.goalIndex[categoryID]
	if !ok {
		return 0, errs.NotFound("category", categoryID)
	}
	j, ok := idx[goalID]
	if !ok {
		return 0, errs.NotFound("goal", goalID)
	}
	return j, nil
}

// NextGoal returns the goal immediately after goalID. The bool is false when
// goalID is the last goal of its category.
func (c *Catalog) NextGoal(categoryID, goalID string) (Goal, bool, error) {
	j, err := c.GoalIndex(categoryID, goalID)
	if err != nil {
		return Goal{}, false, err
	}
	goals := c.categories[c.byID[categoryID]].Goals
	if j+1 >= len(goals) {
		return Goal{}, false, nil
	}
	return goals[j+1], true, nil
}

// Contains reports whether goalID belongs to categoryID.
func (c *Catalog) Contains(categoryID, goalID string) bool {
	_, err := c.GoalIndex(categoryID, goalID)
	return err == nil
}

// SearchResult is a goal matched by Search, with its category.
type SearchResult struct {
	CategoryID string
	Goal       Goal
}

// Search returns goals whose ID or title contains text, case-insensitively,
// in catalog order.
func (c *Catalog) Search(text string) []SearchResult {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil
	}
	var results []SearchResult
	for _, cat := range c.categories {
		for _, g := range cat.Goals {
			if strings.Contains(strings.ToLower(g.ID), needle) ||
				strings.Contains(strings.ToLower(g.Title), needle) {
				results = append(results, SearchResult{CategoryID: cat.ID, Goal: g})
			}
		}
	}
	return results
}
