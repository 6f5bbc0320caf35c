package catalog

// DefaultLevelSize is the number of goals grouped into one level.
const DefaultLevelSize = 5

// Level is a contiguous chunk of a category's goals.
type Level struct {
	Index int
	Goals []Goal
}

// Levels splits a category's goals into levels of size goals each. The last
// level may be shorter. A size below 1 falls back to DefaultLevelSize.
func (c *Catalog) Levels(categoryID string, size int) ([]Level, error) {
	cat, err := c.Category(categoryID)
	if err != nil {
		return nil, err
	}
	if size < 1 {
		size = DefaultLevelSize
	}

	levels := make([]Level, 0, (len(cat.Goals)+size-1)/size)
	for start := 0; start < len(cat.Goals); start += size {
		end := min(start+size, len(cat.Goals))
		levels = append(levels, Level{
			Index: len(levels),
			Goals: cat.Goals[start:end],
		})
	}
	return levels, nil
}
