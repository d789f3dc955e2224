package wheel

// DefaultIdeas seeds a new idea list
func DefaultIdeas() []string {
	return []string{"Dinner Date", "Movie Night", "Hiking Adventure", "Picnic in the Park"}
}

// IdeaList is an ordered, user-editable list of wheel labels. Duplicates are allowed.
// It is not safe for concurrent use.
type IdeaList struct {
	items []string
}

// NewIdeaList creates a list holding a copy of items
func NewIdeaList(items ...string) *IdeaList {
	return &IdeaList{items: cloneLabels(items)}
}

// Append adds label to the end of the list as given. Callers validate labels.
func (l *IdeaList) Append(label string) {
	l.items = append(l.items, label)
}

// Remove deletes the item at index, keeping the order of the rest
func (l *IdeaList) Remove(index int) bool {
	if index < 0 || index >= len(l.items) {
		return false
	}
	l.items = append(l.items[:index], l.items[index+1:]...)
	return true
}

// Len returns the number of items
func (l *IdeaList) Len() int {
	return len(l.items)
}

// At returns the item at index
func (l *IdeaList) At(index int) (string, bool) {
	if index < 0 || index >= len(l.items) {
		return "", false
	}
	return l.items[index], true
}

// Snapshot returns a copy of the items, never nil
func (l *IdeaList) Snapshot() []string {
	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}
