package model

// FeatureCollection is the scanner's output for one feature label: every
// entity discovered under it, per kind, in scan order. The scanner's
// "uncategorized" bucket arrives as a collection named Uncategorized.
type FeatureCollection struct {
	Name     string
	Entities map[Kind][]Entity
}

// Count returns the number of entities in the collection.
func (f *FeatureCollection) Count() int {
	n := 0
	for _, es := range f.Entities {
		n += len(es)
	}
	return n
}
