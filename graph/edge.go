package graph

// Edge is a transition between two nodes. A nil Predicate means the edge
// is always taken when evaluated; edges from a node are evaluated in the
// order they were added and the first match wins.
type Edge struct {
	From      string
	To        string
	Name      string
	Predicate Predicate
}

// Predicate evaluates state to decide whether an edge can be traversed.
type Predicate func(state State) bool

// KeyExists returns a predicate that is true when key is present in state.
func KeyExists(key string) Predicate {
	return func(state State) bool {
		_, exists := state.Get(key)
		return exists
	}
}

// KeyEquals returns a predicate that is true when key holds value.
func KeyEquals(key string, value any) Predicate {
	return func(state State) bool {
		val, exists := state.Get(key)
		return exists && val == value
	}
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return func(state State) bool { return !p(state) }
}

// And is true when every predicate is true.
func And(predicates ...Predicate) Predicate {
	return func(state State) bool {
		for _, p := range predicates {
			if !p(state) {
				return false
			}
		}
		return true
	}
}

// Or is true when at least one predicate is true.
func Or(predicates ...Predicate) Predicate {
	return func(state State) bool {
		for _, p := range predicates {
			if p(state) {
				return true
			}
		}
		return false
	}
}
