package query

// Tribool is a three-valued truth value. Unknown means a predicate cannot be
// decided at the current hierarchy level and must be re-evaluated further
// down.
type Tribool uint8

const (
	False Tribool = iota
	True
	Unknown
)

// Of converts a bool.
func Of(b bool) Tribool {
	if b {
		return True
	}
	return False
}

// And is Kleene conjunction: False dominates, then Unknown.
func (t Tribool) And(o Tribool) Tribool {
	switch {
	case t == False || o == False:
		return False
	case t == Unknown || o == Unknown:
		return Unknown
	}
	return True
}

// Or is Kleene disjunction: True dominates, then Unknown.
func (t Tribool) Or(o Tribool) Tribool {
	switch {
	case t == True || o == True:
		return True
	case t == Unknown || o == Unknown:
		return Unknown
	}
	return False
}

// Not negates t; Unknown stays Unknown.
func (t Tribool) Not() Tribool {
	switch t {
	case True:
		return False
	case False:
		return True
	}
	return Unknown
}

func (t Tribool) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	}
	return "unknown"
}
