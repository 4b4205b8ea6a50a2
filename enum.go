package gravepaint

// Enumerable is the interface implemented by types that can only be represented by enumerable, constant values.
//
// A request field of an Enumerable type is checked with the "enum" validation rule.
type Enumerable interface {
	String() string
	Valid() error
}
