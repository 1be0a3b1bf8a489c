package sieve

// SieveScript represents a single output sieve file
type SieveScript struct {
	Name    string
	Content string
}
