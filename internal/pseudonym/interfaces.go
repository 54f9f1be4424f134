// Package pseudonym hands out the human-friendly aliases that stand in for
// real participant names inside a group.
//
// Aliases look like "Captain Otter the Bold". They are drawn at random and
// never derived from the name they replace, so an alias leaks nothing about
// the person behind it.
package pseudonym

//go:generate mockgen -source=interfaces.go -destination=../mock/pseudonym_mock.go -package=mock

// Generator produces and checks aliases within one group. Callers pass the
// aliases already taken in that group; comparisons are case-insensitive.
type Generator interface {
	// Generate returns a fresh alias not present in existing, or
	// models.ErrGeneration once the attempt budget is exhausted.
	Generate(existing []string) (string, error)

	// Validate sanitises a caller-chosen alias and checks it is free.
	Validate(custom string, existing []string) (string, error)
}
