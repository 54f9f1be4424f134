package pseudonym

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/MKhiriev/go-pseudo-ledger/internal/validators"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

// DefaultMaxAttempts bounds the number of random draws per Generate call.
const DefaultMaxAttempts = 64

type generator struct {
	mu          sync.Mutex
	rnd         *rand.Rand
	maxAttempts int
}

// Option configures a Generator.
type Option func(*generator)

// WithSource makes the draw sequence reproducible. Intended for fixtures.
func WithSource(src rand.Source) Option {
	return func(g *generator) {
		g.rnd = rand.New(src)
	}
}

// WithMaxAttempts overrides [DefaultMaxAttempts]. Non-positive values are ignored.
func WithMaxAttempts(n int) Option {
	return func(g *generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

func NewGenerator(opts ...Option) Generator {
	g := &generator{
		rnd:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *generator) Generate(existing []string) (string, error) {
	taken := foldSet(existing)

	for range g.maxAttempts {
		candidate := g.draw()
		if _, ok := taken[validators.FoldKey(candidate)]; !ok {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: no free alias after %d attempts", models.ErrGeneration, g.maxAttempts)
}

func (g *generator) Validate(custom string, existing []string) (string, error) {
	s, err := validators.SanitizePseudonym(custom)
	if err != nil {
		return "", err
	}

	if _, ok := foldSet(existing)[s.Key]; ok {
		return "", models.ErrPseudonymExists
	}

	return s.Display, nil
}

func (g *generator) draw() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ranks[g.rnd.IntN(len(ranks))] + " " +
		nouns[g.rnd.IntN(len(nouns))] + " the " +
		adjectives[g.rnd.IntN(len(adjectives))]
}

func foldSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[validators.FoldKey(v)] = struct{}{}
	}

	return set
}
