package sources

import "math/rand/v2"

// Short codes for the five known sources. These are also the keys of the
// persisted enable/disable flags.
const (
	CodeWhitney      = "wht"
	CodeArtInstitute = "aic"
	CodeCleveland    = "cma"
	CodeMet          = "met"
	CodeWikimedia    = "wmc"
)

// Registry holds the closed set of known sources. The set is fixed at
// construction; the active subset is a projection of persisted flags.
type Registry struct {
	all    []Source
	byCode map[string]Source
}

func NewRegistry() *Registry {
	all := []Source{
		NewWhitney(),
		NewArtInstitute(),
		NewCleveland(),
		NewMet(),
		NewWikimedia(),
	}
	byCode := make(map[string]Source, len(all))
	for _, src := range all {
		byCode[src.ShortCode()] = src
	}
	return &Registry{all: all, byCode: byCode}
}

// All returns every known source in registration order.
func (r *Registry) All() []Source {
	out := make([]Source, len(r.all))
	copy(out, r.all)
	return out
}

// ByCode looks up a source by its short code.
func (r *Registry) ByCode(code string) (Source, bool) {
	src, ok := r.byCode[code]
	return src, ok
}

// Active projects enabled flags (keyed by short code) onto the known set,
// preserving registration order. Sources missing from the map are treated
// as disabled. The registry does not defend against an all-false map; that
// invariant is enforced at the settings mutation boundary.
func (r *Registry) Active(enabled map[string]bool) []Source {
	var active []Source
	for _, src := range r.all {
		if enabled[src.ShortCode()] {
			active = append(active, src)
		}
	}
	return active
}

// PickRandom chooses uniformly among the given sources. Returns nil for an
// empty slice.
func PickRandom(rng *rand.Rand, active []Source) Source {
	if len(active) == 0 {
		return nil
	}
	return active[rng.IntN(len(active))]
}
