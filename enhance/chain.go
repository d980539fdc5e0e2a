package enhance

import "errors"

// Chain runs an ordered list of enhancers over each frame. A chain belongs
// to exactly one channel; stateful members make it unsafe to share.
type Chain struct {
	enhancers []Enhancer
	settings  []Setting
}

// NewChain instantiates the settings in order. Settings naming an unknown
// kind are skipped; invalid parameter values fail construction.
func NewChain(settings []Setting) (*Chain, error) {
	c := &Chain{}

	for _, s := range settings {
		e, err := New(s)
		if err != nil {
			if errors.Is(err, ErrUnknownKind) {
				continue
			}

			return nil, err
		}

		c.enhancers = append(c.enhancers, e)
		c.settings = append(c.settings, cloneSetting(s))
	}

	return c, nil
}

// Process applies every enhancer in order, mutating both slices in place.
// The first error aborts the chain.
func (c *Chain) Process(magnitudes, phases []float64) error {
	for _, e := range c.enhancers {
		err := e.Process(magnitudes, phases)
		if err != nil {
			return err
		}
	}

	return nil
}

// Reset clears per-channel state on all members.
func (c *Chain) Reset() {
	for _, e := range c.enhancers {
		e.Reset()
	}
}

// Len reports how many enhancers were instantiated.
func (c *Chain) Len() int {
	return len(c.enhancers)
}

// Settings returns a copy of the settings that produced the chain members.
func (c *Chain) Settings() []Setting {
	out := make([]Setting, len(c.settings))
	for i, s := range c.settings {
		out[i] = cloneSetting(s)
	}

	return out
}

func cloneSetting(s Setting) Setting {
	out := Setting{Name: s.Name}

	if len(s.Params) > 0 {
		out.Params = make(map[string]float64, len(s.Params))
		for k, v := range s.Params {
			out.Params[k] = v
		}
	}

	return out
}
