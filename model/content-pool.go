package model

import "math/rand"

// ContentPool holds the tokens adversarial agents may post during one tick.
// The model replaces it at the start of a tick and drops it at the end.
type ContentPool struct {
	Step   int
	Tokens []int
}

// NewContentPool draws size tokens uniformly from [1, tokenMax]
func NewContentPool(step int, size int, tokenMax int, rng *rand.Rand) *ContentPool {
	tokens := make([]int, size)
	for i := range tokens {
		tokens[i] = rng.Intn(tokenMax) + 1
	}
	return &ContentPool{Step: step, Tokens: tokens}
}

// Pick returns one token uniformly at random; false if the pool is empty
func (p *ContentPool) Pick(rng *rand.Rand) (int, bool) {
	if p == nil || len(p.Tokens) == 0 {
		return 0, false
	}
	return p.Tokens[rng.Intn(len(p.Tokens))], true
}
