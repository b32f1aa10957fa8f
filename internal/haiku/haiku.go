// Package haiku composes short poems from words keyed by Fibonacci values.
package haiku

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/iburimskiy/spiral-haiku/internal/config"
)

// WordBank maps a Fibonacci value to its candidate words.
type WordBank map[int][]string

// DefaultBank mixes nature and machine vocabulary.
var DefaultBank = WordBank{
	1: {"data", "root", "glitch", "leaf", "net", "web", "dew"},
	2: {"error", "petals", "signal", "pixel", "static", "sap"},
	3: {"digital", "mycelium", "network", "hacker", "chlorophyll"},
	5: {"cyberspace", "photosynthesis", "hypertext", "ecosystem", "404_error"},
}

// Pick returns a random word for value, or placeholder when the bank has none.
func (b WordBank) Pick(value int, rng *rand.Rand, placeholder string) string {
	words := b[value]
	if len(words) == 0 {
		return placeholder
	}
	return words[rng.IntN(len(words))]
}

// WordCount is how many words the templates read.
const WordCount = 5

var templates = [...]string{
	"%[1]s %[2]s\n%[3]s in the machine\n%[4]s %[5]s",
	"Error %[1]s\n%[2]s roots find sunlight\n%[5]s reboots",
	"%[1]s %[1]s\n%[3]s %[4]s\n%[5]s blossoms",
}

// Templates is the number of distinct poem shapes.
const Templates = len(templates)

// Render fills template i with the first five words. Missing words are
// filled with placeholder; i wraps around Templates.
func Render(i int, words []string, placeholder string) string {
	args := make([]any, WordCount)
	for j := range args {
		if j < len(words) {
			args[j] = words[j]
		} else {
			args[j] = placeholder
		}
	}
	i %= Templates
	if i < 0 {
		i += Templates
	}
	return fmt.Sprintf(templates[i], args...)
}

// Composer renders poems after a fixed delay, standing in for a slow
// generator. It is safe for concurrent use.
type Composer struct {
	Delay       time.Duration
	Placeholder string

	mu  sync.Mutex
	rng *rand.Rand
}

func NewComposer(cfg config.HaikuConfig, rng *rand.Rand) *Composer {
	return &Composer{
		Delay:       cfg.Delay,
		Placeholder: cfg.Placeholder,
		rng:         rng,
	}
}

func (c *Composer) template() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.IntN(Templates)
}

// Compose waits Delay and returns one of the three templates filled with
// words. It returns ctx.Err() if ctx ends first.
func (c *Composer) Compose(ctx context.Context, words []string) (string, error) {
	i := c.template()
	timer := time.NewTimer(c.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
	}
	return Render(i, words, c.Placeholder), nil
}
