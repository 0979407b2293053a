package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// TestDataGenerator provides methods to create test data for integration tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
	used  map[string]struct{}
}

// NewTestDataGenerator creates a new test data generator with optional seed.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}

	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
		used:  make(map[string]struct{}),
	}
}

// Seed reports the seed so a failing run can be reproduced.
func (g *TestDataGenerator) Seed() int64 {
	return g.seed
}

// TeamName returns a team name not yet handed out by this generator.
func (g *TestDataGenerator) TeamName() string {
	for {
		name := fmt.Sprintf("%s %s", g.faker.AdjectiveDescriptive(), g.faker.Animal())
		if len(name) > 64 {
			continue
		}
		if _, ok := g.used[name]; ok {
			continue
		}
		g.used[name] = struct{}{}
		return name
	}
}

// TeamNames returns n distinct team names.
func (g *TestDataGenerator) TeamNames(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = g.TeamName()
	}
	return out
}

// Members returns between one and four member names.
func (g *TestDataGenerator) Members() []string {
	n := g.faker.IntRange(1, 4)
	out := make([]string, n)
	for i := range out {
		out[i] = g.faker.FirstName()
	}
	return out
}

// ImageURL returns a plausible hosted image URL.
func (g *TestDataGenerator) ImageURL() string {
	return fmt.Sprintf("https://images.example.com/%s.png", g.faker.UUID())
}

// Prompt returns an image generation prompt.
func (g *TestDataGenerator) Prompt() string {
	return fmt.Sprintf("%s %s in the style of %s", g.faker.Color(), g.faker.Animal(), g.faker.HipsterWord())
}

// ChallengeID returns a unique challenge id.
func (g *TestDataGenerator) ChallengeID() string {
	return fmt.Sprintf("challenge-%s", g.faker.LetterN(8))
}
