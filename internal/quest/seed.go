package quest

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedDoc []byte

var defaultSeed = mustDecodeSeed(seedDoc)

func mustDecodeSeed(doc []byte) []Quest {
	var qs []Quest
	if err := yaml.Unmarshal(doc, &qs); err != nil {
		panic(fmt.Sprintf("decode default seed: %v", err))
	}
	for _, q := range qs {
		if err := Validate(q); err != nil {
			panic(fmt.Sprintf("default seed: %v", err))
		}
	}
	return qs
}

// DefaultSeed returns the quests a user starts with on first login.
// Each call returns an independent copy.
func DefaultSeed() []Quest {
	return CloneAll(defaultSeed)
}
