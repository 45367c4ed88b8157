package apikey

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// words are short, friendly nouns a child could read aloud.
var words = []string{
	"acorn", "anchor", "apple", "arrow", "badger", "balloon", "banjo", "beacon",
	"biscuit", "blossom", "bridge", "bubble", "button", "cactus", "candle", "canyon",
	"carrot", "castle", "cherry", "cloud", "clover", "comet", "cookie", "coral",
	"cricket", "crystal", "daisy", "dolphin", "dragon", "drum", "eagle", "ember",
	"falcon", "feather", "fern", "firefly", "forest", "fossil", "galaxy", "garden",
	"ginger", "glacier", "harbor", "hazel", "honey", "island", "jelly", "jungle",
	"kettle", "kite", "koala", "ladder", "lantern", "lemon", "lizard", "magnet",
	"maple", "marble", "meadow", "meteor", "mitten", "muffin", "nectar", "nutmeg",
	"ocean", "octopus", "orbit", "otter", "paddle", "pebble", "pepper", "pickle",
	"planet", "pocket", "pretzel", "puzzle", "quartz", "rabbit", "rainbow", "river",
	"robin", "rocket", "saddle", "sandal", "sapling", "shell", "sparrow", "sprout",
	"squirrel", "sunset", "teapot", "thistle", "ticket", "tiger", "tulip", "turtle",
	"velvet", "violet", "volcano", "waffle", "walnut", "willow", "window", "zebra",
}

const (
	minWords = 3
	maxWords = 6
)

// Generate creates a human-readable access key of wordCount distinct
// lower-case words followed by a 4-digit number, e.g.
// "otter-comet-waffle-4821". wordCount is clamped to 3..6.
func Generate(wordCount int) (string, error) {
	wordCount = max(minWords, min(wordCount, maxWords))

	pool := make([]string, len(words))
	copy(pool, words)

	parts := make([]string, 0, wordCount+1)
	for i := 0; i < wordCount; i++ {
		j, err := randInt(len(pool) - i)
		if err != nil {
			return "", fmt.Errorf("random word index: %w", err)
		}
		j += i
		pool[i], pool[j] = pool[j], pool[i]
		parts = append(parts, pool[i])
	}

	n, err := randInt(9000)
	if err != nil {
		return "", fmt.Errorf("random number: %w", err)
	}
	parts = append(parts, fmt.Sprintf("%d", n+1000))

	return strings.Join(parts, "-"), nil
}

func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
