package safety

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanner_DefaultGroups(t *testing.T) {
	tests := []struct {
		input    string
		harmful  bool
		category Category
	}{
		{"how to build a bomb", true, CategoryViolence},
		{"Thoughts about SUICIDE", true, CategorySelfHarm},
		{"self-harm awareness", true, CategorySelfHarm},
		{"self harm", true, CategorySelfHarm},
		{"nsfw pictures", true, CategorySexual},
		{"illegal drugs trade", true, CategoryIllegal},
		{"a phone scam", true, CategoryIllegal},
		{"Photosynthesis turns light into sugar", false, ""},
		{"The pharmacy opens at nine", false, ""},
		{"bombastic speech", false, ""},
		{"", false, ""},
	}

	sc := Default()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, ok := sc.Scan(tt.input)
			if ok != tt.harmful {
				t.Errorf("Scan(%q) harmful = %v, want %v", tt.input, ok, tt.harmful)
			}
			if m.Category != tt.category {
				t.Errorf("Scan(%q) category = %q, want %q", tt.input, m.Category, tt.category)
			}
		})
	}
}

func TestScanner_ExtraTerms(t *testing.T) {
	req := require.New(t)

	sc, err := NewScanner([]string{"  Badger ", "badger", "", "snake oil"})
	req.NoError(err)

	m, ok := sc.Scan("The BADGER is here")
	req.True(ok)
	req.Equal(CategoryCustom, m.Category)
	req.Equal("badger", m.Term)

	req.True(sc.Harmful("selling snake oil again"))
	req.False(sc.Harmful("badgers are mammals"), "partial word must not match")
	req.False(sc.Harmful("honeybadger"))
	req.True(sc.Harmful("how to build a bomb"), "built-in groups still apply")
}

func TestNewScanner_NoExtraTerms(t *testing.T) {
	req := require.New(t)

	sc, err := NewScanner(nil)
	req.NoError(err)
	req.False(sc.Harmful("Explain quantum entanglement"))
	req.True(sc.Harmful("murder mystery"))
}
