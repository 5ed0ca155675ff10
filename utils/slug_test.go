package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Minecraft", "minecraft"},
		{"spaces collapse", "My  Cool   Tag", "my-cool-tag"},
		{"trailing punctuation", "LEGO Set!!", "lego-set"},
		{"leading punctuation", "!!wow", "wow"},
		{"mixed separators", "space_rockets & planets", "space-rockets-planets"},
		{"digits kept", "top 10 builds", "top-10-builds"},
		{"only punctuation", "!!!", ""},
		{"whitespace only", "   ", ""},
		{"empty", "", ""},
		{"unicode stripped", "héllo wörld", "h-llo-w-rld"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Slugify(tc.in))
		})
	}
}

func TestSlugifyLengthCap(t *testing.T) {
	long := strings.Repeat("abcde ", 20)
	got := Slugify(long)
	assert.LessOrEqual(t, len(got), 50)
	assert.False(t, strings.HasSuffix(got, "-"), "capped slug must not end with a hyphen")
}

func TestSlugifyDeterministic(t *testing.T) {
	assert.Equal(t, Slugify("Space Rockets!"), Slugify("Space Rockets!"))
}

func TestNormalizeSlug(t *testing.T) {
	cases := []struct {
		in   string
		def  string
		want string
	}{
		{"mincraft", "", "minecraft"},
		{"Minecrft", "", "minecraft"},
		{"robloks", "", "roblox"},
		{"sciense", "", "science"},
		{"drawring", "", "drawing"},
		{"minecraft", "", "minecraft"},
		{"dinosaurs", "", "dinosaurs"},
		{"", "misc", "misc"},
		{"!!!", "misc", "misc"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeSlug(tc.in, tc.def), "input %q", tc.in)
	}
}

func TestSlugVariants(t *testing.T) {
	got := SlugVariants("minecraft")
	assert.Equal(t, "minecraft", got[0], "canonical slug comes first")
	assert.Contains(t, got, "mincraft")
	assert.Contains(t, got, "minecrft")

	assert.Equal(t, []string{"dinosaurs"}, SlugVariants("dinosaurs"))
}

func TestSanitizeTagNames(t *testing.T) {
	t.Run("dedupes case-insensitively keeping first form", func(t *testing.T) {
		got := SanitizeTagNames([]string{"Minecraft", "minecraft", "MINECRAFT", "lego"})
		assert.Equal(t, []string{"Minecraft", "lego"}, got)
	})

	t.Run("drops empty and overlong names", func(t *testing.T) {
		got := SanitizeTagNames([]string{"", "  ", strings.Repeat("x", 21), "ok"})
		assert.Equal(t, []string{"ok"}, got)
	})

	t.Run("twenty rune name is kept", func(t *testing.T) {
		name := strings.Repeat("é", 20)
		got := SanitizeTagNames([]string{name})
		assert.Equal(t, []string{name}, got)
	})

	t.Run("caps at twelve tags", func(t *testing.T) {
		in := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n"}
		got := SanitizeTagNames(in)
		assert.Len(t, got, 12)
		assert.Equal(t, "l", got[11])
	})

	t.Run("nil input", func(t *testing.T) {
		assert.Empty(t, SanitizeTagNames(nil))
	})
}
