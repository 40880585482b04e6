package normalization

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageNormalizer_Normalize(t *testing.T) {
	n := NewMessageNormalizer()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty input", "", ""},
		{"whitespace only", "   ", ""},
		{"clean text untouched", "Can you add the pixel?", "Can you add the pixel?"},
		{"prefix table repair", "TGood morning, can you check the DNS?", "Good morning, can you check the DNS?"},
		{"prefix table first match only", "JDon't forget the form", "Don't forget the form"},
		{"single char before uppercase", "BAlright, I'll send it over", "Alright, I'll send it over"},
		{"digit before uppercase", "4I'm on it", "I'm on it"},
		{"symbol before uppercase", "]I'll call later", "I'll call later"},
		{"truncated OK recovered", "K, I'm on it", "OK, I'm on it"},
		{"truncated ok lowercase", "k, Thanks for that", "OK, Thanks for that"},
		{"punctuation then starter", "B. We can do that", ". We can do that"},
		{"starter after non-symbol artifact", "§They are ready", "They are ready"},
		{"leading plus", "+1 for this", "1 for this"},
		{"structured artifact", "streamtyped @ NSAttributedString NSObject +Can you add the pixel?", "Can you add the pixel?"},
		{"trailing object dump", "Sounds good iI NSDictionary", "Sounds good"},
		{"trailing object dump before final newline", "Sounds good iI NSDictionary\n", "Sounds good"},
		{"object dump on an inner line kept", "Sounds good iI NSDictionary\nsee you", "Sounds good iI NSDictionary\nsee you"},
		{"control characters", "Hello\x00 there\x1f", "Hello there"},
		{"invalid utf-8 bytes kept", "\xff\xfeHello", "\xff\xfeHello"},
		{"tabs and newlines kept", "Step one\tdone\r\nStep two", "Step one\tdone\r\nStep two"},
		{"object replacement mojibake", "Check this ï¿¼out", "Check this out"},
		{"object replacement rune", "Photo\uFFFC attached", "Photo attached"},
		{"quoted reaction", `Liked "check the site"`, ""},
		{"reaction anywhere", `Thad Emphasized "see you then"`, ""},
		{"loose reaction", "Emphasized an image", ""},
		{"loose reaction before final newline", "Liked it\n", ""},
		{"loose reaction not on the last line", "Liked it\nthanks\nbye", "Liked it\nthanks\nbye"},
		{"reaction revealed by repair", `oLiked "nice"`, ""},
		{"doubled quotes unwrapped", `""quoted""`, `"quoted"`},
		{"single rune kept", "K", "K"},
		{"trailing whitespace trimmed", "Sure thing  \n", "Sure thing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.raw))
		})
	}
}

func TestMessageNormalizer_IdempotentOnCleanText(t *testing.T) {
	n := NewMessageNormalizer()
	inputs := []string{
		"TGood morning, can you check the DNS?",
		"BAlright, I'll send it over",
		"streamtyped @ NSAttributedString NSObject +Can you add the pixel?",
		"please help",
		"Sounds good iI NSDictionary",
		`""quoted""`,
	}

	for _, raw := range inputs {
		once := n.Normalize(raw)
		assert.Equal(t, once, n.Normalize(once), "input %q", raw)
	}

	// The recovered "OK" reads as a stray "O" before an uppercase letter on a second pass.
	once := n.Normalize("K, I'm on it")
	assert.Equal(t, "OK, I'm on it", once)
	assert.Equal(t, "K, I'm on it", n.Normalize(once))
}

func TestArtifactRules_Order(t *testing.T) {
	n := NewMessageNormalizer()
	require.Len(t, n.artifactRules, 3)
	assert.Equal(t, "upper-after-artifact", n.artifactRules[0].name)
	assert.Equal(t, "punct-then-starter", n.artifactRules[1].name)
	assert.Equal(t, "starter-after-artifact", n.artifactRules[2].name)
}

func TestUpperAfterArtifact(t *testing.T) {
	tests := []struct {
		first rune
		rest  string
		want  string
		fired bool
	}{
		{'B', "Alright", "Alright", true},
		{'7', "Yes", "Yes", true},
		{'#', "I'm here", "I'm here", true},
		{'§', "They", "", false},
		{'B', "alright", "", false},
		{'B', "", "", false},
	}

	for _, tt := range tests {
		got, fired := upperAfterArtifact(tt.first, tt.rest)
		assert.Equal(t, tt.fired, fired, "%q + %q", tt.first, tt.rest)
		assert.Equal(t, tt.want, got)
	}
}

func TestPunctThenStarter(t *testing.T) {
	n := NewMessageNormalizer()
	tests := []struct {
		first rune
		rest  string
		want  string
		fired bool
	}{
		{'K', ", I'm in", "OK, I'm in", true},
		{'k', ", Sure", "OK, Sure", true},
		{'K', ". We can", ". We can", true},
		{'B', ", Thanks", ", Thanks", true},
		{'B', ", maybe", "", false},
		{'B', ",No", "", false},
		{'B', ", I", "", false},
	}

	for _, tt := range tests {
		got, fired := n.punctThenStarter(tt.first, tt.rest)
		assert.Equal(t, tt.fired, fired, "%q + %q", tt.first, tt.rest)
		assert.Equal(t, tt.want, got)
	}
}

func TestStarterAfterArtifact(t *testing.T) {
	n := NewMessageNormalizer()

	got, fired := n.starterAfterArtifact('_', "They said")
	assert.True(t, fired)
	assert.Equal(t, "They said", got)

	_, fired = n.starterAfterArtifact('_', "No")
	assert.False(t, fired)

	_, fired = n.starterAfterArtifact('_', "nothing")
	assert.False(t, fired)
}

func TestNormalize_SharedDefaultIsConcurrencySafe(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Normalize("BAlright, I'll send it over")
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "Alright, I'll send it over", r)
	}
	assert.Same(t, GetDefaultNormalizer(), GetDefaultNormalizer())
}

func TestDefaultTables_PreserveOrder(t *testing.T) {
	fixes := DefaultPrefixFixes()
	assert.Equal(t, PrefixFix{"TGood", "Good"}, fixes[0])
	assert.Equal(t, PrefixFix{"JWe", "We"}, fixes[len(fixes)-1])
	assert.Len(t, fixes, 56)

	starters := DefaultSentenceStarters()
	assert.Equal(t, "I'", starters[0])
	assert.Equal(t, "Thank", starters[len(starters)-1])
}
