// Package normalization repairs the corruption artifacts that chat transcript exports
// leave in message text.
package normalization

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// controlCharacters excludes tab, newline and carriage return. Bytes that are not valid
// UTF-8 pass through untouched.
var controlCharacters = regexp.MustCompile(`[\x{FFFC}\x00-\x08\x0B\x0C\x0E-\x1F]`)

// PrefixFix replaces a corrupted message prefix with its repaired form.
type PrefixFix struct {
	Bad  string
	Good string
}

// objectReplacementMojibake is U+FFFC decoded as Latin-1 and re-encoded as UTF-8.
const objectReplacementMojibake = "ï¿¼"

// artifactSymbols are the symbols accepted as a stray leading character before an uppercase letter.
const artifactSymbols = ".,[]{}()<>!@#$%^&*-+=|\\:;\"'`~_?/"

// sentencePunctuation may sit between a stray leading character and a sentence starter.
const sentencePunctuation = ".,;:!?"

// reactionPhrases mark a message as a rich-text reaction.
var reactionPhrases = []string{`Emphasized "`, `Liked "`, `Disliked "`}

// MessageNormalizer cleans raw message text. It holds no mutable state and is safe for concurrent use.
type MessageNormalizer struct {
	prefixFixes      []PrefixFix
	sentenceStarters []string
	artifactRules    []artifactRule

	structuredArtifact *regexp.Regexp
	trailingArtifact   *regexp.Regexp
	looseReaction      *regexp.Regexp
}

// NewMessageNormalizer creates a normalizer with the built-in repair tables.
func NewMessageNormalizer() *MessageNormalizer {
	n := &MessageNormalizer{
		prefixFixes:        DefaultPrefixFixes(),
		sentenceStarters:   DefaultSentenceStarters(),
		structuredArtifact: regexp.MustCompile(`^streamtyped\s+@\s+[^+]+\+`),
		trailingArtifact:   regexp.MustCompile(`iI.*(?:NSDictionary)?(\n?)$`),
		looseReaction:      regexp.MustCompile(`^.*(?:Emphasized|Liked|Disliked)\s+.*\n?$`),
	}
	n.artifactRules = []artifactRule{
		{name: "upper-after-artifact", apply: upperAfterArtifact},
		{name: "punct-then-starter", apply: n.punctThenStarter},
		{name: "starter-after-artifact", apply: n.starterAfterArtifact},
	}
	return n
}

// Normalize maps raw message text to cleaned text. An empty result means the message
// carries no usable content and must be dropped.
func (n *MessageNormalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text := n.structuredArtifact.ReplaceAllString(raw, "")
	text = removeControlCharacters(text)
	// A single trailing newline survives the artifact it follows.
	text = n.trailingArtifact.ReplaceAllString(text, "${1}")
	text = strings.TrimPrefix(text, "+")
	text = n.fixPrefix(text)
	text = n.stripSingleCharArtifact(text)

	if n.isReaction(text) {
		return ""
	}

	text = unwrapDoubledQuotes(text)
	return strings.TrimSpace(text)
}

// fixPrefix applies the first matching table entry and stops.
func (n *MessageNormalizer) fixPrefix(text string) string {
	for _, fix := range n.prefixFixes {
		if strings.HasPrefix(text, fix.Bad) {
			return fix.Good + text[len(fix.Bad):]
		}
	}
	return text
}

func (n *MessageNormalizer) stripSingleCharArtifact(text string) string {
	if utf8.RuneCountInString(text) <= 1 {
		return text
	}
	first, size := utf8.DecodeRuneInString(text)
	rest := text[size:]
	for _, rule := range n.artifactRules {
		if repaired, ok := rule.apply(first, rest); ok {
			return repaired
		}
	}
	return text
}

func (n *MessageNormalizer) isReaction(text string) bool {
	for _, phrase := range reactionPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return n.looseReaction.MatchString(text)
}

func (n *MessageNormalizer) startsWithStarter(text string) bool {
	for _, starter := range n.sentenceStarters {
		if strings.HasPrefix(text, starter) {
			return true
		}
	}
	return false
}

// artifactRule decides whether the first rune of a message is a stray export artifact.
// Rules are evaluated in order and the first one that fires wins.
type artifactRule struct {
	name  string
	apply func(first rune, rest string) (string, bool)
}

// upperAfterArtifact: "BAlright" -> "Alright", "4I'm" -> "I'm".
func upperAfterArtifact(first rune, rest string) (string, bool) {
	next, _ := utf8.DecodeRuneInString(rest)
	if !unicode.IsUpper(next) {
		return "", false
	}
	if unicode.IsLetter(first) || unicode.IsNumber(first) || strings.ContainsRune(artifactSymbols, first) {
		return rest, true
	}
	return "", false
}

// punctThenStarter: "B. We" -> ". We", "K, I'm" -> "OK, I'm".
func (n *MessageNormalizer) punctThenStarter(first rune, rest string) (string, bool) {
	if utf8.RuneCountInString(rest) <= 3 {
		return "", false
	}
	if !strings.ContainsRune(sentencePunctuation, rune(rest[0])) || rest[1] != ' ' {
		return "", false
	}
	if !n.startsWithStarter(rest[2:]) {
		return "", false
	}
	if (first == 'K' || first == 'k') && strings.HasPrefix(rest, ", ") {
		return "OK" + rest, true
	}
	return rest, true
}

// starterAfterArtifact: "]I'll" -> "I'll", "_They" -> "They".
func (n *MessageNormalizer) starterAfterArtifact(_ rune, rest string) (string, bool) {
	if utf8.RuneCountInString(rest) <= 2 {
		return "", false
	}
	if n.startsWithStarter(rest) {
		return rest, true
	}
	return "", false
}

func removeControlCharacters(text string) string {
	text = strings.ReplaceAll(text, objectReplacementMojibake, "")
	return controlCharacters.ReplaceAllString(text, "")
}

func unwrapDoubledQuotes(text string) string {
	if strings.HasPrefix(text, `""`) && strings.HasSuffix(text, `""`) {
		return text[1 : len(text)-1]
	}
	return text
}
