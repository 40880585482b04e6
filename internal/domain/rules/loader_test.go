package rules

import (
	"os"
	"path/filepath"
	"testing"

	"chatledger/internal/domain/errors/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalRules = `
patterns:
  - pattern: "reset.*?password"
    type: Password Reset
    category: Access
    default_effort: Small
fallback:
  type: General Request
  category: Support
  default_effort: Medium
urgency:
  high: [urgent]
  low: [no rush]
action_keywords: [reset, please]
work_keywords: [password, login]
exclusion_patterns: ["^thanks?$"]
short_message:
  max_tokens: 1
`

func TestParse_MinimalDocument(t *testing.T) {
	doc, err := Parse([]byte(minimalRules))
	require.NoError(t, err)

	rs, err := Build(doc)
	require.NoError(t, err)
	require.Len(t, rs.Patterns, 1)
	assert.Equal(t, "Access", rs.Patterns[0].Category)
	assert.True(t, rs.Patterns[0].Matcher.Match("Please RESET my password"))
	assert.Len(t, rs.Exclusions, 2)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(minimalRules + "unexpected: true\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestParse_RejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("patterns: [\n"))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestMarshal_RoundTripsDefaultDocument(t *testing.T) {
	data, err := DefaultDocument().Marshal()
	require.NoError(t, err)

	doc, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, DefaultDocument(), doc)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalRules), 0o600))

	rs, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, rs.Patterns, 1)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	rs, err := Load("")
	require.NoError(t, err)
	assert.Same(t, Default(), rs)
}
