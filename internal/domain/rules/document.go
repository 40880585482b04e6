package rules

// Document is the serializable form of a RuleSet. Slice order is rule priority.
type Document struct {
	Patterns          []PatternDocument    `yaml:"patterns"`
	Fallback          FallbackDocument     `yaml:"fallback"`
	Urgency           UrgencyDocument      `yaml:"urgency"`
	ActionKeywords    []string             `yaml:"action_keywords"`
	WorkKeywords      []string             `yaml:"work_keywords"`
	ReactionPhrases   []string             `yaml:"reaction_phrases"`
	ReactionKeywords  []string             `yaml:"reaction_keywords"`
	ExclusionPatterns []string             `yaml:"exclusion_patterns"`
	NonRequestPhrases []string             `yaml:"non_request_phrases"`
	ShortMessage      ShortMessageDocument `yaml:"short_message"`
}

// PatternDocument describes one request pattern. Patterns are compiled case-insensitively.
type PatternDocument struct {
	Pattern       string   `yaml:"pattern"`
	Type          string   `yaml:"type"`
	Category      string   `yaml:"category"`
	DefaultEffort string   `yaml:"default_effort"`
	Keywords      []string `yaml:"keywords,omitempty"`
}

// FallbackDocument describes the classification used when only keyword signals match.
type FallbackDocument struct {
	Type          string `yaml:"type"`
	Category      string `yaml:"category"`
	DefaultEffort string `yaml:"default_effort"`
}

// UrgencyDocument lists the urgency indicator substrings. High wins over low.
type UrgencyDocument struct {
	High []string `yaml:"high"`
	Low  []string `yaml:"low"`
}

// ShortMessageDocument configures the short-message exclusion. MaxTokens 0 disables it.
type ShortMessageDocument struct {
	MaxTokens  int      `yaml:"max_tokens"`
	Exceptions []string `yaml:"exceptions"`
}

// DefaultDocument returns a fresh copy of the built-in rule tables.
func DefaultDocument() Document {
	return Document{
		Patterns: []PatternDocument{
			{
				Pattern:       `add.*?webhook.*?fluent`,
				Type:          "Form Integration",
				Category:      "Forms",
				DefaultEffort: "Small",
				Keywords:      []string{"webhook", "fluent", "integration"},
			},
			{
				Pattern:       `gravity form.*?webhook`,
				Type:          "Form Integration",
				Category:      "Forms",
				DefaultEffort: "Small",
				Keywords:      []string{"gravity", "form", "webhook"},
			},
			{
				Pattern:       `nameserver.*?cutover`,
				Type:          "DNS Cutover",
				Category:      "DNS",
				DefaultEffort: "Medium",
				Keywords:      []string{"nameserver", "dns", "cutover"},
			},
			{
				Pattern:       `migrat.*?(site|website)`,
				Type:          "Site Migration",
				Category:      "Hosting",
				DefaultEffort: "Large",
				Keywords:      []string{"migrate", "migration", "transfer"},
			},
			{
				Pattern:       `backup|zip.*?site`,
				Type:          "Backup Request",
				Category:      "Hosting",
				DefaultEffort: "Medium",
				Keywords:      []string{"backup", "zip", "archive"},
			},
			{
				Pattern:       `remove.*?form`,
				Type:          "Form Removal",
				Category:      "Forms",
				DefaultEffort: "Small",
				Keywords:      []string{"remove", "delete", "form"},
			},
			{
				Pattern:       `please use this email`,
				Type:          "Email Routing",
				Category:      "Email",
				DefaultEffort: "Small",
				Keywords:      []string{"email", "routing", "leads"},
			},
			{
				Pattern:       `update.*?license`,
				Type:          "License Update",
				Category:      "Billing",
				DefaultEffort: "Small",
				Keywords:      []string{"license", "update", "renewal"},
			},
			{
				Pattern:       `can you.*?(add|create|update|fix|check)`,
				Type:          "General Request",
				Category:      "Support",
				DefaultEffort: "Medium",
				Keywords:      []string{"request", "help", "support"},
			},
			{
				Pattern:       `need(s)?\s+(to|you|help)`,
				Type:          "General Request",
				Category:      "Support",
				DefaultEffort: "Medium",
				Keywords:      []string{"need", "help", "assistance"},
			},
		},
		Fallback: FallbackDocument{
			Type:          "General Request",
			Category:      "Support",
			DefaultEffort: "Medium",
		},
		Urgency: UrgencyDocument{
			High: []string{"urgent", "asap", "immediately", "today", "critical", "emergency", "100% by"},
			Low:  []string{"when you can", "no rush", "whenever", "eventually"},
		},
		ActionKeywords: []string{
			"please", "can you", "could you", "need", "add", "update", "fix",
			"create", "setup", "configure", "install", "remove", "delete",
			"check", "review", "test", "migrate", "backup",
		},
		WorkKeywords: []string{
			"website", "site", "domain", "dns", "nameserver", "hosting",
			"form", "webhook", "email", "leads", "tag", "pixel", "analytics",
			"wordpress", "elementor", "plugin", "staging", "migration",
			"backup", "license", "credential", "login", "password",
		},
		ReactionPhrases:  []string{`Emphasized "`, `Liked "`, `Disliked "`},
		ReactionKeywords: []string{"emphasized ", "liked ", "disliked "},
		ExclusionPatterns: []string{
			`^all good`,
			`^got it`,
			`^perfect`,
			`^thanks?$`,
			`^thank you`,
			`^ok$`,
			`^okay$`,
			`^yes$`,
			`^no$`,
			`^sounds good`,
			`^works for me`,
			`^let me know`,
			`just wanted to (let you know|update|mention)`,
			`got some .* that might`,
			`^i'll (call|text|email)`,
			`^just (called|texted|emailed)`,
			`respectfully`,
			`^sorry to bother`,
			// No "good morning"/"good afternoon": those often open a real request.
			`^lol$`,
			`^haha`,
		},
		NonRequestPhrases: []string{
			"all good", "got it", "perfect", "sounds good", "works for me",
			"let me know", "just wanted to update", "just fyi", "heads up",
			"by the way", "btw", "just so you know", "for what it's worth",
		},
		ShortMessage: ShortMessageDocument{
			MaxTokens:  2,
			Exceptions: []string{"please help", "need help"},
		},
	}
}
