package normalization

// DefaultPrefixFixes returns the corrupted-prefix repairs observed in exported transcripts.
// Order matters: the first matching entry is the only one applied.
func DefaultPrefixFixes() []PrefixFix {
	return []PrefixFix{
		{"TGood", "Good"}, {"GLmk", "Lmk"}, {"GI have", "I have"}, {"JDon't", "Don't"},
		{"kAwesome", "Awesome"}, {"nThey're", "They're"}, {".Good", "Good"},
		{"/Laughed", "Laughed"}, {"lIt is", "It is"}, {"lYeah", "Yeah"},
		{"cI have", "I have"}, {"oLiked", "Liked"}, {"CLiked", "Liked"},
		{"eSHIP", "SHIP"}, {"9Ooh", "Ooh"}, {"4Knew", "Knew"}, {"qMaj", "Maj"},
		{"KVery", "Very"}, {"*Nice", "Nice"}, {"7Yes", "Yes"}, {"7All", "All"},
		{"LLove", "Love"}, {"JDon", "Don"},
		{"iUp", "Up"}, {"JBlueHost", "BlueHost"}, {"/They", "They"}, {"2They", "They"},
		{"lI", "I"}, {"oK", "OK"}, {"jI", "I"}, {"OCan", "Can"}, {"kGood", "Good"},
		{"SWe", "We"}, {"rOperation", "Operation"}, {"0Phantom", "Phantom"},
		{"QLiked", "Liked"}, {"0Emphasized", "Emphasized"}, {"%Emphasized", "Emphasized"},
		{"'Got", "Got"}, {".Dropping", "Dropping"},
		{"AGood", "Good"}, {"JPlease", "Please"}, {"AAll", "All"}, {"JI", "I"},
		{"AGot", "Got"}, {"JThey", "They"}, {"AThank", "Thank"}, {"JThanks", "Thanks"},
		{"AYeah", "Yeah"}, {"JYes", "Yes"}, {"ANice", "Nice"}, {"JGood", "Good"},
		{"ASounds", "Sounds"}, {"JLet", "Let"}, {"AWe", "We"}, {"JWe", "We"},
	}
}

// DefaultSentenceStarters returns the words that commonly open a real message.
func DefaultSentenceStarters() []string {
	return []string{
		"I'", "I ", "The", "They", "This", "That", "We", "You", "He", "She", "It",
		"Can", "Will", "Could", "Would", "Should", "Please", "Let", "All", "Good",
		"Yes", "No", "OK", "Alright", "Sure", "Thanks", "Thank",
	}
}
