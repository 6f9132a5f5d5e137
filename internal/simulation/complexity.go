package simulation

import (
	"regexp"
	"strings"
)

// technicalVocabulary matches the support-domain jargon a customer message
// might contain. Matching is per whitespace token, case-insensitive.
var technicalVocabulary = map[string]bool{
	"server": true, "database": true, "router": true, "firewall": true,
	"network": true, "wifi": true, "ethernet": true, "vpn": true,
	"browser": true, "cache": true, "cookies": true, "driver": true,
	"password": true, "login": true, "username": true, "account": true,
	"email": true, "outlook": true, "printer": true, "monitor": true,
	"software": true, "hardware": true, "update": true, "install": true,
	"uninstall": true, "reboot": true, "restart": true, "sync": true,
	"backup": true, "restore": true, "configuration": true, "settings": true,
	"bandwidth": true, "latency": true, "timeout": true, "crash": true,
	"error": true, "exception": true, "bluescreen": true, "malware": true,
	"encryption": true, "certificate": true, "proxy": true, "subnet": true,
}

var (
	// acronymPattern matches shouty technical acronyms (DNS, SSL, API...).
	acronymPattern = regexp.MustCompile(`^[A-Z]{2,6}[0-9]*$`)
	// fileExtensionPattern matches tokens that look like file names.
	fileExtensionPattern = regexp.MustCompile(`(?i)^\S+\.(exe|dll|msi|bat|sh|zip|rar|pdf|docx?|xlsx?|pptx?|csv|log|tmp|ini|cfg|sys|iso|png|jpe?g)$`)
	// repeatedPunctPattern matches stacked terminal punctuation ("!!", "?!").
	repeatedPunctPattern = regexp.MustCompile(`[!?]{2,}`)
)

// urgencyWords signal time pressure; distressWords signal frustration.
// Both count toward emotional intensity.
var urgencyWords = map[string]bool{
	"urgent": true, "urgently": true, "asap": true, "immediately": true,
	"now": true, "emergency": true, "critical": true, "deadline": true,
	"quickly": true, "hurry": true,
}

var distressWords = map[string]bool{
	"help": true, "frustrated": true, "frustrating": true, "angry": true,
	"furious": true, "annoyed": true, "annoying": true, "terrible": true,
	"awful": true, "horrible": true, "unacceptable": true, "ridiculous": true,
	"broken": true, "useless": true, "stuck": true, "desperate": true,
	"cannot": true, "can't": true, "won't": true, "nothing": true,
}

// trimWordPunct strips leading/trailing punctuation so "server!!!" and
// "(urgent)" still match the vocabularies. Inner punctuation is kept so
// contractions and file names survive.
func trimWordPunct(token string) string {
	return strings.Trim(token, ".,;:!?\"'()[]{}")
}

// IsTechnicalToken reports whether a single whitespace token reads as
// technical: known vocabulary, an acronym, or a file name.
func IsTechnicalToken(token string) bool {
	trimmed := trimWordPunct(token)
	if trimmed == "" {
		return false
	}
	if technicalVocabulary[strings.ToLower(trimmed)] {
		return true
	}
	if acronymPattern.MatchString(trimmed) {
		return true
	}
	return fileExtensionPattern.MatchString(trimmed)
}

// IsUrgentToken reports whether a single whitespace token signals urgency.
func IsUrgentToken(token string) bool {
	return urgencyWords[strings.ToLower(trimWordPunct(token))]
}

// AnalyzeComplexity classifies a raw message. It is pure and deterministic;
// empty input yields the zero classification with intensity 0.
func AnalyzeComplexity(text string) MessageComplexity {
	words := strings.Fields(text)

	c := MessageComplexity{
		WordCount:     len(words),
		QuestionCount: strings.Count(text, "?"),
	}

	indicators := 0
	for _, w := range words {
		if IsTechnicalToken(w) {
			c.TechnicalTerms++
		}
		lower := strings.ToLower(trimWordPunct(w))
		if urgencyWords[lower] || distressWords[lower] {
			indicators++
		}
	}
	indicators += len(repeatedPunctPattern.FindAllString(text, -1))

	// Guard the divide for empty/whitespace-only text.
	denom := c.WordCount
	if denom < 1 {
		denom = 1
	}
	c.EmotionalIntensity = float64(indicators) / float64(denom) * 10
	if c.EmotionalIntensity > 1 {
		c.EmotionalIntensity = 1
	}
	if len(words) == 0 {
		c.EmotionalIntensity = 0
	}

	switch {
	case c.TechnicalTerms > 5 || c.WordCount > 100 || c.EmotionalIntensity > 0.6:
		c.Level = ComplexityComplex
	case c.TechnicalTerms > 2 || c.WordCount > 50 || c.EmotionalIntensity > 0.3:
		c.Level = ComplexityModerate
	default:
		c.Level = ComplexitySimple
	}
	return c
}
