// Package keywords holds the single shared AI keyword table used by the
// relevance filter and by adapters that augment free-text queries with
// AI-domain terms. Keeping one copy avoids drift between the two consumers.
package keywords

import "strings"

// relevanceTerms are matched as lower-case substrings against
// headline+summary. Intentionally coarse, no NLP.
var relevanceTerms = []string{
	"artificial intelligence", "machine learning", "deep learning", "neural network",
	"ai ", " ai", "openai", "chatgpt", "gpt", "llm", "language model",
	"computer vision", "natural language processing", "nlp",
	"robotics", "automation", "algorithm", "data science",
	"tensorflow", "pytorch", "transformer", "bert", "claude",
	"anthropic", "google ai", "microsoft ai", "meta ai",
}

// searchTerms form the disjunction adapters attach to upstream queries
// when the provider is not inherently AI-scoped.
var searchTerms = []string{
	"artificial intelligence",
	"machine learning",
	"AI technology",
	"neural networks",
	"deep learning",
	"OpenAI",
	"ChatGPT",
	"AI research",
}

// IsRelevant reports whether the headline+summary pair reads as AI-related.
// Deterministic and pure, accepts the false-positive trade-off of plain
// substring matching.
func IsRelevant(headline, summary string) bool {
	content := strings.ToLower(headline + " " + summary)
	for _, term := range relevanceTerms {
		if strings.Contains(content, term) {
			return true
		}
	}
	return false
}

// SearchDisjunction returns the OR-joined AI search terms for upstream
// query augmentation.
func SearchDisjunction() string {
	return strings.Join(searchTerms, " OR ")
}

// category keyword tables, checked in order; first match wins
var categories = []struct {
	name  string
	terms []string
}{
	{"AI Models", []string{
		"openai", "gpt", "chatgpt", "claude", "gemini", "llama", "language model",
		"llm", "transformer", "neural network", "deep learning", "machine learning",
		"anthropic", "mistral", "palm", "bard"}},
	{"AI Research", []string{
		"research", "study", "breakthrough", "discovery", "paper", "arxiv",
		"experiment", "algorithm", "intelligence", "cognitive", "neural",
		"academic", "university", "mit", "stanford", "deepmind"}},
	{"Autonomous AI", []string{
		"autonomous", "self-driving", "tesla", "robotics", "robot", "automation",
		"autopilot", "waymo", "cruise", "drone", "unmanned", "autonomous vehicle"}},
	{"AI Healthcare", []string{
		"healthcare", "medical", "drug", "disease", "diagnosis", "treatment",
		"patient", "medicine", "clinical", "biotech", "pharmaceutical", "health",
		"cancer", "therapy"}},
	{"AI Tools", []string{
		"tool", "productivity", "copilot", "assistant", "app", "software",
		"platform", "api", "integration", "workflow", "automation", "business",
		"enterprise", "saas"}},
	{"AI Hardware", []string{
		"chip", "nvidia", "processor", "hardware", "gpu", "tpu", "semiconductor",
		"computing", "infrastructure", "data center", "cloud", "amd", "intel",
		"quantum"}},
	{"AI Ethics", []string{
		"ethics", "safety", "regulation", "policy", "governance", "bias",
		"fairness", "transparency", "accountability", "privacy", "security",
		"legislation", "law", "guidelines", "responsible"}},
}

// Categorize assigns a display section to an article based on its
// headline and summary, falling back to "General AI".
func Categorize(headline, summary string) string {
	content := strings.ToLower(headline + " " + summary)
	for _, cat := range categories {
		for _, term := range cat.terms {
			if strings.Contains(content, term) {
				return cat.name
			}
		}
	}
	return "General AI"
}
