package synthesis

// ArtifactKind is the closed set of insight categories a synthesis pass can
// produce.
type ArtifactKind string

const (
	KindInsight          ArtifactKind = "insight"
	KindOpenQuestion     ArtifactKind = "openQuestion"
	KindQuote            ArtifactKind = "quote"
	KindFollowUpQuestion ArtifactKind = "followUpQuestion"
	KindContextExpansion ArtifactKind = "contextExpansion"
)

// artifactCaps bounds how many artifacts of each kind one synthesis (or
// fallback) invocation may emit. Quotes are uncapped.
var artifactCaps = map[ArtifactKind]int{
	KindInsight:          3,
	KindOpenQuestion:     4,
	KindFollowUpQuestion: 1,
	KindContextExpansion: 1,
}

func (k ArtifactKind) Valid() bool {
	switch k {
	case KindInsight, KindOpenQuestion, KindQuote, KindFollowUpQuestion, KindContextExpansion:
		return true
	default:
		return false
	}
}

// Artifact is a single synthesized or heuristically-extracted insight.
type Artifact struct {
	Kind    ArtifactKind `json:"kind"`
	Title   string       `json:"title"`
	Content string       `json:"content"`
}

// Book identifies the book a session is about.
type Book struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Context is the reading context fed into synthesis alongside the
// transcript. All list fields default to empty; the book is optional.
type Context struct {
	Book             *Book    `json:"book,omitempty"`
	CurrentlyReading []Book   `json:"currently_reading,omitempty"`
	WantToRead       []Book   `json:"want_to_read,omitempty"`
	Read             []Book   `json:"read,omitempty"`
	RecentNotes      []string `json:"recent_notes,omitempty"`
}

// CompletionRequest is one LLM call: generate text given a prompt.
type CompletionRequest struct {
	Model           string
	System          string
	Prompt          string
	Temperature     *float64
	MaxTokens       int
	ReasoningEffort string
}

// CompletionResponse carries the generated text plus the provider's raw
// usage object, whose shape varies by provider.
type CompletionResponse struct {
	Content string
	Model   string
	Usage   map[string]any
}

// applyCaps trims a parsed artifact batch to the per-kind bounds, keeping
// first-seen order within each kind.
func applyCaps(artifacts []Artifact) []Artifact {
	counts := make(map[ArtifactKind]int, len(artifactCaps))
	capped := make([]Artifact, 0, len(artifacts))
	for _, a := range artifacts {
		if !a.Kind.Valid() {
			continue
		}
		if max, bounded := artifactCaps[a.Kind]; bounded && counts[a.Kind] >= max {
			continue
		}
		counts[a.Kind]++
		capped = append(capped, a)
	}
	return capped
}
