package graph

import (
	"maps"
	"slices"
	"sync"
)

// Authorship and qualifier properties written by the reconciler.
const (
	PropertyAuthor       = "P50"   // author, item value
	PropertyAuthorName   = "P2093" // author name string
	PropertyListPosition = "P1545" // series ordinal
	PropertyNamedAs      = "P1932" // object named as
	PropertyInstanceOf   = "P31"
	PropertyOccupation   = "P106"
)

// Vocabulary is the read-only set of node and property ids the engine
// writes and reads. Build it once with DefaultVocabulary and pass it
// explicitly to the components that need it.
type Vocabulary struct {
	// Language is the label/alias language for created nodes.
	Language string

	// Human is the "is-human" class used for search filters and new nodes.
	Human string

	// Researcher is the occupation given to created author nodes.
	Researcher string

	// AuthorIDs maps author external-id properties to a display name.
	AuthorIDs map[string]string

	// PublicationIDs maps publication external-id properties to a display name.
	PublicationIDs map[string]string

	// Languages maps language codes to their graph nodes.
	Languages map[string]string
}

// DefaultVocabulary returns the process-wide vocabulary, built on first use.
var DefaultVocabulary = sync.OnceValue(func() *Vocabulary {
	return &Vocabulary{
		Language:   "en",
		Human:      "Q5",
		Researcher: "Q1650915",
		AuthorIDs: map[string]string{
			"P496":  "ORCID",
			"P214":  "VIAF",
			"P213":  "ISNI",
			"P1053": "ResearcherID",
			"P1153": "Scopus author",
			"P1960": "Google Scholar author",
			"P4012": "Semantic Scholar author",
		},
		PublicationIDs: map[string]string{
			"P356":  "DOI",
			"P698":  "PubMed",
			"P932":  "PMC",
			"P818":  "arXiv",
			"P4011": "Semantic Scholar paper",
		},
		Languages: map[string]string{
			"en": "Q1860",
			"de": "Q188",
			"fr": "Q150",
			"es": "Q1321",
			"it": "Q652",
			"nl": "Q7411",
			"pt": "Q5146",
			"ja": "Q5287",
			"zh": "Q7850",
			"ru": "Q7737",
		},
	}
})

// AuthorIDProperties returns the author external-id properties, sorted.
func (v *Vocabulary) AuthorIDProperties() []string {
	return slices.Sorted(maps.Keys(v.AuthorIDs))
}

// PublicationIDProperties returns the publication external-id properties, sorted.
func (v *Vocabulary) PublicationIDProperties() []string {
	return slices.Sorted(maps.Keys(v.PublicationIDs))
}

// LanguageItem returns the node for a language code.
func (v *Vocabulary) LanguageItem(code string) (string, bool) {
	item, ok := v.Languages[code]
	return item, ok
}

// IDName returns the display name of an external-id property, or the property itself.
func (v *Vocabulary) IDName(property string) string {
	if name, ok := v.AuthorIDs[property]; ok {
		return name
	}
	if name, ok := v.PublicationIDs[property]; ok {
		return name
	}
	return property
}
