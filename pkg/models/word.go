package models

import "time"

// WordType categorizes a vocabulary entry
type WordType string

const (
	WordTypeNoun        WordType = "noun"
	WordTypeVerb        WordType = "verb"
	WordTypeAdjective   WordType = "adjective"
	WordTypeAdverb      WordType = "adverb"
	WordTypePronoun     WordType = "pronoun"
	WordTypePreposition WordType = "preposition"
	WordTypeConjunction WordType = "conjunction"
	WordTypePhrase      WordType = "phrase"
)

// WordTypes lists every valid category
var WordTypes = []WordType{
	WordTypeNoun,
	WordTypeVerb,
	WordTypeAdjective,
	WordTypeAdverb,
	WordTypePronoun,
	WordTypePreposition,
	WordTypeConjunction,
	WordTypePhrase,
}

// ValidWordType reports whether s is one of the known categories
func ValidWordType(s string) bool {
	for _, t := range WordTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// Word represents a Greek vocabulary entry with its Russian translation
type Word struct {
	ID        int64     `json:"id" db:"id"`
	Greek     string    `json:"greek" db:"greek"`
	Russian   string    `json:"russian" db:"russian"`
	WordType  WordType  `json:"word_type" db:"word_type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	CreatedBy int64     `json:"created_by" db:"created_by"`
}
