package quiz

import "errors"

// Recoverable failures surfaced to the user. Store failures are wrapped and
// propagated as-is.
var (
	// ErrInsufficientVocabulary means the word pool cannot produce a full
	// question (no words, or fewer than the required distinct distractors).
	ErrInsufficientVocabulary = errors.New("not enough words to compose a quiz")

	// ErrSessionConflict means the user already has an active quiz session.
	ErrSessionConflict = errors.New("quiz session already active")

	// ErrStaleQuestion means the answered question was replaced or never existed.
	ErrStaleQuestion = errors.New("question expired")

	// ErrQuestionPending means the user already holds an unanswered question.
	ErrQuestionPending = errors.New("a question is already awaiting an answer")

	// ErrInvalidOption means the submitted option index is out of range.
	ErrInvalidOption = errors.New("invalid option index")
)
