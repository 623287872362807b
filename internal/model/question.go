package model

// QuestionType defines the type of question
type QuestionType string

const (
	QuestionTypeShortText    QuestionType = "text"            // Single-line free text
	QuestionTypeLongText     QuestionType = "textarea"        // Multi-line free text
	QuestionTypeSingleChoice QuestionType = "multiple-choice" // Exactly one option
	QuestionTypeMultiChoice  QuestionType = "checkboxes"      // Any number of options
	QuestionTypeRating       QuestionType = "rating"          // 1-5 stars
	QuestionTypeFileUpload   QuestionType = "file-upload"     // Object storage URL
)

// RatingScale is the set of values offered by rating questions.
var RatingScale = []string{"1", "2", "3", "4", "5"}

// Known reports whether t is one of the supported question types.
func (t QuestionType) Known() bool {
	switch t {
	case QuestionTypeShortText, QuestionTypeLongText,
		QuestionTypeSingleChoice, QuestionTypeMultiChoice,
		QuestionTypeRating, QuestionTypeFileUpload:
		return true
	}
	return false
}

// IsChoice reports whether the question carries an option list.
func (t QuestionType) IsChoice() bool {
	return t == QuestionTypeSingleChoice || t == QuestionTypeMultiChoice
}

// Filterable reports whether responses can be narrowed by answers to this type.
func (t QuestionType) Filterable() bool {
	return t == QuestionTypeSingleChoice || t == QuestionTypeRating
}

// Question is a single form field definition
type Question struct {
	ID       string       `json:"id" bson:"id"`
	Type     QuestionType `json:"type" bson:"type"`
	Text     string       `json:"text" bson:"text"`
	Options  []string     `json:"options,omitempty" bson:"options,omitempty"` // choice types only
	Required bool         `json:"required" bson:"required"`
}

// FilterOptions returns the values a filter on q may take.
func (q Question) FilterOptions() []string {
	switch q.Type {
	case QuestionTypeSingleChoice:
		return q.Options
	case QuestionTypeRating:
		return RatingScale
	}
	return nil
}
