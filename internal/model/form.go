package model

import "time"

// Form is a persistent questionnaire created by an owner
type Form struct {
	ID            string     `json:"id" bson:"_id,omitempty"`
	OwnerID       string     `json:"ownerId" bson:"ownerId"`
	Title         string     `json:"title" bson:"title"`
	Description   string     `json:"description" bson:"description"`
	Questions     []Question `json:"questions" bson:"questions"`
	ResponseCount int        `json:"responseCount" bson:"responseCount"`
	CreatedAt     time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" bson:"updatedAt"` // Also the schema version
}

// SchemaVersion identifies the current question list. Any edit changes it.
func (f *Form) SchemaVersion() int64 {
	return f.UpdatedAt.UnixNano()
}

// Question looks up a question by id.
func (f *Form) Question(id string) (Question, bool) {
	for _, q := range f.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// PublicForm is what respondents see
type PublicForm struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
}

// Public strips owner-only fields.
func (f *Form) Public() *PublicForm {
	return &PublicForm{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Questions:   f.Questions,
	}
}
