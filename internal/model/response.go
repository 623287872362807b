package model

import "time"

// Answer is one response's value for one question
type Answer struct {
	QuestionID string      `json:"questionId" bson:"questionId"`
	Value      AnswerValue `json:"value" bson:"value"`
}

// Response is one submission event. Immutable once stored.
type Response struct {
	ID          string    `json:"id" bson:"_id"`
	FormID      string    `json:"formId" bson:"formId"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submittedAt"`
	Answers     []Answer  `json:"answers" bson:"answers"`
}

// Answer returns the first answer to questionID.
func (r *Response) Answer(questionID string) (Answer, bool) {
	for _, a := range r.Answers {
		if a.QuestionID == questionID {
			return a, true
		}
	}
	return Answer{}, false
}
