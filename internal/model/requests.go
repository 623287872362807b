package model

// FormInput is the editable part of a form
type FormInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
}

// SubmitResponseRequest is a respondent's submission
type SubmitResponseRequest struct {
	Answers []Answer `json:"answers"`
}

// SubmitResponseResult acknowledges a stored submission
type SubmitResponseResult struct {
	ResponseID    string `json:"responseId"`
	ResponseCount int    `json:"responseCount"`
}

// ResponseSubmittedEvent is pushed to the form owner's live feed
type ResponseSubmittedEvent struct {
	FormID        string   `json:"formId"`
	Response      Response `json:"response"`
	ResponseCount int      `json:"responseCount"`
}

// UploadResult locates a stored answer file. URL is what the respondent submits
// as the answer value.
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}
