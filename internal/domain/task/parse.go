package task

const ParseTaskType = "ParseTask"

type ParseTask struct {
	JobID  string `json:"job_id"`
	URL    string `json:"url"`
	Single bool   `json:"single"` // Parse only the given page, skip the product group
}

func (t *ParseTask) TaskType() string {
	return ParseTaskType
}

func (t *ParseTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
