package models

// QuestionRecord is a question as delivered by the configuration store.
type QuestionRecord struct {
	ID               string            `json:"id" yaml:"id" db:"id"`
	Order            int               `json:"order" yaml:"order" db:"sort_order"`
	Text             string            `json:"text" yaml:"text" db:"question_text"`
	AnswerKey        string            `json:"answerKey" yaml:"answer_key" db:"answer_key"`
	AnswerType       string            `json:"answerType" yaml:"answer_type" db:"answer_type"`
	Options          map[string]string `json:"options,omitempty" yaml:"options,omitempty" db:"options"`
	BranchMap        map[string]string `json:"branchMap,omitempty" yaml:"branch_map,omitempty" db:"branch_map"`
	DisplayCondition string            `json:"displayCondition,omitempty" yaml:"display_condition,omitempty" db:"display_condition"`
}

// RuleRecord is a conclusion (aid program) as delivered by the configuration store.
type RuleRecord struct {
	ID          string `json:"id" yaml:"id" db:"id"`
	Title       string `json:"title" yaml:"title" db:"title"`
	Condition   string `json:"condition" yaml:"condition" db:"condition"`
	Category    string `json:"category" yaml:"category" db:"category"`
	Message     string `json:"message" yaml:"message" db:"message"`
	FormURL     string `json:"formUrl,omitempty" yaml:"form_url,omitempty" db:"form_url"`
	InfoURL     string `json:"infoUrl,omitempty" yaml:"info_url,omitempty" db:"info_url"`
	ActionLabel string `json:"actionLabel,omitempty" yaml:"action_label,omitempty" db:"action_label"`
}

// Questionnaire bundles the question and rule records of one configured questionnaire.
type Questionnaire struct {
	ID        string           `json:"id" yaml:"id"`
	Questions []QuestionRecord `json:"questions" yaml:"questions"`
	Rules     []RuleRecord     `json:"rules" yaml:"rules"`
}
