package models

// EvaluationResult is the structured verdict the collaborator returns for a
// finished interview. The zero values of every field must render safely on
// the dashboard, which is why FallbackEvaluation fills slices and maps in.
type EvaluationResult struct {
	OverallScore      float64             `json:"overallScore"` // 0-100
	HireVerdict       string              `json:"hireVerdict"`  // STRONG_HIRE|HIRE|LEAN_HIRE|NO_HIRE|NO_DECISION
	Summary           string              `json:"summary"`
	SkillMetrics      map[string]float64  `json:"skillMetrics"`
	BehavioralMetrics map[string]float64  `json:"behavioralMetrics"`
	CodeReview        CodeReview          `json:"codeReview"`
	ImprovementPlan   []string            `json:"improvementPlan"`
	Questions         []EvaluatedQuestion `json:"questions"`
}

type CodeReview struct {
	Quality  float64  `json:"quality"`
	Comments []string `json:"comments"`
}

// EvaluatedQuestion is one Q&A pair the collaborator extracted from the
// transcript. It does not reference the curated catalog; the pipeline writes
// a snapshot Question row per entry.
type EvaluatedQuestion struct {
	Question    string             `json:"question"`
	UserAnswer  string             `json:"userAnswer"`
	IdealAnswer string             `json:"idealAnswer"`
	Score       float64            `json:"score"`
	Evaluation  QuestionEvaluation `json:"evaluation"`
}

type QuestionEvaluation struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Tips       []string `json:"tips"`
}

// FallbackEvaluation is the safe default used when the collaborator call or
// result parsing fails. Every field is present and renderable.
func FallbackEvaluation() EvaluationResult {
	return EvaluationResult{
		OverallScore:      0,
		HireVerdict:       "NO_DECISION",
		Summary:           "Evaluation failed",
		SkillMetrics:      map[string]float64{},
		BehavioralMetrics: map[string]float64{},
		CodeReview:        CodeReview{Quality: 0, Comments: []string{}},
		ImprovementPlan:   []string{},
		Questions:         []EvaluatedQuestion{},
	}
}
