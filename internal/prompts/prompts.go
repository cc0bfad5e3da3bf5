// Package prompts holds the interviewer prompt templates. Defaults are
// compiled in; deployments can override individual templates with a YAML
// file pointed at by PROMPTS_FILE.
package prompts

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CompletionSentinel is the token the interviewer emits when it decides the
// interview is over. It is stripped from stored transcripts.
const CompletionSentinel = "[INTERVIEW_COMPLETE]"

type Templates struct {
	System          string `yaml:"system"`
	Greeting        string `yaml:"greeting"`         // args: question title, problem statement
	GreetingGeneric string `yaml:"greeting_generic"` // args: domain
	MoveOn          string `yaml:"move_on"`          // args: next question title, problem statement
	Conclude        string `yaml:"conclude"`
	Evaluation      string `yaml:"evaluation"` // args: context block, reference block, transcript
}

func Default() Templates {
	return Templates{
		System: "You are a professional mock interviewer. Stay in character, ask one thing at a time, " +
			"never reveal ideal answers mid-interview, and never include links or URLs in your replies. " +
			"When you judge the interview finished, end your reply with " + CompletionSentinel + ".",
		Greeting: "Greet the candidate briefly and open the interview with this question.\n" +
			"Question: %s\n%s",
		GreetingGeneric: "Greet the candidate briefly and open a %s interview with a suitable first question.",
		MoveOn: "Wrap up the current question in one sentence, then move to the next question.\n" +
			"Next question: %s\n%s",
		Conclude: "The interview is over. Thank the candidate in one or two sentences and end your reply with " +
			CompletionSentinel + ".",
		Evaluation: "You are grading a finished mock interview. Respond with a single JSON object and nothing else, " +
			"using keys: overallScore (0-100), hireVerdict (STRONG_HIRE|HIRE|LEAN_HIRE|NO_HIRE|NO_DECISION), summary, " +
			"skillMetrics (object of metric->0-100), behavioralMetrics (object of metric->0-100), " +
			"codeReview {quality, comments}, improvementPlan (array of strings), " +
			"questions (array of {question, userAnswer, idealAnswer, score, evaluation:{strengths,weaknesses,tips}}).\n\n" +
			"Interview context:\n%s\n\nReference question bank:\n%s\n\nTranscript:\n%s",
	}
}

// Load overlays templates from a YAML file on top of the defaults. Empty
// fields in the file keep their default.
func Load(path string) (Templates, error) {
	t := Default()
	if strings.TrimSpace(path) == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read prompts file %s: %w", path, err)
	}

	var overlay Templates
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return t, fmt.Errorf("parse prompts file %s: %w", path, err)
	}

	if overlay.System != "" {
		t.System = overlay.System
	}
	if overlay.Greeting != "" {
		t.Greeting = overlay.Greeting
	}
	if overlay.GreetingGeneric != "" {
		t.GreetingGeneric = overlay.GreetingGeneric
	}
	if overlay.MoveOn != "" {
		t.MoveOn = overlay.MoveOn
	}
	if overlay.Conclude != "" {
		t.Conclude = overlay.Conclude
	}
	if overlay.Evaluation != "" {
		t.Evaluation = overlay.Evaluation
	}
	return t, nil
}
