package llm

import (
	"context"
	"fmt"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"

	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/prompts"
)

type VertexGemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
	tpl    prompts.Templates
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string, tpl prompts.Templates) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	m := c.GenerativeModel(modelName)
	m.SystemInstruction = &vertexgenai.Content{
		Parts: []vertexgenai.Part{vertexgenai.Text(tpl.System)},
	}
	return &VertexGemini{client: c, model: m, tpl: tpl}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) GenerateInitialGreeting(ctx context.Context, ic InterviewContext, q *StartingQuestion) (string, error) {
	var prompt string
	if q != nil {
		prompt = fmt.Sprintf(v.tpl.Greeting, q.Title, q.ProblemStatement)
	} else {
		prompt = fmt.Sprintf(v.tpl.GreetingGeneric, ic.Domain)
	}
	return v.generate(ctx, vertexgenai.Text(prompt))
}

func (v *VertexGemini) ProcessInteraction(ctx context.Context, history []models.Message, userInput string, directives []string) (string, error) {
	cs := v.model.StartChat()
	cs.History = toContents(history)

	parts := []vertexgenai.Part{vertexgenai.Text(userInput)}
	for _, d := range directives {
		parts = append(parts, vertexgenai.Text("\n[interview flow] "+d))
	}
	return v.send(ctx, cs, parts...)
}

func (v *VertexGemini) EvaluateFinalPerformance(ctx context.Context, transcript string, ic InterviewContext, reference []ReferenceQuestion) (string, error) {
	var ctxBlock strings.Builder
	fmt.Fprintf(&ctxBlock, "type: %s\ndomain: %s\ndifficulty: %s\ntopics: %s",
		ic.Type, ic.Domain, ic.Difficulty, strings.Join(ic.Topics, ", "))

	var refBlock strings.Builder
	for i, r := range reference {
		fmt.Fprintf(&refBlock, "%d. %s\n%s\nIdeal answer: %s\nRubric: %s\n\n",
			i+1, r.Title, r.ProblemStatement, r.IdealAnswer, r.Rubric)
	}

	prompt := fmt.Sprintf(v.tpl.Evaluation, ctxBlock.String(), refBlock.String(), transcript)
	return v.generate(ctx, vertexgenai.Text(prompt))
}

func (v *VertexGemini) generate(ctx context.Context, parts ...vertexgenai.Part) (string, error) {
	it := v.model.GenerateContentStream(ctx, parts...)
	return collect(it)
}

func (v *VertexGemini) send(ctx context.Context, cs *vertexgenai.ChatSession, parts ...vertexgenai.Part) (string, error) {
	it := cs.SendMessageStream(ctx, parts...)
	return collect(it)
}

func collect(it *vertexgenai.GenerateContentResponseIterator) (string, error) {
	var sb strings.Builder
	for {
		resp, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", err
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if t, ok := part.(vertexgenai.Text); ok {
					sb.WriteString(string(t))
				}
			}
		}
	}
	return sb.String(), nil
}

func toContents(history []models.Message) []*vertexgenai.Content {
	out := make([]*vertexgenai.Content, 0, len(history))
	for _, m := range history {
		parts := make([]vertexgenai.Part, 0, len(m.Parts))
		for _, p := range m.Parts {
			parts = append(parts, vertexgenai.Text(p))
		}
		out = append(out, &vertexgenai.Content{
			Role:  string(m.Role),
			Parts: parts,
		})
	}
	return out
}
