package services

import (
	"context"
	"edu-platform-backend/models/learning"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	pathMaxTokens   = 2000
	quizMaxTokens   = 2000
	mentorMaxTokens = 1000
)

var ErrNoQuestions = errors.New("no questions in generated quiz")

// Tutor turns learner data into prompts and model replies into domain values.
type Tutor struct {
	completer Completer
}

func NewTutor(completer Completer) *Tutor {
	return &Tutor{completer: completer}
}

// MentorContext is what the mentor knows about the learner.
type MentorContext struct {
	CurrentLevel     string
	CompletedModules int
	TotalPoints      int
	Preferences      map[string]any
}

func (t *Tutor) GeneratePath(ctx context.Context, preferences map[string]any, level string) (learning.GeneratedPath, error) {
	prefs, err := json.MarshalIndent(nonNilMap(preferences), "", "  ")
	if err != nil {
		return learning.GeneratedPath{}, fmt.Errorf("encode preferences: %w", err)
	}
	if level == "" {
		level = "beginner"
	}

	prompt := fmt.Sprintf(`Create a personalized learning path for a user with these preferences:
%s

Current user level: %s

Generate a structured learning path with:
1. Path title and description
2. Difficulty level
3. 5-7 modules with titles, descriptions, and estimated duration
4. Prerequisites if any

Return as JSON with the keys title, description, difficulty, modules, estimated_duration, prerequisites.`, prefs, level)

	reply, err := t.completer.Complete(ctx,
		"You are an expert educational content creator. Create comprehensive, engaging learning paths.",
		prompt, pathMaxTokens)
	if err != nil {
		return learning.GeneratedPath{}, err
	}

	var path learning.GeneratedPath
	if err := json.Unmarshal([]byte(StripCodeFence(reply)), &path); err != nil {
		return learning.GeneratedPath{}, fmt.Errorf("decode learning path: %w", err)
	}
	return path, nil
}

func (t *Tutor) GenerateQuiz(ctx context.Context, topic, difficulty string, count int) ([]learning.Question, error) {
	prompt := fmt.Sprintf(`Create a %s level quiz about %s with %d multiple choice questions.

For each question, provide:
1. The question text
2. 4 multiple choice options
3. The correct answer index (0-3)
4. A brief explanation of why the answer is correct

Return as JSON: {"questions": [{"question": "...", "options": ["...", "...", "...", "..."], "correct_answer": 0, "explanation": "..."}]}`,
		difficulty, topic, count)

	reply, err := t.completer.Complete(ctx,
		"You are an expert quiz creator. Create engaging, educational quiz questions.",
		prompt, quizMaxTokens)
	if err != nil {
		return nil, err
	}

	body := []byte(StripCodeFence(reply))
	var wrapped struct {
		Questions []learning.Question `json:"questions"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		// некоторые модели возвращают голый массив
		var bare []learning.Question
		if errArr := json.Unmarshal(body, &bare); errArr != nil {
			return nil, fmt.Errorf("decode quiz: %w", err)
		}
		wrapped.Questions = bare
	}
	if len(wrapped.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	return wrapped.Questions, nil
}

func (t *Tutor) MentorReply(ctx context.Context, mc MentorContext, message string) (string, error) {
	prefs, err := json.Marshal(nonNilMap(mc.Preferences))
	if err != nil {
		return "", fmt.Errorf("encode preferences: %w", err)
	}
	level := mc.CurrentLevel
	if level == "" {
		level = "beginner"
	}

	system := fmt.Sprintf(`You are an AI educational mentor. Help users with their learning journey.

User context:
- Current level: %s
- Completed modules: %d
- Total points: %d
- Learning preferences: %s

Provide helpful, encouraging, and personalized educational guidance.`,
		level, mc.CompletedModules, mc.TotalPoints, prefs)

	return t.completer.Complete(ctx, system, message, mentorMaxTokens)
}

// StripCodeFence removes a surrounding Markdown code fence such as ```json.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
