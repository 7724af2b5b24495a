package services

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

type stubCompleter struct {
	reply     string
	err       error
	system    string
	user      string
	maxTokens int64
}

func (s *stubCompleter) Complete(_ context.Context, system, user string, maxTokens int64) (string, error) {
	s.system, s.user, s.maxTokens = system, user, maxTokens
	return s.reply, s.err
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"  ```\n[1,2]\n```  ", `[1,2]`},
		{"```{\"a\":1}```", `{"a":1}`},
		{"\n\n{\"a\":1}\n", `{"a":1}`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StripCodeFence(tc.in), "input %q", tc.in)
	}
}

func TestTutor_GeneratePath(t *testing.T) {
	stub := &stubCompleter{reply: "```json\n{\"title\":\"Go\",\"modules\":[{\"title\":\"m1\"}],\"estimated_duration\":\"4 weeks\"}\n```"}
	tutor := NewTutor(stub)

	path, err := tutor.GeneratePath(context.Background(), map[string]any{"topic": "golang"}, "advanced")
	require.NoError(t, err)
	assert.Equal(t, "Go", path.Title)
	assert.Equal(t, 4, int(path.EstimatedDuration))
	assert.JSONEq(t, `[{"title":"m1"}]`, string(path.Modules))

	assert.Contains(t, stub.user, `"topic": "golang"`)
	assert.Contains(t, stub.user, "Current user level: advanced")
	assert.Equal(t, int64(pathMaxTokens), stub.maxTokens)
}

func TestTutor_GeneratePath_Errors(t *testing.T) {
	_, err := NewTutor(&stubCompleter{reply: "sorry, I can't"}).GeneratePath(context.Background(), nil, "")
	assert.Error(t, err)

	boom := errors.New("upstream down")
	_, err = NewTutor(&stubCompleter{err: boom}).GeneratePath(context.Background(), nil, "")
	assert.ErrorIs(t, err, boom)
}

func TestTutor_GenerateQuiz(t *testing.T) {
	question := `{"question":"2+2?","options":["1","2","3","4"],"correct_answer":3,"explanation":"sum"}`

	stub := &stubCompleter{reply: `{"questions":[` + question + `]}`}
	qs, err := NewTutor(stub).GenerateQuiz(context.Background(), "math", "beginner", 1)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, 3, qs[0].CorrectAnswer)
	assert.Contains(t, stub.user, "Create a beginner level quiz about math with 1 multiple choice questions.")

	qs, err = NewTutor(&stubCompleter{reply: "```\n[" + question + "]\n```"}).GenerateQuiz(context.Background(), "math", "beginner", 1)
	require.NoError(t, err)
	assert.Len(t, qs, 1)

	_, err = NewTutor(&stubCompleter{reply: `{"questions":[]}`}).GenerateQuiz(context.Background(), "math", "beginner", 1)
	assert.ErrorIs(t, err, ErrNoQuestions)

	_, err = NewTutor(&stubCompleter{reply: `not json`}).GenerateQuiz(context.Background(), "math", "beginner", 1)
	assert.Error(t, err)
}

func TestTutor_MentorReply(t *testing.T) {
	stub := &stubCompleter{reply: "Keep going!"}
	out, err := NewTutor(stub).MentorReply(context.Background(), MentorContext{
		CurrentLevel:     "intermediate",
		CompletedModules: 3,
		TotalPoints:      120,
		Preferences:      map[string]any{"style": "visual"},
	}, "How do I learn channels?")
	require.NoError(t, err)
	assert.Equal(t, "Keep going!", out)

	assert.Equal(t, "How do I learn channels?", stub.user)
	assert.Contains(t, stub.system, "- Current level: intermediate")
	assert.Contains(t, stub.system, "- Completed modules: 3")
	assert.Contains(t, stub.system, "- Total points: 120")
	assert.Contains(t, stub.system, `{"style":"visual"}`)
	assert.Equal(t, int64(mentorMaxTokens), stub.maxTokens)
}
