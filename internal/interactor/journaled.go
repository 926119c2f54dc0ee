package interactor

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// JournaledInteractor records every prompt and message in call order and
// answers prompts from a queue seeded by the test.
type JournaledInteractor struct {
	mu       sync.Mutex
	messages []string
	answers  []string
	log      *zap.Logger
}

// NewJournaledInteractor returns an interactor answering prompts with answers, in order.
func NewJournaledInteractor(log *zap.Logger, answers ...string) *JournaledInteractor {
	if log == nil {
		log = zap.NewNop()
	}
	j := &JournaledInteractor{log: log}
	j.AddAnswer(answers...)
	return j
}

// AddAnswer appends answers to the end of the queue.
func (j *JournaledInteractor) AddAnswer(answers ...string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.answers = append(j.answers, answers...)
}

// PromptQuestion journals prompt and returns the next seeded answer. The
// default is ignored; tests seed exactly what the user would type.
func (j *JournaledInteractor) PromptQuestion(prompt, _ string) (string, error) {
	j.log.Info("promptQuestion: " + prompt)
	return j.next(prompt)
}

// PromptPassword journals prompt, never the answer, and returns the next seeded answer.
func (j *JournaledInteractor) PromptPassword(prompt string) ([]byte, error) {
	j.log.Info("promptPassword: " + prompt)
	answer, err := j.next(prompt)
	if err != nil {
		return nil, err
	}
	return []byte(answer), nil
}

// Info journals msg.
func (j *JournaledInteractor) Info(msg string) {
	j.log.Info("info: " + msg)
	j.record(msg)
}

// Error journals msg.
func (j *JournaledInteractor) Error(msg string) {
	j.log.Info("error: " + msg)
	j.record(msg)
}

// Messages returns a copy of the journal.
func (j *JournaledInteractor) Messages() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.messages...)
}

// Answers returns the answers not consumed yet.
func (j *JournaledInteractor) Answers() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.answers...)
}

// Clear empties the journal. Answers not consumed yet stay queued.
func (j *JournaledInteractor) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.messages = nil
}

func (j *JournaledInteractor) record(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.messages = append(j.messages, msg)
}

// next journals the prompt and pops the oldest answer in one critical section.
func (j *JournaledInteractor) next(prompt string) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.messages = append(j.messages, prompt)
	if len(j.answers) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNoSeededAnswer, prompt)
	}
	answer := j.answers[0]
	j.answers = j.answers[1:]
	return answer, nil
}
