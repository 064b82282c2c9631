package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"quizcast/internal/core/domain"
	"quizcast/internal/core/ports"
)

type fakeContentRepo struct {
	quizzes   map[uuid.UUID]*domain.Quiz
	questions map[uuid.UUID][]*domain.Question
	bundles   map[uuid.UUID]*domain.MediaBundle
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{
		quizzes:   make(map[uuid.UUID]*domain.Quiz),
		questions: make(map[uuid.UUID][]*domain.Question),
		bundles:   make(map[uuid.UUID]*domain.MediaBundle),
	}
}

func (r *fakeContentRepo) GetQuiz(_ context.Context, id uuid.UUID) (*domain.Quiz, error) {
	quiz, ok := r.quizzes[id]
	if !ok {
		return nil, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (r *fakeContentRepo) GetQuestion(_ context.Context, id uuid.UUID) (*domain.Question, error) {
	for _, questions := range r.questions {
		for _, q := range questions {
			if q.ID == id {
				return q, nil
			}
		}
	}
	return nil, domain.ErrQuestionNotFound
}

func (r *fakeContentRepo) ListQuestions(_ context.Context, quizID uuid.UUID) ([]*domain.Question, error) {
	return append([]*domain.Question(nil), r.questions[quizID]...), nil
}

func (r *fakeContentRepo) CountQuestions(_ context.Context, quizID uuid.UUID) (int, error) {
	return len(r.questions[quizID]), nil
}

func (r *fakeContentRepo) GetBundle(_ context.Context, id uuid.UUID) (*domain.MediaBundle, error) {
	bundle, ok := r.bundles[id]
	if !ok {
		return nil, domain.ErrBundleNotFound
	}
	return bundle, nil
}

func (r *fakeContentRepo) SaveQuiz(_ context.Context, quiz *domain.Quiz) error {
	r.quizzes[quiz.ID] = quiz
	return nil
}

func (r *fakeContentRepo) SaveQuestion(_ context.Context, question *domain.Question) error {
	r.questions[question.QuizID] = append(r.questions[question.QuizID], question)
	return nil
}

func (r *fakeContentRepo) SaveBundle(_ context.Context, bundle *domain.MediaBundle) error {
	r.bundles[bundle.ID] = bundle
	return nil
}

func (r *fakeContentRepo) DeleteQuiz(_ context.Context, id uuid.UUID) error {
	if _, ok := r.quizzes[id]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(r.quizzes, id)
	delete(r.questions, id)
	return nil
}

type fakeSentPollRepo struct {
	polls    []*domain.SentPoll
	messages []*domain.SentMessage
}

func (r *fakeSentPollRepo) SavePoll(_ context.Context, poll *domain.SentPoll) error {
	r.polls = append(r.polls, poll)
	return nil
}

func (r *fakeSentPollRepo) SaveMessage(_ context.Context, msg *domain.SentMessage) error {
	r.messages = append(r.messages, msg)
	return nil
}

func (r *fakeSentPollRepo) GetByPollID(_ context.Context, pollID string) (*domain.SentPoll, error) {
	for _, poll := range r.polls {
		if poll.PollID == pollID {
			return poll, nil
		}
	}
	return nil, domain.ErrPollNotFound
}

func (r *fakeSentPollRepo) ListExpired(_ context.Context, now time.Time) ([]*domain.SentPoll, error) {
	var overdue []*domain.SentPoll
	for _, poll := range r.polls {
		if !poll.IsClosed && poll.ExpiresAt != nil && !poll.ExpiresAt.After(now) {
			overdue = append(overdue, poll)
		}
	}
	return overdue, nil
}

func (r *fakeSentPollRepo) MarkClosed(_ context.Context, id uuid.UUID) error {
	for _, poll := range r.polls {
		if poll.ID == id {
			poll.IsClosed = true
			return nil
		}
	}
	return domain.ErrPollNotFound
}

// fakeResponseRepo resolves quiz membership through the content repo so the
// count queries behave like the SQL joins they stand in for.
type fakeResponseRepo struct {
	content   *fakeContentRepo
	responses map[string]*domain.Response
	names     map[string]string
}

func newFakeResponseRepo(content *fakeContentRepo) *fakeResponseRepo {
	return &fakeResponseRepo{
		content:   content,
		responses: make(map[string]*domain.Response),
		names:     make(map[string]string),
	}
}

func responseKey(chatID, userID int64, questionID uuid.UUID) string {
	return fmt.Sprintf("%d|%d|%s", chatID, userID, questionID)
}

func (r *fakeResponseRepo) SaveResponse(_ context.Context, response *domain.Response) error {
	key := responseKey(response.ChatID, response.UserID, response.QuestionID)
	if _, ok := r.responses[key]; ok {
		return domain.ErrAlreadyAnswered
	}
	r.responses[key] = response
	return nil
}

func (r *fakeResponseRepo) UpsertParticipantName(_ context.Context, name domain.ParticipantName) error {
	r.names[fmt.Sprintf("%d|%d|%s", name.ChatID, name.UserID, name.QuizID)] = name.Name
	return nil
}

func (r *fakeResponseRepo) CountAnswered(_ context.Context, chatID, userID int64, quizID uuid.UUID) (int, error) {
	count := 0
	for _, q := range r.content.questions[quizID] {
		if _, ok := r.responses[responseKey(chatID, userID, q.ID)]; ok {
			count++
		}
	}
	return count, nil
}

func (r *fakeResponseRepo) CountCorrect(_ context.Context, chatID, userID int64, quizID uuid.UUID) (int, error) {
	count := 0
	for _, q := range r.content.questions[quizID] {
		if resp, ok := r.responses[responseKey(chatID, userID, q.ID)]; ok && resp.IsCorrect {
			count++
		}
	}
	return count, nil
}

func (r *fakeResponseRepo) Leaderboard(_ context.Context, quizID uuid.UUID, chatID int64, limit int) ([]domain.LeaderboardEntry, error) {
	byUser := make(map[int64]*domain.LeaderboardEntry)
	for _, q := range r.content.questions[quizID] {
		for _, resp := range r.responses {
			if resp.ChatID != chatID || resp.QuestionID != q.ID {
				continue
			}
			entry, ok := byUser[resp.UserID]
			if !ok {
				entry = &domain.LeaderboardEntry{UserID: resp.UserID}
				byUser[resp.UserID] = entry
			}
			entry.AnsweredCount++
			if resp.IsCorrect {
				entry.Score++
			}
		}
	}

	var entries []domain.LeaderboardEntry
	for _, entry := range byUser {
		entry.DisplayName = r.names[fmt.Sprintf("%d|%d|%s", chatID, entry.UserID, quizID)]
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].AnsweredCount != entries[j].AnsweredCount {
			return entries[i].AnsweredCount > entries[j].AnsweredCount
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

type transportCall struct {
	method    string
	chatID    int64
	fileID    string
	text      string
	spec      ports.PollSpec
	messageID int64
}

type fakeTransport struct {
	calls      []transportCall
	pollErrs   []error
	closeErrs  map[int64]error
	mediaErr   error
	nextPollID int
	nextMsgID  int64
}

func (t *fakeTransport) nextMessage() int64 {
	t.nextMsgID++
	return t.nextMsgID
}

func (t *fakeTransport) SendPhoto(_ context.Context, chatID int64, fileID string) (int64, error) {
	t.calls = append(t.calls, transportCall{method: "photo", chatID: chatID, fileID: fileID})
	return t.nextMessage(), t.mediaErr
}

func (t *fakeTransport) SendVoice(_ context.Context, chatID int64, fileID string) (int64, error) {
	t.calls = append(t.calls, transportCall{method: "voice", chatID: chatID, fileID: fileID})
	return t.nextMessage(), t.mediaErr
}

func (t *fakeTransport) SendAudio(_ context.Context, chatID int64, fileID string) (int64, error) {
	t.calls = append(t.calls, transportCall{method: "audio", chatID: chatID, fileID: fileID})
	return t.nextMessage(), t.mediaErr
}

func (t *fakeTransport) SendMessage(_ context.Context, chatID int64, text string) (int64, error) {
	t.calls = append(t.calls, transportCall{method: "message", chatID: chatID, text: text})
	return t.nextMessage(), nil
}

func (t *fakeTransport) SendPoll(_ context.Context, chatID int64, spec ports.PollSpec) (ports.PollHandle, error) {
	t.calls = append(t.calls, transportCall{method: "poll", chatID: chatID, spec: spec})
	if len(t.pollErrs) > 0 {
		err := t.pollErrs[0]
		t.pollErrs = t.pollErrs[1:]
		if err != nil {
			return ports.PollHandle{}, err
		}
	}
	t.nextPollID++
	return ports.PollHandle{
		PollID:    fmt.Sprintf("poll-%d", t.nextPollID),
		MessageID: t.nextMessage(),
	}, nil
}

func (t *fakeTransport) ClosePoll(_ context.Context, chatID int64, messageID int64) error {
	t.calls = append(t.calls, transportCall{method: "close", chatID: chatID, messageID: messageID})
	if t.closeErrs != nil {
		return t.closeErrs[messageID]
	}
	return nil
}

func (t *fakeTransport) callsOf(method string) []transportCall {
	var out []transportCall
	for _, call := range t.calls {
		if call.method == method {
			out = append(out, call)
		}
	}
	return out
}

func (t *fakeTransport) messageTexts() []string {
	var out []string
	for _, call := range t.callsOf("message") {
		out = append(out, call.text)
	}
	return out
}
