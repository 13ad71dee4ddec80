package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"assessment-backend/internal/attempts"
	"assessment-backend/internal/extract"
	"assessment-backend/internal/generation"
	"assessment-backend/internal/identity"
	"assessment-backend/internal/pipeline"
	"assessment-backend/internal/quizzes"
	"assessment-backend/internal/services/health"
	"assessment-backend/internal/shared/config"
	"assessment-backend/internal/shared/storage/object/local"
	"assessment-backend/internal/uploads"
)

type cannedBackend struct{ reply string }

func (b cannedBackend) Name() string { return "canned" }

func (b cannedBackend) Complete(context.Context, generation.Prompt) (string, error) {
	return b.reply, nil
}

const twoQuestions = `{"title":"Photosynthesis","questions":[
 {"prompt":"What gas do plants absorb?","options":["Oxygen","Carbon dioxide","Nitrogen"],"correctIndex":1},
 {"prompt":"Where does photosynthesis happen?","options":["Chloroplast","Nucleus"],"correctIndex":0}
]}`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	store := local.New(t.TempDir())
	quizRepo := quizzes.NewMemoryRepo()
	client := generation.NewClient(cannedBackend{reply: twoQuestions})
	client.Timeout = time.Second

	svc := &pipeline.Service{
		Uploads:   uploads.NewManager(store, 1<<20, []string{"text/plain"}),
		Extractor: &extract.Extractor{Store: store},
		Generator: client,
		Assembler: quizzes.NewAssembler(quizRepo),
	}
	return NewRouter(RouterDeps{
		Config: config.Config{
			CORSAllowOrigin:        []string{"http://localhost:5173"},
			RateLimitGenerateRate:  1,
			RateLimitGenerateBurst: 10,
			RateLimitDefaultRate:   10,
			RateLimitDefaultBurst:  100,
		},
		Resolver:        identity.GuestResolver{},
		Health:          health.NewService(nil),
		PipelineHandler: pipeline.NewHandler(svc),
		QuizHandler:     quizzes.NewHandler(quizRepo),
		AttemptHandler:  attempts.NewHandler(attempts.NewService(quizRepo, attempts.NewMemoryRepo())),
	})
}

func do(t *testing.T, r http.Handler, method, path, guest string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if guest != "" {
		req.Header.Set(identity.GuestHeader, guest)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func uploadBody(t *testing.T, text string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "plants.txt")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte(text)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.WriteField("questionCount", "2"); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	r := newTestRouter(t)

	resp := do(t, r, http.MethodGet, "/api/v1/health", "", nil, "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"store":"memory"`) {
		t.Fatalf("unexpected health response %d: %s", resp.Code, resp.Body.String())
	}

	resp = do(t, r, http.MethodGet, "/metrics", "", nil, "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "quiz_generation_started_total") {
		t.Fatalf("unexpected metrics response %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMeRequiresIdentity(t *testing.T) {
	r := newTestRouter(t)

	if resp := do(t, r, http.MethodGet, "/api/v1/me", "", nil, ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}

	resp := do(t, r, http.MethodGet, "/api/v1/me", "tablet-7", nil, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var me struct {
		UserID  string `json:"userId"`
		IsGuest bool   `json:"isGuest"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.UserID != "guest:tablet-7" || !me.IsGuest {
		t.Fatalf("unexpected identity %+v", me)
	}
}

// A learner generates a quiz, takes it twice, and reads back the summary.
func TestQuizLifecycle(t *testing.T) {
	r := newTestRouter(t)
	const learner = "learner-1"

	body, ct := uploadBody(t, strings.Repeat("Plants turn light, water and carbon dioxide into sugar. ", 4))
	resp := do(t, r, http.MethodPost, "/api/v1/quizzes", learner, body, ct)
	if resp.Code != http.StatusCreated {
		t.Fatalf("generate: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created quizzes.QuizView
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode quiz: %v", err)
	}
	if created.QuestionCount != 2 || created.Title != "Photosynthesis" {
		t.Fatalf("unexpected quiz %+v", created)
	}

	resp = do(t, r, http.MethodGet, "/api/v1/quizzes/"+created.ID, "someone-else", nil, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("get quiz: expected 200, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "correctIndex") {
		t.Fatalf("answer key must be hidden: %s", resp.Body.String())
	}

	submit := func(wrongSecond bool) attemptsResult {
		answers := make([]attempts.Answer, 0, len(created.Questions))
		for i, q := range created.Questions {
			idx := *q.CorrectIndex
			if wrongSecond && i == 1 {
				idx = (idx + 1) % len(q.Options)
			}
			answers = append(answers, attempts.Answer{QuestionID: q.ID, SelectedIndex: idx})
		}
		payload, _ := json.Marshal(map[string]any{"answers": answers})
		resp := do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/quizzes/%s/attempts", created.ID), learner, bytes.NewBuffer(payload), "application/json")
		if resp.Code != http.StatusCreated {
			t.Fatalf("record: expected 201, got %d: %s", resp.Code, resp.Body.String())
		}
		var out attemptsResult
		if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode attempt: %v", err)
		}
		return out
	}

	if got := submit(false); got.CorrectCount != 2 || got.Score != 100 {
		t.Fatalf("unexpected first attempt %+v", got)
	}
	if got := submit(true); got.CorrectCount != 1 || got.Score != 50 {
		t.Fatalf("unexpected second attempt %+v", got)
	}

	resp = do(t, r, http.MethodGet, "/api/v1/quizzes/"+created.ID+"/summary", learner, nil, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d", resp.Code)
	}
	var summary struct {
		AttemptCount int     `json:"attemptCount"`
		BestScore    float64 `json:"bestScore"`
		LatestScore  float64 `json:"latestScore"`
		AverageScore float64 `json:"averageScore"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.AttemptCount != 2 || summary.BestScore != 100 || summary.LatestScore != 50 || summary.AverageScore != 75 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	resp = do(t, r, http.MethodGet, "/api/v1/quizzes/"+created.ID+"/summary", "someone-else", nil, "")
	if !strings.Contains(resp.Body.String(), `"attemptCount":0`) {
		t.Fatalf("expected empty summary for another user, got %s", resp.Body.String())
	}
}

type attemptsResult struct {
	CorrectCount int     `json:"correctCount"`
	Score        float64 `json:"score"`
}

func TestRateLimitGroup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var got []string
	r.Any("/api/v1/quizzes", func(c *gin.Context) { got = append(got, rateLimitGroup(c)) })
	r.GET("/api/v1/quizzes/:quizId", func(c *gin.Context) { got = append(got, rateLimitGroup(c)) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/v1/quizzes", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/quizzes/abc", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	if len(got) != 2 || got[0] != "GENERATE" || got[1] != "DEFAULT" {
		t.Fatalf("unexpected groups %v", got)
	}
}

func TestAddr(t *testing.T) {
	tests := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range tests {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
