package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/wayfarer/internal/auth"
	"github.com/hongminglow/wayfarer/internal/middleware"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/models/dto"
	"github.com/hongminglow/wayfarer/internal/storage/memory"
)

const testPassword = "correct-horse"

type testAPI struct {
	t       *testing.T
	server  *httptest.Server
	users   *memory.UserStore
	content *memory.ContentStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := memory.NewUserStore()
	content := memory.NewContentStore()
	content.Seed()
	tokens := auth.NewTokenManager("test-secret", "wayfarer-test", time.Hour)
	revocations := auth.NewRevocations()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Authenticate(tokens, revocations))
	NewHealthHandler(time.Now()).Register(r)
	NewAuthHandler(users, content, tokens, revocations, logger).Register(r)
	NewPlacesHandler(content, logger).Register(r)
	NewServicesHandler(content, logger).Register(r)
	NewCommunityHandler(content, logger).Register(r)
	NewChatHandler(users, content, logger).Register(r)
	NewDashboardHandler(content, logger).Register(r)
	NewChatbotHandler(logger).Register(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return &testAPI{t: t, server: server, users: users, content: content}
}

// createUser inserts an account directly, bypassing signup rules.
func (a *testAPI) createUser(username string, role models.Role) {
	a.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		a.t.Fatalf("hash: %v", err)
	}
	_, err = a.users.CreateUser(context.Background(), models.User{
		Username:     username,
		Email:        username + "@example.com",
		Role:         role,
		PasswordHash: string(hash),
	})
	if err != nil {
		a.t.Fatalf("create user %s: %v", username, err)
	}
}

func (a *testAPI) login(identifier string) string {
	a.t.Helper()
	var out struct {
		Token string `json:"token"`
	}
	status := a.call(http.MethodPost, "/api/auth/login/", "", map[string]string{
		"identifier": identifier,
		"password":   testPassword,
	}, &out)
	if status != http.StatusOK || out.Token == "" {
		a.t.Fatalf("login %s: status %d", identifier, status)
	}
	return out.Token
}

func (a *testAPI) userToken(username string, role models.Role) string {
	a.t.Helper()
	a.createUser(username, role)
	return a.login(username)
}

// call sends a JSON request and decodes the response into out when it is
// not nil. It returns the status code.
func (a *testAPI) call(method, path, token string, body, out any) int {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	if err != nil {
		a.t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}
	return a.send(req, out)
}

func (a *testAPI) send(req *http.Request, out any) int {
	a.t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		a.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			a.t.Fatalf("decode %s %s: %v", req.Method, req.URL.Path, err)
		}
	}
	return resp.StatusCode
}

type detail struct {
	Detail string `json:"detail"`
}

func TestSignupAndLogin(t *testing.T) {
	api := newTestAPI(t)

	var profile models.Profile
	status := api.call(http.MethodPost, "/api/auth/signup/", "", map[string]string{
		"username": "mei",
		"email":    "mei@example.com",
		"password": "long-enough",
		"role":     "MERCHANT",
	}, &profile)
	if status != http.StatusCreated {
		t.Fatalf("signup status = %d", status)
	}
	if profile.Username != "mei" || profile.Role != models.Merchant {
		t.Fatalf("profile = %+v", profile)
	}

	var conflict detail
	status = api.call(http.MethodPost, "/api/auth/signup/", "", map[string]string{
		"username": "MEI",
		"email":    "other@example.com",
		"password": "long-enough",
	}, &conflict)
	if status != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d", status)
	}

	var out struct {
		Token string         `json:"token"`
		User  models.Profile `json:"user"`
	}
	status = api.call(http.MethodPost, "/api/auth/login/", "", map[string]string{
		"identifier": "mei@example.com",
		"password":   "long-enough",
	}, &out)
	if status != http.StatusOK || out.Token == "" || out.User.Username != "mei" {
		t.Fatalf("login status = %d out = %+v", status, out)
	}

	var bad detail
	status = api.call(http.MethodPost, "/api/auth/login/", "", map[string]string{
		"identifier": "mei",
		"password":   "wrong-password",
	}, &bad)
	if status != http.StatusUnauthorized || bad.Detail != "Invalid credentials." {
		t.Fatalf("bad login status = %d detail = %q", status, bad.Detail)
	}
}

func TestSignupValidation(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"short password", map[string]string{"username": "a", "email": "a@example.com", "password": "short"}, "password"},
		{"bad email", map[string]string{"username": "a", "email": "nope", "password": "long-enough"}, "email"},
		{"missing username", map[string]string{"email": "a@example.com", "password": "long-enough"}, "username"},
		{"admin role", map[string]string{"username": "a", "email": "a@example.com", "password": "long-enough", "role": "ADMIN"}, "role"},
		{"password over 72 bytes", map[string]string{"username": "a", "email": "a@example.com", "password": strings.Repeat("x", 80)}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fields map[string][]string
			status := api.call(http.MethodPost, "/api/auth/signup/", "", tt.body, &fields)
			if status != http.StatusBadRequest {
				t.Fatalf("status = %d", status)
			}
			if len(fields[tt.field]) == 0 {
				t.Fatalf("fields = %v, want error on %s", fields, tt.field)
			}
		})
	}
}

func TestSignupAcceptsLongestPassword(t *testing.T) {
	api := newTestAPI(t)
	password := strings.Repeat("é", 36)
	body := map[string]string{"username": "lena", "email": "lena@example.com", "password": password}
	if status := api.call(http.MethodPost, "/api/auth/signup/", "", body, nil); status != http.StatusCreated {
		t.Fatalf("signup status = %d", status)
	}
	status := api.call(http.MethodPost, "/api/auth/login/", "", map[string]string{"identifier": "lena", "password": password}, nil)
	if status != http.StatusOK {
		t.Fatalf("login status = %d", status)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	api := newTestAPI(t)
	token := api.userToken("ana", models.Traveler)

	if status := api.call(http.MethodGet, "/api/auth/profile/", token, nil, nil); status != http.StatusOK {
		t.Fatalf("profile status = %d", status)
	}
	if status := api.call(http.MethodPost, "/api/auth/logout/", token, nil, nil); status != http.StatusNoContent {
		t.Fatalf("logout status = %d", status)
	}
	var out detail
	status := api.call(http.MethodGet, "/api/auth/profile/", token, nil, &out)
	if status != http.StatusUnauthorized || out.Detail != "Invalid or expired token." {
		t.Fatalf("after logout status = %d detail = %q", status, out.Detail)
	}
}

func TestProfileUpdateAndDelete(t *testing.T) {
	api := newTestAPI(t)
	token := api.userToken("ana", models.Traveler)

	var profile models.Profile
	status := api.call(http.MethodPatch, "/api/auth/profile/", token, map[string]string{
		"full_name": "Ana Lima",
		"bio":       "Here for the food.",
	}, &profile)
	if status != http.StatusOK || profile.FullName != "Ana Lima" || profile.Email != "ana@example.com" {
		t.Fatalf("update status = %d profile = %+v", status, profile)
	}

	if status := api.call(http.MethodDelete, "/api/auth/profile/", token, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete status = %d", status)
	}
	if _, err := api.users.FindByUsername(context.Background(), "ana"); err == nil {
		t.Fatal("user still exists after delete")
	}
	if status := api.call(http.MethodGet, "/api/auth/profile/", token, nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("profile after delete status = %d", status)
	}
}

func TestAvatarUpload(t *testing.T) {
	api := newTestAPI(t)
	token := api.userToken("ana", models.Traveler)

	upload := func(content []byte) (int, models.Profile) {
		var buffer bytes.Buffer
		writer := multipart.NewWriter(&buffer)
		part, err := writer.CreateFormFile("avatar", "me.png")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		part.Write(content)
		writer.Close()

		req, err := http.NewRequest(http.MethodPatch, api.server.URL+"/api/auth/profile/avatar/", &buffer)
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.Header.Set(middleware.TokenHeader, token)
		var profile models.Profile
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			json.NewDecoder(resp.Body).Decode(&profile)
		}
		return resp.StatusCode, profile
	}

	if status, _ := upload([]byte("just some text")); status != http.StatusBadRequest {
		t.Fatalf("text upload status = %d", status)
	}

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	status, profile := upload(png)
	if status != http.StatusOK || profile.AvatarURL == "" {
		t.Fatalf("png upload status = %d profile = %+v", status, profile)
	}

	resp, err := http.Get(api.server.URL + profile.AvatarURL)
	if err != nil {
		t.Fatalf("fetch avatar: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("avatar status = %d type = %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

func TestPlacesAndSavedPlaces(t *testing.T) {
	api := newTestAPI(t)

	var places []models.Place
	if status := api.call(http.MethodGet, "/api/places/?area=harbour", "", nil, &places); status != http.StatusOK {
		t.Fatalf("places status = %d", status)
	}
	if len(places) != 2 {
		t.Fatalf("harbour places = %d, want 2", len(places))
	}

	if status := api.call(http.MethodGet, "/api/places/saved/", "", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("anonymous saved status = %d", status)
	}

	token := api.userToken("ana", models.Traveler)
	var saved models.SavedPlace
	if status := api.call(http.MethodPost, "/api/places/saved/", token, map[string]int64{"place_id": 2}, &saved); status != http.StatusCreated {
		t.Fatalf("save status = %d", status)
	}
	if saved.Place.ID != 2 {
		t.Fatalf("saved = %+v", saved)
	}
	if status := api.call(http.MethodPost, "/api/places/saved/", token, map[string]int64{"place_id": 99}, nil); status != http.StatusNotFound {
		t.Fatalf("save unknown status = %d", status)
	}

	var list []models.SavedPlace
	api.call(http.MethodGet, "/api/places/saved/", token, nil, &list)
	if len(list) != 1 {
		t.Fatalf("saved list = %d", len(list))
	}
	if status := api.call(http.MethodDelete, "/api/places/saved/2/", token, nil, nil); status != http.StatusNoContent {
		t.Fatalf("unsave status = %d", status)
	}
	if status := api.call(http.MethodDelete, "/api/places/saved/2/", token, nil, nil); status != http.StatusNotFound {
		t.Fatalf("second unsave status = %d", status)
	}
}

func TestServicesAdminOnly(t *testing.T) {
	api := newTestAPI(t)
	traveler := api.userToken("ana", models.Traveler)
	admin := api.userToken("root", models.Admin)

	service := map[string]any{"name": "Night Clinic", "category": "hospital", "area": "Harbour"}

	var denied detail
	if status := api.call(http.MethodPost, "/api/services/", traveler, service, &denied); status != http.StatusForbidden {
		t.Fatalf("traveler create status = %d", status)
	}
	if denied.Detail != "Not allowed: admins only." {
		t.Fatalf("detail = %q", denied.Detail)
	}

	var created models.Service
	if status := api.call(http.MethodPost, "/api/services/", admin, service, &created); status != http.StatusCreated {
		t.Fatalf("admin create status = %d", status)
	}
	if created.Category != models.Hospital || created.ID == 0 {
		t.Fatalf("created = %+v", created)
	}

	var updated models.Service
	path := "/api/services/" + itoa(created.ID) + "/"
	if status := api.call(http.MethodPatch, path, admin, map[string]string{"phone": "112"}, &updated); status != http.StatusOK {
		t.Fatalf("update status = %d", status)
	}
	if updated.Phone != "112" || updated.Name != "Night Clinic" {
		t.Fatalf("updated = %+v", updated)
	}
	if status := api.call(http.MethodDelete, path, admin, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete status = %d", status)
	}
	if status := api.call(http.MethodDelete, path, admin, nil, nil); status != http.StatusNotFound {
		t.Fatalf("second delete status = %d", status)
	}

	var hospitals []models.Service
	api.call(http.MethodGet, "/api/services/?category=HOSPITAL", "", nil, &hospitals)
	if len(hospitals) != 1 {
		t.Fatalf("hospitals = %d, want 1", len(hospitals))
	}
}

func TestCommunityPolicy(t *testing.T) {
	api := newTestAPI(t)
	traveler := api.userToken("ana", models.Traveler)
	merchant := api.userToken("mei", models.Merchant)
	admin := api.userToken("root", models.Admin)

	post := map[string]string{"title": "Ferry delayed", "description": "Expect an hour.", "category": "traffic", "area": "Harbour"}
	if status := api.call(http.MethodPost, "/api/community/posts/", "", post, nil); status != http.StatusUnauthorized {
		t.Fatalf("anonymous create status = %d", status)
	}
	var denied detail
	if status := api.call(http.MethodPost, "/api/community/posts/", admin, post, &denied); status != http.StatusForbidden {
		t.Fatalf("admin create status = %d", status)
	}
	if denied.Detail != "Not allowed: admins cannot post/react/comment." {
		t.Fatalf("detail = %q", denied.Detail)
	}

	if status := api.call(http.MethodPost, "/api/community/posts/", merchant, post, &denied); status != http.StatusForbidden {
		t.Fatalf("merchant-mode create status = %d", status)
	}
	if denied.Detail != "Not allowed: switch to traveler mode." {
		t.Fatalf("detail = %q", denied.Detail)
	}

	var switched dto.LoginResponse
	if status := api.call(http.MethodPost, "/api/auth/mode/", merchant, dto.ModeRequest{Mode: models.Traveler}, &switched); status != http.StatusOK {
		t.Fatalf("mode switch status = %d", status)
	}
	if status := api.call(http.MethodGet, "/api/auth/profile/", merchant, nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("old merchant token status = %d", status)
	}
	merchant = switched.Token

	var created models.Post
	if status := api.call(http.MethodPost, "/api/community/posts/", merchant, post, &created); status != http.StatusCreated {
		t.Fatalf("traveler-mode create status = %d", status)
	}
	if created.Author != "mei" || created.Category != models.Traffic {
		t.Fatalf("created = %+v", created)
	}

	react := "/api/community/posts/" + itoa(created.ID) + "/react/"
	var counts models.ReactionCounts
	api.call(http.MethodPost, react, traveler, map[string]string{"reaction": "LIKE"}, &counts)
	api.call(http.MethodPost, react, traveler, map[string]string{"reaction": "LIKE"}, &counts)
	if counts.LikesCount != 1 || counts.DislikesCount != 0 {
		t.Fatalf("counts after repeat like = %+v", counts)
	}
	api.call(http.MethodPost, react, merchant, map[string]string{"reaction": "DISLIKE"}, &counts)
	if counts.LikesCount != 1 || counts.DislikesCount != 1 {
		t.Fatalf("counts = %+v", counts)
	}

	var comment struct {
		Comment       models.Comment `json:"comment"`
		CommentsCount int            `json:"comments_count"`
	}
	status := api.call(http.MethodPost, "/api/community/posts/2/comments/", traveler, map[string]string{"text": "Same here."}, &comment)
	if status != http.StatusCreated || comment.CommentsCount != 2 || comment.Comment.Author != "ana" {
		t.Fatalf("comment status = %d out = %+v", status, comment)
	}

	var detailed models.Post
	api.call(http.MethodGet, "/api/community/posts/2/", "", nil, &detailed)
	if len(detailed.Comments) != 2 {
		t.Fatalf("comments = %d", len(detailed.Comments))
	}

	var feed []models.Post
	api.call(http.MethodGet, "/api/community/posts/?category=traffic", "", nil, &feed)
	if len(feed) != 2 || feed[0].ID != created.ID {
		t.Fatalf("traffic feed = %+v", feed)
	}
}

func TestModeSwitchRules(t *testing.T) {
	api := newTestAPI(t)
	traveler := api.userToken("ana", models.Traveler)
	merchant := api.userToken("mei", models.Merchant)

	var denied detail
	if status := api.call(http.MethodPost, "/api/auth/mode/", traveler, dto.ModeRequest{Mode: models.Merchant}, &denied); status != http.StatusForbidden {
		t.Fatalf("traveler to merchant status = %d", status)
	}
	if status := api.call(http.MethodPost, "/api/auth/mode/", merchant, dto.ModeRequest{Mode: "PIRATE"}, nil); status != http.StatusBadRequest {
		t.Fatalf("unknown mode status = %d", status)
	}
	if status := api.call(http.MethodPost, "/api/auth/mode/", "", dto.ModeRequest{Mode: models.Traveler}, nil); status != http.StatusUnauthorized {
		t.Fatalf("anonymous mode switch status = %d", status)
	}

	var back dto.LoginResponse
	api.call(http.MethodPost, "/api/auth/mode/", merchant, dto.ModeRequest{Mode: models.Traveler}, &back)
	api.call(http.MethodPost, "/api/auth/mode/", back.Token, dto.ModeRequest{Mode: models.Merchant}, &back)
	if status := api.call(http.MethodPost, "/api/community/posts/", back.Token, map[string]string{"title": "t", "description": "d", "category": "traffic", "area": "Harbour"}, nil); status != http.StatusForbidden {
		t.Fatalf("merchant-mode create after switching back = %d", status)
	}
}

func TestChatThreads(t *testing.T) {
	api := newTestAPI(t)
	ana := api.userToken("ana", models.Traveler)
	bo := api.userToken("bo", models.Traveler)
	cy := api.userToken("cy", models.Traveler)

	if status := api.call(http.MethodPost, "/api/chat/threads/", ana, map[string]string{"username": "ANA"}, nil); status != http.StatusBadRequest {
		t.Fatalf("self chat status = %d", status)
	}
	if status := api.call(http.MethodPost, "/api/chat/threads/", ana, map[string]string{"username": "ghost"}, nil); status != http.StatusNotFound {
		t.Fatalf("unknown user status = %d", status)
	}

	var thread, again models.Thread
	api.call(http.MethodPost, "/api/chat/threads/", ana, map[string]string{"username": "BO"}, &thread)
	api.call(http.MethodPost, "/api/chat/threads/", bo, map[string]string{"username": "ana"}, &again)
	if thread.ID == 0 || thread.ID != again.ID {
		t.Fatalf("threads = %d and %d, want the same", thread.ID, again.ID)
	}

	messages := "/api/chat/threads/" + itoa(thread.ID) + "/messages/"
	var sent models.Message
	if status := api.call(http.MethodPost, messages, ana, map[string]string{"text": "hi bo"}, &sent); status != http.StatusCreated {
		t.Fatalf("send status = %d", status)
	}
	if status := api.call(http.MethodPost, messages, cy, map[string]string{"text": "let me in"}, nil); status != http.StatusNotFound {
		t.Fatalf("outsider send status = %d", status)
	}

	var list []models.Message
	api.call(http.MethodGet, messages, bo, nil, &list)
	if len(list) != 1 || list[0].Sender != "ana" || list[0].Text != "hi bo" {
		t.Fatalf("messages = %+v", list)
	}

	var found []models.UserSummary
	api.call(http.MethodGet, "/api/users/search/?q=o", ana, nil, &found)
	if len(found) != 1 || found[0].Username != "bo" {
		t.Fatalf("search = %+v", found)
	}
}

func TestDashboardPerRole(t *testing.T) {
	api := newTestAPI(t)
	traveler := api.userToken("ana", models.Traveler)
	admin := api.userToken("root", models.Admin)

	api.call(http.MethodPost, "/api/places/saved/", traveler, map[string]int64{"place_id": 1}, nil)

	var dashboard models.Dashboard
	if status := api.call(http.MethodGet, "/api/dashboard/traveler/", traveler, nil, &dashboard); status != http.StatusOK {
		t.Fatalf("traveler dashboard status = %d", status)
	}
	if dashboard.Stats["saved_places"] != 1 || len(dashboard.SavedPlaces) != 1 || dashboard.Stats["posts"] != 1 {
		t.Fatalf("traveler dashboard = %+v", dashboard)
	}
	if status := api.call(http.MethodGet, "/api/dashboard/admin/", traveler, nil, nil); status != http.StatusForbidden {
		t.Fatalf("traveler on admin dashboard status = %d", status)
	}

	api.call(http.MethodGet, "/api/dashboard/admin/", admin, nil, &dashboard)
	if dashboard.Stats["places"] != 5 || dashboard.Stats["services"] != 5 {
		t.Fatalf("admin dashboard = %+v", dashboard)
	}
}

func TestChatbotAnswers(t *testing.T) {
	api := newTestAPI(t)

	var out struct {
		Reply string `json:"reply"`
	}
	if status := api.call(http.MethodPost, "/api/chatbot/", "", map[string]string{"message": "Where is a pharmacy?"}, &out); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if out.Reply == "" || out.Reply == defaultReply {
		t.Fatalf("reply = %q", out.Reply)
	}
	if got := answer("qwerty"); got != defaultReply {
		t.Fatalf("unknown question reply = %q", got)
	}
	if status := api.call(http.MethodPost, "/api/chatbot/", "", map[string]string{"message": " "}, nil); status != http.StatusBadRequest {
		t.Fatalf("blank status = %d", status)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
