package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/wayfarer/internal/http/respond"
	"github.com/hongminglow/wayfarer/internal/models/dto"
)

const defaultReply = "I can help with places, saved places, community posts, services, chat and your account. Try asking about one of those."

// faqEntry answers any question containing one of its keywords.
type faqEntry struct {
	keywords []string
	answer   string
}

var faq = []faqEntry{
	{[]string{"hello", "hi ", "hey"}, "Hello! Ask me anything about getting around."},
	{[]string{"save", "bookmark"}, "Open Explore and use Save on a place. Saved places appear on your dashboard."},
	{[]string{"post", "community", "share"}, "Travelers and merchants in traveler mode can post in Community. Pick a category such as FOOD_TIPS or TRAFFIC."},
	{[]string{"merchant", "mode"}, "Merchants can switch to traveler mode to post, react, comment and chat."},
	{[]string{"hospital", "police", "pharmacy", "atm", "emergency", "service"}, "The Services page lists hospitals, police stations, pharmacies, ATMs and transport near each area."},
	{[]string{"chat", "message"}, "Search for a user in Chat to start a conversation. Existing threads are reused."},
	{[]string{"password", "account", "avatar", "profile"}, "Manage your profile, avatar and account from Settings."},
	{[]string{"place", "restaurant", "cafe", "eat", "visit"}, "Browse places on Explore and filter by area or category."},
}

// ChatbotHandler answers FAQ questions. Every message is handled on its
// own; no conversation state is kept.
type ChatbotHandler struct {
	logger *slog.Logger
}

func NewChatbotHandler(logger *slog.Logger) *ChatbotHandler {
	return &ChatbotHandler{logger: logger}
}

func (h *ChatbotHandler) Register(r chi.Router) {
	r.Post("/api/chatbot/", h.handleMessage)
}

func (h *ChatbotHandler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req dto.ChatbotRequest
	if !decode(w, r, &req) {
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		respond.FieldErrors(w, map[string][]string{"message": {"This field is required."}})
		return
	}
	respond.JSON(w, http.StatusOK, dto.ChatbotResponse{Reply: answer(message)})
}

func answer(message string) string {
	text := " " + strings.ToLower(message) + " "
	for _, entry := range faq {
		for _, keyword := range entry.keywords {
			if strings.Contains(text, keyword) {
				return entry.answer
			}
		}
	}
	return defaultReply
}
