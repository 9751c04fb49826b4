package dto

type StartThreadRequest struct {
	Username string `json:"username"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

type ChatbotRequest struct {
	Message string `json:"message"`
}

type ChatbotResponse struct {
	Reply string `json:"reply"`
}
