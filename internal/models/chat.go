package models

// Роли сообщений, которые клиент может передать в истории диалога.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage: одна реплика диалога.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"` // user или assistant
	Content string `json:"content" validate:"required"`                   // Текст реплики
}

// ChatRequest: тело запроса POST /chat.
type ChatRequest struct {
	Messages        []ChatMessage `json:"messages" validate:"required,min=1,dive"` // История диалога
	MentorProfile   string        `json:"mentorProfile,omitempty"`                 // Профиль наставника (опционально)
	FreeMessageUsed bool          `json:"freeMessageUsed,omitempty"`               // Клиентский флаг бесплатного сообщения
}

// ChatResponse: успешный ответ POST /chat.
type ChatResponse struct {
	Reply           string `json:"reply"`
	FreeMessageUsed bool   `json:"freeMessageUsed"`
}

// ClientState: эфемерное состояние клиента, которое передаётся в оценщик
// доступа явно. Не является источником истины для доступа.
type ClientState struct {
	HasUsedFreeMessage bool
}
