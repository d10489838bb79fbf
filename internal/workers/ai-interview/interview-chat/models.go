package interviewchat

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

type Message struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type Input struct {
	Topic   string    `json:"topic"`
	History []Message `json:"history"`
}

type Output struct {
	Response string `json:"response"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
