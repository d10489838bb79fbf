package interviewchat

import "fmt"

const systemPromptTemplate = `
Você é o "Mentor IA", um entrevistador profissional de tecnologia da plataforma "Elevate".
Seu objetivo é ajudar o usuário a praticar para entrevistas, focando em: %s.

Regras:
1. Faça uma pergunta por vez. Perguntas abertas para avaliar conhecimento ou comportamento.
2. NUNCA dê a resposta. Apenas questione e avalie.
3. Seja conciso e direto, como um entrevistador real.
4. Use o histórico para fazer perguntas de acompanhamento e evitar repetições.
5. Se a resposta do usuário for curta, peça para ele elaborar (ex: "Poderia dar um exemplo?").
6. Se o usuário pedir feedback, critique construtivamente (ponto forte e área para melhoria).
7. Comece com uma pergunta introdutória sobre o tópico.
`

func systemPrompt(topic string) string {
	return fmt.Sprintf(systemPromptTemplate, topic)
}

// buildMessages prepends the system prompt and maps bot turns to the
// assistant role.
func buildMessages(topic string, history []Message) []chatMessage {
	messages := make([]chatMessage, 0, len(history)+1)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt(topic)})
	for _, m := range history {
		role := "user"
		if m.Sender == SenderBot {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: m.Text})
	}
	return messages
}
