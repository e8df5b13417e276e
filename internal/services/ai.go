package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

type AIService struct {
	client *openai.Client
}

// ExtractedTask is the raw extraction result. DueDate stays in MM/DD form; a
// nil DueDate means the model found no date, which callers must treat as a
// validation failure rather than a default.
type ExtractedTask struct {
	Title   string  `json:"title"`
	DueDate *string `json:"due_date"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// ExtractTaskFromText pulls a task title and abbreviated MM/DD due date out of
// free text. The output is an untrusted candidate: the task service
// re-validates the title and date before anything is stored.
func (s *AIService) ExtractTaskFromText(ctx context.Context, text string) (*ExtractedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`あなたはタスク抽出アシスタントです。以下のテキストからタスクのタイトルと日付を抽出してください。

テキスト:
%s

以下のJSON形式で返してください:
{
  "title": "抽出されたタスクのタイトル（簡潔に）",
  "due_date": "抽出された日付（MM/DD形式、例: 11/20）。日付が明記されていない場合はnull"
}

注意事項:
- due_dateは必ずMM/DD形式の文字列、またはnullにしてください
- 年は含めないでください
- JSONのみを返し、説明文は含めないでください`, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content

	var extracted ExtractedTask
	if err := json.Unmarshal([]byte(content), &extracted); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return &extracted, nil
}
