package vision

// Request is the JSON body of one analysis call: a single user message
// carrying the image and the prompt text.
type Request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
}

// Message is one conversation turn.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is either an image block (Source set) or a text block.
type ContentBlock struct {
	Type   string       `json:"type"`
	Source *ImageSource `json:"source,omitempty"`
	Text   string       `json:"text,omitempty"`
}

// ImageSource carries the base64-encoded JPEG payload.
type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// Response is the subset of the API response the device consumes.
type Response struct {
	Content []ResponseBlock `json:"content"`
}

// ResponseBlock is one block of the response content array.
type ResponseBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// apiError is the error envelope returned with non-200 statuses.
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// newRequest builds the wire request for an image/prompt pair.
func newRequest(model string, maxTokens int, imageB64, promptText string) Request {
	return Request{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []Message{
			{
				Role: "user",
				Content: []ContentBlock{
					{
						Type: "image",
						Source: &ImageSource{
							Type:      "base64",
							MediaType: "image/jpeg",
							Data:      imageB64,
						},
					},
					{
						Type: "text",
						Text: promptText,
					},
				},
			},
		},
	}
}
