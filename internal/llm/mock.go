package llm

import "context"

// MockClient permite tests sin llamar a un modelo real.
type MockClient struct {
	Response string
	Err      error
	Calls    int
}

func (m *MockClient) AnalyzeImage(ctx context.Context, prompt string, image []byte) (string, error) {
	m.Calls++
	return m.Response, m.Err
}
