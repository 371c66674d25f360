package provider

import "context"

// Mock is a canned Describer for tests and local development.
type Mock struct {
	Text string
	Err  error

	// Calls counts Describe invocations.
	Calls int
}

var _ Describer = (*Mock)(nil)

func NewMock(text string) *Mock {
	return &Mock{Text: text}
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Describe(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	m.Calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

func (m *Mock) Ping(ctx context.Context) error {
	return m.Err
}
