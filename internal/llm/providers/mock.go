package providers

import "context"

// Mock is the disabled-provider stand-in. It always succeeds with a neutral
// reply so wiring code never has to branch on "no provider configured".
type Mock struct{}

// NewMock creates the mock provider.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Name() string { return "mock" }

// Analyze returns a fixed neutral result. Scoring and drafting treat the
// mock as disabled and never blend with it.
func (m *Mock) Analyze(ctx context.Context, prompt string) (string, error) {
	return `{"score": 0, "tags": [], "rationale": "mock provider", "fact_check_questions": []}`, nil
}
