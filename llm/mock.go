package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is a deterministic, scripted Client for offline tests. Each
// Complete call consumes the next scripted response in order; when the
// script is exhausted the last response repeats.
type MockClient struct {
	mu        sync.Mutex
	name      string
	responses []Response
	errs      []error
	calls     int
	prompts   []string
}

// NewMockClient creates a mock identified by name with the given scripted
// responses.
func NewMockClient(name string, responses ...Response) *MockClient {
	return &MockClient{name: name, responses: responses}
}

// FailWith appends a scripted error. Errors are consumed in the same
// order as responses: call n returns errs[n] when set.
func (m *MockClient) FailWith(errs ...error) *MockClient {
	m.errs = append(m.errs, errs...)
	return m
}

// Complete returns the next scripted response.
func (m *MockClient) Complete(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	call := m.calls
	m.calls++
	m.prompts = append(m.prompts, req.Prompt)

	if call < len(m.errs) && m.errs[call] != nil {
		return Response{}, m.errs[call]
	}
	if len(m.responses) == 0 {
		return Response{}, fmt.Errorf("mock %q has no scripted responses", m.name)
	}
	if call >= len(m.responses) {
		call = len(m.responses) - 1
	}

	resp := m.responses[call]
	if resp.ModelName == "" {
		resp.ModelName = m.name
	}
	return resp, nil
}

// ModelName returns the mock's identifier.
func (m *MockClient) ModelName() string { return m.name }

// Calls returns how many times Complete was invoked.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Prompts returns a copy of every prompt seen, in call order.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
