package provider

import (
	"context"
	"sync"

	"github.com/tawada/discord-AI-bot/chat"
)

// MockGenerator is a test implementation of Generator.
//
// It provides configurable responses, error injection, and call history
// tracking, and is safe for concurrent use.
//
// Example:
//
//	mock := &MockGenerator{
//	    Provider:  TagOpenAI,
//	    Responses: []chat.Response{chat.Assistant("first"), chat.Assistant("second")},
//	}
//	out, err := mock.Generate(ctx, "gpt-4o", messages)
//	// Returns "first", then "second" on subsequent calls.
type MockGenerator struct {
	// Provider is the tag this mock reports.
	Provider Tag

	// Responses is the sequence of responses to return. When consumed,
	// the last response repeats.
	Responses []chat.Response

	// Err, if set, is returned by Generate instead of a response.
	Err error

	// Calls records every Generate invocation.
	Calls []MockCall

	mu        sync.Mutex
	callIndex int
}

// MockCall records a single Generate invocation.
type MockCall struct {
	Model    string
	Messages []chat.Message
}

// Generate implements the Generator interface.
func (m *MockGenerator) Generate(ctx context.Context, model string, messages []chat.Message) (chat.Response, error) {
	if ctx.Err() != nil {
		return chat.Response{}, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Model: model, Messages: messages})

	if m.Err != nil {
		return chat.Response{}, m.Err
	}
	if len(m.Responses) == 0 {
		return chat.Assistant(""), nil
	}

	idx := m.callIndex
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	} else {
		m.callIndex++
	}
	return m.Responses[idx], nil
}

// Tag implements the Generator interface.
func (m *MockGenerator) Tag() Tag { return m.Provider }

// CallCount returns how many times Generate has been called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent invocation, or false when none exists.
func (m *MockGenerator) LastCall() (MockCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return MockCall{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}

// Reset clears the call history and response cursor.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.callIndex = 0
}
