package service_test

import (
	"context"
	"sync"
)

// fakeGenerator returns a canned response and records every call.
type fakeGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	keys     []string
	prompts  []string
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, apiKey, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.keys = append(f.keys, apiKey)
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

const validGeneration = `{
  "markdown": "# Executive Summary\nWe build it.",
  "lineItems": [
    {"description": "Design", "quantity": 2, "unit_price": 500},
    {"description": "Build", "quantity": "3", "unit_price": "1000.50"}
  ]
}`

// fakePrinter returns a fixed PDF and keeps the last HTML it was given.
type fakePrinter struct {
	mu   sync.Mutex
	html string
	err  error
}

func (p *fakePrinter) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.html = html
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-1.7 fake"), nil
}
