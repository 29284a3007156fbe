package testsupport

import (
	"context"
	"sync"
	"sync/atomic"

	"lumen/internal/textgen"
)

// SampleResponse is a well-formed generation with one recommendation for
// shadow work and one for the body scan.
const SampleResponse = `PATTERN: You clearly avoid conflict when the stakes rise.
---
- shadow-journal | Rationale: Your shadow sessions keep returning to conflict.
- body-scan | Rationale: Tension shows up before hard conversations.`

// ScriptedProvider replies with a fixed text or error. When Gate is non-nil
// every call blocks until Gate is closed or the context ends.
type ScriptedProvider struct {
	ProviderName string
	Text         string
	Err          error
	Gate         chan struct{}

	calls   atomic.Int32
	mu      sync.Mutex
	started chan struct{}
	last    textgen.Request
}

// Name implements textgen.Provider.
func (p *ScriptedProvider) Name() string {
	if p.ProviderName == "" {
		return "scripted"
	}
	return p.ProviderName
}

// Complete implements textgen.Provider.
func (p *ScriptedProvider) Complete(ctx context.Context, req textgen.Request) (textgen.Response, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.last = req
	started := p.started
	p.mu.Unlock()
	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if p.Gate != nil {
		select {
		case <-p.Gate:
		case <-ctx.Done():
			return textgen.Response{}, ctx.Err()
		}
	}
	if p.Err != nil {
		return textgen.Response{}, p.Err
	}
	return textgen.Response{Success: true, Text: p.Text, Provider: p.Name(), Model: "scripted-1"}, nil
}

// Calls reports how many times Complete ran.
func (p *ScriptedProvider) Calls() int {
	return int(p.calls.Load())
}

// LastRequest returns the most recent request.
func (p *ScriptedProvider) LastRequest() textgen.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Started returns a channel that receives once per call that reaches the
// provider. It must be requested before the calls it observes.
func (p *ScriptedProvider) Started() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started == nil {
		p.started = make(chan struct{}, 16)
	}
	return p.started
}
