package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"
	"github.com/JaimeStill/go-agents/pkg/agent"
	"github.com/JaimeStill/postbox/pkg/capability"
	"github.com/JaimeStill/postbox/pkg/formatting"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// session drives one Chromium page. All page-mutating calls are serialized
// behind mu; element handles index into arena and die with the session.
type session struct {
	config  Config
	agent   agent.Agent
	chrome  *launcher.Launcher
	browser *rod.Browser
	page    *rod.Page
	logger  *slog.Logger

	mu     sync.Mutex
	arena  []*rod.Element
	trace  []capability.TraceEntry
	closed bool
}

// actDecision is the model's interpretation of an instruction: which action
// to replay against the page and what it observed in the element inventory.
type actDecision struct {
	Action      string `json:"action"`
	Selector    string `json:"selector"`
	Text        string `json:"text"`
	Observation string `json:"observation"`
}

func (s *session) Act(ctx context.Context, instruction string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", capability.ErrInvalidHandle
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.ActTimeoutDuration())
	defer cancel()

	digest, err := s.digest(ctx)
	if err != nil {
		return "", s.wrap("digest page", err)
	}

	prompt := actPrompt(instruction, digest)
	resp, err := s.agent.Chat(ctx, prompt)
	if err != nil {
		return "", s.wrap("interpret instruction", err)
	}

	decision, err := formatting.Parse[actDecision](resp.Content())
	if err != nil {
		return "", s.wrap("parse decision", err)
	}

	if err := s.apply(ctx, decision); err != nil {
		return "", err
	}

	s.record(instruction, decision.Observation)
	return decision.Observation, nil
}

// apply replays the model's chosen action against the live page.
func (s *session) apply(ctx context.Context, d actDecision) error {
	page := s.page.Context(ctx)

	switch d.Action {
	case "click":
		el, err := page.Element(d.Selector)
		if err != nil {
			return s.wrap(fmt.Sprintf("locate %q", d.Selector), err)
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return s.wrap(fmt.Sprintf("click %q", d.Selector), err)
		}
		if err := page.Timeout(s.config.NavigateTimeoutDuration()).WaitLoad(); err != nil {
			return s.wrap("wait load", err)
		}
	case "type":
		el, err := page.Element(d.Selector)
		if err != nil {
			return s.wrap(fmt.Sprintf("locate %q", d.Selector), err)
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return s.wrap(fmt.Sprintf("focus %q", d.Selector), err)
		}
		if err := page.InsertText(d.Text); err != nil {
			return s.wrap(fmt.Sprintf("type into %q", d.Selector), err)
		}
	case "none", "":
		// Observation-only instruction.
	default:
		return fmt.Errorf("%w: unsupported action %q", capability.ErrCapability, d.Action)
	}
	return nil
}

func (s *session) ActOn(ctx context.Context, instruction string, el capability.Handle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	element, err := s.lookup(el)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.ActTimeoutDuration())
	defer cancel()

	data, err := s.screenshotElement(ctx, element)
	if err != nil {
		return "", err
	}

	dataURI, err := encoding.EncodeImageDataURI(data, document.PNG)
	if err != nil {
		return "", s.wrap("encode element image", err)
	}

	resp, err := s.agent.Vision(ctx, instruction, []string{dataURI})
	if err != nil {
		return "", s.wrap("inspect element", err)
	}

	observation := resp.Content()
	s.record(instruction, observation)
	return observation, nil
}

// TypeSecret injects text through the page's raw input channel. The text is
// never composed into a prompt and never recorded in the trace.
func (s *session) TypeSecret(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return capability.ErrInvalidHandle
	}

	if err := s.page.Context(ctx).InsertText(text); err != nil {
		return s.wrap("insert text", err)
	}
	return nil
}

func (s *session) Candidates(ctx context.Context) ([]capability.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, capability.ErrInvalidHandle
	}

	page := s.page.Context(ctx)
	seen := make(map[string]bool)
	var candidates []capability.Candidate

	for _, selector := range s.config.Selectors {
		elements, err := page.Elements(selector)
		if err != nil {
			return nil, s.wrap(fmt.Sprintf("query %q", selector), err)
		}

		for _, el := range elements {
			src, err := el.Attribute("src")
			if err != nil || src == nil || *src == "" {
				continue
			}
			if seen[*src] {
				continue
			}
			seen[*src] = true

			alt := ""
			if a, err := el.Attribute("alt"); err == nil && a != nil {
				alt = *a
			}

			handle := capability.Handle(len(s.arena))
			s.arena = append(s.arena, el)
			candidates = append(candidates, capability.Candidate{
				Ordinal: len(candidates),
				Source:  *src,
				Alt:     alt,
				Element: handle,
			})
		}
	}

	s.logger.Debug("candidates enumerated", "count", len(candidates))
	return candidates, nil
}

func (s *session) CaptureElement(ctx context.Context, el capability.Handle) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	element, err := s.lookup(el)
	if err != nil {
		return nil, err
	}
	return s.screenshotElement(ctx, element)
}

func (s *session) CaptureScreen(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, capability.ErrInvalidHandle
	}

	data, err := s.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, s.wrap("capture screen", err)
	}
	return data, nil
}

func (s *session) Trace() []capability.TraceEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]capability.TraceEntry, len(s.trace))
	copy(out, s.trace)
	return out
}

func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.arena = nil

	err := s.browser.Close()
	s.chrome.Cleanup()
	if err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

func (s *session) screenshotElement(ctx context.Context, el *rod.Element) ([]byte, error) {
	if err := el.Context(ctx).ScrollIntoView(); err != nil {
		return nil, s.wrap("scroll to element", err)
	}
	data, err := el.Context(ctx).Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, s.wrap("capture element", err)
	}
	return data, nil
}

func (s *session) lookup(el capability.Handle) (*rod.Element, error) {
	if s.closed || el < 0 || int(el) >= len(s.arena) {
		return nil, capability.ErrInvalidHandle
	}
	return s.arena[int(el)], nil
}

func (s *session) record(instruction, observation string) {
	s.trace = append(s.trace, capability.TraceEntry{
		At:          time.Now().UTC(),
		Instruction: instruction,
		Observation: observation,
	})
}

func (s *session) wrap(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", capability.ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %w", capability.ErrCapability, op, err)
}
