package enhance

import (
	"context"
	"fmt"
	"strings"

	"github.com/audionote/api/internal/application/ledger"
	"github.com/audionote/api/internal/domain"
	"github.com/audionote/api/internal/infrastructure/openai"
	"github.com/audionote/api/internal/pkg/textfmt"
)

// Prompt templates by enhancement mode. Unrecognized modes fall back to "fix".
var prompts = map[string]string{
	"fix":         "Fix the grammar, spelling, and punctuation in the following text while preserving the original meaning and tone. Make it clear and readable:\n\n%s",
	"rewrite":     "Rewrite and restructure the following text to make it clear, professional, and well-organized. Improve flow and readability while preserving all key information:\n\n%s",
	"summarize":   "Summarize the following text into key points, keeping the most important information concise and clear:\n\n%s",
	"formal":      "Rewrite the following text in a formal, professional tone suitable for business or academic contexts:\n\n%s",
	"bullets":     "Convert the following text into a well-organized bullet point format, grouping related ideas together:\n\n%s",
	"auto-format": "Transform this voice note transcript into structured, perfectly edited text. Fix grammar, improve flow, add proper punctuation, and organize into clear paragraphs. Make it professional and readable:\n\n%s",
}

const enhanceCost = 1.0 // minutes per enhancement

// Result is the outcome of an enhancement request. Enhanced is false when the
// local cleanup fallback ran instead of the AI upstream.
type Result struct {
	EnhancedText     string   `json:"enhancedText"`
	RemainingMinutes *float64 `json:"remainingMinutes,omitempty"`
	Enhanced         bool     `json:"enhanced"`
	Message          string   `json:"message,omitempty"`
}

type Service interface {
	// Enhance runs the mode-selected AI enhancement for an authenticated user
	// with sufficient balance, debiting one minute on success. A nil user gets
	// the deterministic local cleanup instead.
	Enhance(ctx context.Context, text, mode string, user *domain.User) (*Result, error)
}

type service struct {
	ledger    ledger.Service
	completer openai.Completer
}

func NewService(ledgerSvc ledger.Service, completer openai.Completer) Service {
	return &service{ledger: ledgerSvc, completer: completer}
}

func (s *service) Enhance(ctx context.Context, text, mode string, user *domain.User) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is required: %w", domain.ErrBadRequest)
	}

	if user == nil {
		return &Result{
			EnhancedText: textfmt.Clean(text),
			Enhanced:     false,
			Message:      "Basic formatting applied. Sign up for AI-powered enhancement!",
		}, nil
	}

	// The balance gate runs before the upstream call: a zero-balance account
	// must never trigger a paid completion.
	if user.RemainingMinutes < enhanceCost {
		return nil, fmt.Errorf("insufficient conversion time remaining: %w", domain.ErrPaymentRequired)
	}

	tmpl, ok := prompts[mode]
	if !ok {
		mode = "fix"
		tmpl = prompts[mode]
	}
	enhanced, err := s.completer.Complete(ctx, fmt.Sprintf(tmpl, text))
	if err != nil {
		return nil, err
	}

	remaining, err := s.ledger.Debit(ctx, user.UserID, enhanceCost, "enhancement:"+mode)
	if err != nil {
		return nil, err
	}
	return &Result{
		EnhancedText:     enhanced,
		RemainingMinutes: &remaining,
		Enhanced:         true,
	}, nil
}
