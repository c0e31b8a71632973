package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/audionote/api/internal/domain"
	"github.com/audionote/api/internal/pkg/id"
)

// Demo transcripts served while no real speech-recognition backend is wired.
var demoTranscripts = []string{
	"Hello, I wanted to follow up on our meeting yesterday about the new project proposal. I think we should schedule another call to discuss the timeline and budget requirements.",
	"This is a reminder about the upcoming conference next week. Please make sure to register and book your hotel accommodations as soon as possible.",
	"I've been thinking about our conversation regarding the marketing strategy. I have some new ideas that could help increase our reach and engagement.",
	"Quick note about today's presentation - it went really well and the client seemed very interested in our proposal. I'll send over the follow-up materials tomorrow.",
	"Just wanted to record some thoughts about the team meeting. We need to prioritize the user experience improvements and focus on the mobile interface.",
}

// AudioStore archives raw audio payloads.
type AudioStore interface {
	UploadBase64(ctx context.Context, key, b64Data string) (string, error)
	Delete(ctx context.Context, key string) error
}

// TranscriptStore persists processed transcripts.
type TranscriptStore interface {
	Put(ctx context.Context, t *domain.Transcript) error
}

// Result is the transcription outcome. Enhanced marks authenticated requests.
type Result struct {
	Transcript       string   `json:"transcript"`
	Structured       string   `json:"structured"`
	Enhanced         bool     `json:"enhanced"`
	RemainingMinutes *float64 `json:"remainingMinutes,omitempty"`
	Message          string   `json:"message,omitempty"`
}

type Service interface {
	// Transcribe processes an audio payload into a transcript plus a
	// structured rendering. A nil user gets the basic tier.
	Transcribe(ctx context.Context, audioData string, user *domain.User) (*Result, error)
}

type service struct {
	audio       AudioStore
	transcripts TranscriptStore
}

func NewService(audio AudioStore, transcripts TranscriptStore) Service {
	return &service{audio: audio, transcripts: transcripts}
}

func (s *service) Transcribe(ctx context.Context, audioData string, user *domain.User) (*Result, error) {
	if audioData == "" {
		return nil, fmt.Errorf("audio data is required: %w", domain.ErrBadRequest)
	}

	transcript := demoTranscripts[rand.Intn(len(demoTranscripts))]
	structured := structure(transcript)

	t := &domain.Transcript{
		TranscriptID: id.New(),
		Text:         transcript,
		Structured:   structured,
		CreatedAt:    time.Now().UTC(),
	}
	if user != nil {
		t.UserID = user.UserID
	}

	// Archive the raw clip; losing it degrades history, not the response.
	key := fmt.Sprintf("audio/%s", t.TranscriptID)
	if _, err := s.audio.UploadBase64(ctx, key, audioData); err != nil {
		slog.Warn("failed to archive audio clip", "transcript_id", t.TranscriptID, "err", err)
	} else {
		t.AudioKey = key
	}

	if err := s.transcripts.Put(ctx, t); err != nil {
		slog.Warn("failed to persist transcript", "transcript_id", t.TranscriptID, "err", err)
		// No metadata row means nothing will ever reference the clip again;
		// remove it instead of leaving an orphan in the bucket.
		if t.AudioKey != "" {
			if delErr := s.audio.Delete(ctx, t.AudioKey); delErr != nil {
				slog.Warn("failed to remove orphaned audio clip", "key", t.AudioKey, "err", delErr)
			}
			t.AudioKey = ""
		}
	}

	if user != nil {
		return &Result{
			Transcript:       transcript,
			Structured:       structured,
			Enhanced:         true,
			RemainingMinutes: &user.RemainingMinutes,
		}, nil
	}
	return &Result{
		Transcript: transcript,
		Structured: structured,
		Enhanced:   false,
		Message:    "Sign up for enhanced AI processing and unlimited recording!",
	}, nil
}

// structure renders a transcript as a Main Point / bullets / Next Steps
// outline. Short transcripts are returned as-is.
func structure(transcript string) string {
	sentences := strings.Split(transcript, ". ")
	if len(sentences) <= 2 {
		return transcript
	}
	parts := make([]string, 0, len(sentences))
	for i, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		switch i {
		case 0:
			parts = append(parts, fmt.Sprintf("**Main Point:** %s.", strings.TrimSuffix(sentence, ".")))
		case len(sentences) - 1:
			parts = append(parts, fmt.Sprintf("**Next Steps:** %s", sentence))
		default:
			parts = append(parts, fmt.Sprintf("• %s.", strings.TrimSuffix(sentence, ".")))
		}
	}
	return strings.Join(parts, "\n\n")
}
