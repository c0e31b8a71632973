package domain

import "time"

// Transcript is a processed voice note. AudioKey points at the archived raw
// audio in S3 and is empty when the caller sent no audio payload.
type Transcript struct {
	TranscriptID string    `json:"id" dynamodbav:"transcript_id"`
	UserID       string    `json:"user_id,omitempty" dynamodbav:"user_id"`
	Text         string    `json:"text" dynamodbav:"text"`
	Structured   string    `json:"structured" dynamodbav:"structured"`
	AudioKey     string    `json:"audio_key,omitempty" dynamodbav:"audio_key"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
}
