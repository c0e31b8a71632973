package http

import (
	"github.com/audionote/api/internal/infrastructure/dynamo"
	s3infra "github.com/audionote/api/internal/infrastructure/s3"
	"github.com/audionote/api/internal/infrastructure/smtp"
	"github.com/audionote/api/internal/infrastructure/stripe"

	"github.com/audionote/api/internal/infrastructure/openai"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	VerificationRepo *dynamo.VerificationRepo
	EventRepo        *dynamo.EventRepo
	TranscriptRepo   *dynamo.TranscriptRepo
	AudioStore       *s3infra.Store
	Mailer           smtp.Mailer
	Completer        openai.Completer
	Checkout         stripe.CheckoutCreator
}
