package domain

// EmailVerification is a pending one-time login code.
// PK: email. At most one pending code per address; issuing a new code
// overwrites the previous record. ExpiresAt doubles as the DynamoDB TTL.
// The code itself is stored bcrypt-hashed.
type EmailVerification struct {
	Email     string `json:"email" dynamodbav:"email"`
	CodeHash  string `json:"-" dynamodbav:"code_hash"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	Attempts  int    `json:"attempts" dynamodbav:"attempts"`
}

// MaxVerifyAttempts is the number of wrong codes tolerated before the
// pending record is discarded.
const MaxVerifyAttempts = 3
