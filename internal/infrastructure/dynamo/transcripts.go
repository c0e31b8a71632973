package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/audionote/api/internal/domain"
)

// TranscriptRepo provides typed DynamoDB operations for the transcripts table.
type TranscriptRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTranscriptRepo(client *dynamodb.Client, tableName string) *TranscriptRepo {
	return &TranscriptRepo{client: client, tableName: tableName}
}

func (r *TranscriptRepo) Put(ctx context.Context, t *domain.Transcript) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByUser returns up to limit transcripts for a user, newest first.
func (r *TranscriptRepo) ListByUser(ctx context.Context, userID string, limit int32) ([]domain.Transcript, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	var transcripts []domain.Transcript
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &transcripts); err != nil {
		return nil, err
	}
	return transcripts, nil
}
