package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/audionote/api/internal/domain"
)

// EventRepo stores the append-only usage and payment history.
// PK: event_id. Payment events use the external payment id as event_id, so a
// replayed payment notification collides on the key instead of crediting twice.
// Per-user history reads go through the user_id-created_at-index GSI.
type EventRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewEventRepo(client *dynamodb.Client, tableName string) *EventRepo {
	return &EventRepo{client: client, tableName: tableName}
}

// Append writes an event unconditionally.
func (r *EventRepo) Append(ctx context.Context, e *domain.Event) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// AppendUnique writes an event only if no event with the same id exists.
// Returns domain.ErrConflict on a duplicate.
func (r *EventRepo) AppendUnique(ctx context.Context, e *domain.Event) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(event_id)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("event %s already recorded: %w", e.EventID, domain.ErrConflict)
	}
	return err
}

// Delete removes an event by id. Used to back out a payment record whose
// balance credit failed, so a retry of the same payment id credits instead
// of reading as a replay.
func (r *EventRepo) Delete(ctx context.Context, eventID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("event_id", eventID),
	})
	return err
}

// ListByUser returns up to limit events for a user, newest first, optionally
// filtered by kind ("" means all kinds).
func (r *EventRepo) ListByUser(ctx context.Context, userID, kind string, limit int32) ([]domain.Event, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	}
	if kind != "" {
		input.FilterExpression = aws.String("kind = :k")
		input.ExpressionAttributeValues[":k"] = &types.AttributeValueMemberS{Value: kind}
	}
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, err
	}
	var events []domain.Event
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &events); err != nil {
		return nil, err
	}
	return events, nil
}
