package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"edgelink.local/internal/app/shortlink"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the slice of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// dynamoItem is the table layout. expiresAt doubles as the table's TTL attribute.
type dynamoItem struct {
	ID           string `dynamodbav:"id"`
	OriginalURL  string `dynamodbav:"originalUrl"`
	ShortenedURL string `dynamodbav:"shortenedUrl"`
	ExpiresAt    int64  `dynamodbav:"expiresAt"`
	TTL          *int64 `dynamodbav:"ttl,omitempty"`
	CreatedAt    int64  `dynamodbav:"createdAt,omitempty"`
}

type DynamoStore struct {
	client DynamoAPI
	table  string
}

func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

func (s *DynamoStore) Get(ctx context.Context, code string) (*shortlink.Record, error) {
	dbctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	out, err := s.client.GetItem(dbctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: code},
		},
		// strongly consistent so a put is visible to the next get
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		slog.Error("dynamodb get item failed", "table", s.table, "code", code, "err", err)
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, shortlink.ErrRecordNotFound
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("decode item %s: %w", code, err)
	}
	rec := &shortlink.Record{
		Code:       item.ID,
		Target:     item.OriginalURL,
		ShortURL:   item.ShortenedURL,
		ExpiresAt:  item.ExpiresAt,
		TTLSeconds: item.TTL,
	}
	if item.CreatedAt > 0 {
		rec.CreatedAt = time.Unix(item.CreatedAt, 0)
	}
	return rec, nil
}

func (s *DynamoStore) Put(ctx context.Context, rec *shortlink.Record, opts shortlink.PutOptions) error {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	item, err := attributevalue.MarshalMap(dynamoItem{
		ID:           rec.Code,
		OriginalURL:  rec.Target,
		ShortenedURL: rec.ShortURL,
		ExpiresAt:    rec.ExpiresAt,
		TTL:          rec.TTLSeconds,
		CreatedAt:    unixOrZero(rec.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("encode item %s: %w", rec.Code, err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}
	if !opts.Overwrite {
		input.ConditionExpression = aws.String("attribute_not_exists(#id)")
		input.ExpressionAttributeNames = map[string]string{"#id": "id"}
	}

	if _, err := s.client.PutItem(dbctx, input); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return shortlink.ErrCodeTaken
		}
		slog.Error("dynamodb put item failed", "table", s.table, "code", rec.Code, "err", err)
		return err
	}
	return nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
