package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bbuddy-otp/internal/domain"
)

const ttlAttribute = "ttl"

// DefaultRetention is how long an unverified record outlives its expiry
// before DynamoDB TTL removes it.
const DefaultRetention = 24 * time.Hour

// API is the subset of the DynamoDB client the OTP store uses.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// OTPStore manages pending OTP records.
// PK: email. The ttl attribute drives DynamoDB's native expiry.
type OTPStore struct {
	client    API
	tableName string
	retention time.Duration
}

func NewOTPStore(client API, tableName string, retention time.Duration) *OTPStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &OTPStore{client: client, tableName: tableName, retention: retention}
}

func (r *OTPStore) item(rec *domain.OTPRecord) (map[string]types.AttributeValue, error) {
	row := *rec
	row.TTL = rec.ExpiresAtTime().Add(r.retention).Unix()
	item, err := attributevalue.MarshalMap(row)
	if err != nil {
		return nil, fmt.Errorf("marshal otp: %w", err)
	}
	return item, nil
}

func (r *OTPStore) Save(ctx context.Context, rec *domain.OTPRecord) error {
	item, err := r.item(rec)
	if err != nil {
		return err
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamo put otp: %w", err)
	}
	return nil
}

func (r *OTPStore) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey("email", email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamo get otp: %w", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp for %s: %w", email, domain.ErrNotFound)
	}
	var rec domain.OTPRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal otp: %w", err)
	}
	rec.TTL = 0
	return &rec, nil
}

func (r *OTPStore) DeleteIfCode(ctx context.Context, email, code string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("email", email),
		ConditionExpression:      aws.String("#c = :c"),
		ExpressionAttributeNames: map[string]string{"#c": "code"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: code},
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("otp for %s: %w", email, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("dynamo delete otp: %w", err)
	}
	return nil
}
