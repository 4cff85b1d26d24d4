package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bbuddy-otp/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTable is a single-table stand-in keyed by the "email" attribute.
// It understands only the "#c = :c" condition used by DeleteIfCode.
type fakeTable struct {
	items   map[string]map[string]types.AttributeValue
	lastPut *dynamodb.PutItemInput
	failGet error
}

func newFakeTable() *fakeTable {
	return &fakeTable{items: map[string]map[string]types.AttributeValue{}}
}

func keyOf(item map[string]types.AttributeValue) string {
	return item["email"].(*types.AttributeValueMemberS).Value
}

func (f *fakeTable) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPut = in
	f.items[keyOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeTable) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeTable) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	k := keyOf(in.Key)
	item, ok := f.items[k]
	if in.ConditionExpression != nil {
		want := in.ExpressionAttributeValues[":c"].(*types.AttributeValueMemberS).Value
		attr := in.ExpressionAttributeNames["#c"]
		got, _ := item[attr].(*types.AttributeValueMemberS)
		if !ok || got == nil || got.Value != want {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}
	delete(f.items, k)
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestOTPStore_SaveSetsTTL(t *testing.T) {
	table := newFakeTable()
	s := NewOTPStore(table, "otp_records", time.Hour)
	exp := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rec := &domain.OTPRecord{ID: "1", Email: "a@x.com", Code: "123456", ExpiresAt: exp.UnixMilli()}
	require.NoError(t, s.Save(context.Background(), rec))

	assert.Equal(t, "otp_records", aws.ToString(table.lastPut.TableName))
	ttl, ok := table.lastPut.Item["ttl"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "1767272400", ttl.Value) // exp + 1h
	assert.Zero(t, rec.TTL, "caller's record must not be mutated")
}

func TestOTPStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewOTPStore(newFakeTable(), "otp_records", 0)
	rec := &domain.OTPRecord{ID: "1", Email: "a@x.com", Code: "123456", ExpiresAt: 1700000000000, CreatedAt: 1699999400000}
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestOTPStore_GetMissing(t *testing.T) {
	s := NewOTPStore(newFakeTable(), "otp_records", 0)
	_, err := s.Get(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOTPStore_GetError(t *testing.T) {
	table := newFakeTable()
	table.failGet = errors.New("throttled")
	s := NewOTPStore(table, "otp_records", 0)
	_, err := s.Get(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorContains(t, err, "throttled")
}

func TestOTPStore_DeleteIfCode(t *testing.T) {
	ctx := context.Background()
	table := newFakeTable()
	s := NewOTPStore(table, "otp_records", 0)
	require.NoError(t, s.Save(ctx, &domain.OTPRecord{ID: "1", Email: "a@x.com", Code: "111111", ExpiresAt: 1}))

	assert.ErrorIs(t, s.DeleteIfCode(ctx, "a@x.com", "222222"), domain.ErrNotFound)
	assert.Len(t, table.items, 1)

	require.NoError(t, s.DeleteIfCode(ctx, "a@x.com", "111111"))
	assert.Empty(t, table.items)
	assert.ErrorIs(t, s.DeleteIfCode(ctx, "a@x.com", "111111"), domain.ErrNotFound)
}

func TestIsConditionFailed(t *testing.T) {
	assert.True(t, isConditionFailed(&types.ConditionalCheckFailedException{}))
	assert.False(t, isConditionFailed(errors.New("boom")))
	assert.False(t, isConditionFailed(nil))
}
