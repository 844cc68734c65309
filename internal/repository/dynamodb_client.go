package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"sake-recommendation/internal/domain"
)

const (
	attrUserID        = "userId"
	attrRecordID      = "recordId"
	attrSakeName      = "sake_name"
	attrImpression    = "impression"
	attrRating        = "rating"
	attrLabelImageKey = "label_image_key"
	attrCreatedAt     = "created_at"
	attrUpdatedAt     = "updated_at"

	SakeNameIndex = "sake_name-created_at-index"
	RatingIndex   = "rating-created_at-index"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Client wraps the drinking-records table.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

func recordKey(userID, recordID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrUserID:   &types.AttributeValueMemberS{Value: userID},
		attrRecordID: &types.AttributeValueMemberS{Value: recordID},
	}
}

// CreateRecord writes rec unconditionally and returns it.
func (c *Client) CreateRecord(ctx context.Context, rec domain.StoredRecord) (domain.StoredRecord, error) {
	if rec.UserID == "" || rec.RecordID == "" {
		return domain.StoredRecord{}, errors.New("repository: CreateRecord: userId and recordId are required")
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return domain.StoredRecord{}, fmt.Errorf("repository: CreateRecord marshal: %w", err)
	}
	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      item,
	})
	if err != nil {
		return domain.StoredRecord{}, fmt.Errorf("repository: CreateRecord: %w", err)
	}
	return rec, nil
}

// GetRecordsByUserID returns every record of the user, newest first.
func (c *Client) GetRecordsByUserID(ctx context.Context, userID string) ([]domain.StoredRecord, error) {
	in, err := c.userQuery(userID)
	if err != nil {
		return nil, fmt.Errorf("repository: GetRecordsByUserID build: %w", err)
	}

	records := make([]domain.StoredRecord, 0)
	p := dynamodb.NewQueryPaginator(c.api, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("repository: GetRecordsByUserID query: %w", err)
		}
		batch, err := unmarshalRecords(page.Items)
		if err != nil {
			return nil, fmt.Errorf("repository: GetRecordsByUserID unmarshal: %w", err)
		}
		records = append(records, batch...)
	}
	return records, nil
}

// GetRecentRecords returns at most limit records of the user, newest first.
func (c *Client) GetRecentRecords(ctx context.Context, userID string, limit int) ([]domain.StoredRecord, error) {
	if limit <= 0 {
		return nil, errors.New("repository: GetRecentRecords: limit must be positive")
	}
	in, err := c.userQuery(userID)
	if err != nil {
		return nil, fmt.Errorf("repository: GetRecentRecords build: %w", err)
	}
	in.Limit = aws.Int32(int32(limit))

	out, err := c.api.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("repository: GetRecentRecords query: %w", err)
	}
	records, err := unmarshalRecords(out.Items)
	if err != nil {
		return nil, fmt.Errorf("repository: GetRecentRecords unmarshal: %w", err)
	}
	return records, nil
}

func (c *Client) userQuery(userID string) (*dynamodb.QueryInput, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(attrUserID).Equal(expression.Value(userID))).
		Build()
	if err != nil {
		return nil, err
	}
	return &dynamodb.QueryInput{
		TableName:                 aws.String(c.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}, nil
}

// GetRecord returns nil when the record does not exist.
func (c *Client) GetRecord(ctx context.Context, userID, recordID string) (*domain.StoredRecord, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key:       recordKey(userID, recordID),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: GetRecord: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, nil
	}
	var rec domain.StoredRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("repository: GetRecord unmarshal: %w", err)
	}
	return &rec, nil
}

// QueryBySakeName queries the sake_name index for one user's records,
// optionally bounded on created_at. The index partition holds every user's
// items; the owner check is a filter, so read capacity is charged for the
// whole partition slice.
func (c *Client) QueryBySakeName(ctx context.Context, userID, sakeName string, r *domain.DateRange) ([]domain.StoredRecord, error) {
	records, err := c.queryIndex(ctx, SakeNameIndex, attrSakeName, sakeName, userID, r)
	if err != nil {
		return nil, fmt.Errorf("repository: QueryBySakeName: %w", err)
	}
	return records, nil
}

// QueryByRating queries the rating index for one user's records, optionally
// bounded on created_at. Same read cost as QueryBySakeName.
func (c *Client) QueryByRating(ctx context.Context, userID string, rating domain.Rating, r *domain.DateRange) ([]domain.StoredRecord, error) {
	records, err := c.queryIndex(ctx, RatingIndex, attrRating, string(rating), userID, r)
	if err != nil {
		return nil, fmt.Errorf("repository: QueryByRating: %w", err)
	}
	return records, nil
}

func (c *Client) queryIndex(ctx context.Context, index, hashAttr, hashValue, userID string, r *domain.DateRange) ([]domain.StoredRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user id must not be empty")
	}
	expr, err := expression.NewBuilder().
		WithKeyCondition(indexKeyCondition(hashAttr, hashValue, r)).
		WithFilter(expression.Name(attrUserID).Equal(expression.Value(userID))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	in := &dynamodb.QueryInput{
		TableName:                 aws.String(c.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	records := make([]domain.StoredRecord, 0)
	p := dynamodb.NewQueryPaginator(c.api, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query: %w", err)
		}
		batch, err := unmarshalRecords(page.Items)
		if err != nil {
			return nil, fmt.Errorf("unmarshal: %w", err)
		}
		records = append(records, batch...)
	}
	return records, nil
}

// indexKeyCondition combines the hash equality with one of the four
// created_at range forms.
func indexKeyCondition(hashAttr, hashValue string, r *domain.DateRange) expression.KeyConditionBuilder {
	hash := expression.Key(hashAttr).Equal(expression.Value(hashValue))
	created := expression.Key(attrCreatedAt)

	switch r.Form() {
	case domain.RangeFrom:
		return hash.And(created.GreaterThanEqual(expression.Value(r.From)))
	case domain.RangeTo:
		return hash.And(created.LessThanEqual(expression.Value(r.To)))
	case domain.RangeBetween:
		return hash.And(created.Between(expression.Value(r.From), expression.Value(r.To)))
	default:
		return hash
	}
}

// UpdateRecord sets the present attributes of patch on an existing record and
// returns the item as stored after the write. Key attributes are never set.
func (c *Client) UpdateRecord(ctx context.Context, userID, recordID string, patch domain.StoredPatch) (domain.StoredRecord, error) {
	update, ok := updateBuilder(patch)
	if !ok {
		return domain.StoredRecord{}, domain.ErrNoAttributesToUpdate
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name(attrRecordID))).
		Build()
	if err != nil {
		return domain.StoredRecord{}, fmt.Errorf("repository: UpdateRecord build: %w", err)
	}

	out, err := c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(c.tableName),
		Key:                       recordKey(userID, recordID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return domain.StoredRecord{}, domain.ErrRecordNotFound
		}
		return domain.StoredRecord{}, fmt.Errorf("repository: UpdateRecord: %w", err)
	}

	var rec domain.StoredRecord
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return domain.StoredRecord{}, fmt.Errorf("repository: UpdateRecord unmarshal: %w", err)
	}
	return rec, nil
}

func updateBuilder(p domain.StoredPatch) (expression.UpdateBuilder, bool) {
	var (
		update expression.UpdateBuilder
		n      int
	)
	set := func(attr string, v any) {
		update = update.Set(expression.Name(attr), expression.Value(v))
		n++
	}
	if p.SakeName != nil {
		set(attrSakeName, *p.SakeName)
	}
	if p.Impression != nil {
		set(attrImpression, *p.Impression)
	}
	if p.Rating != nil {
		set(attrRating, string(*p.Rating))
	}
	if p.LabelImageKey != nil {
		set(attrLabelImageKey, *p.LabelImageKey)
	}
	if p.UpdatedAt != "" {
		set(attrUpdatedAt, p.UpdatedAt)
	}
	return update, n > 0
}

// DeleteRecord removes the record. Deleting a missing record is not an error.
func (c *Client) DeleteRecord(ctx context.Context, userID, recordID string) error {
	_, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key:       recordKey(userID, recordID),
	})
	if err != nil {
		return fmt.Errorf("repository: DeleteRecord: %w", err)
	}
	return nil
}

func unmarshalRecords(items []map[string]types.AttributeValue) ([]domain.StoredRecord, error) {
	records := make([]domain.StoredRecord, 0, len(items))
	for _, item := range items {
		var rec domain.StoredRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
