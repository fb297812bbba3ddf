package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/deppfellow/survival-api/internal/config"
	"github.com/deppfellow/survival-api/internal/model"
	"github.com/deppfellow/survival-api/internal/validation"
	"github.com/shopspring/decimal"
)

// dynamoAPI is the part of *dynamodb.Client the store needs.
type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoDBStore keeps records in a DynamoDB table whose partition key is the
// string attribute PassengerId. Numbers are written as N attributes, which
// DynamoDB stores as exact decimals.
type DynamoDBStore struct {
	client dynamoAPI
	table  string
}

// NewDynamoDBClient builds a client from the default AWS credential chain.
// A configured endpoint (e.g. DynamoDB Local) overrides the regional one.
func NewDynamoDBClient(ctx context.Context, cfg config.DynamoDBConfig) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

func NewDynamoDBStore(client dynamoAPI, table string) *DynamoDBStore {
	return &DynamoDBStore{client: client, table: table}
}

func (s *DynamoDBStore) Put(ctx context.Context, record model.PredictionRecord) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      marshalItem(record),
	})
	if err != nil {
		return fmt.Errorf("failed to put prediction %s: %w", record.PassengerID, err)
	}
	return nil
}

func (s *DynamoDBStore) Get(ctx context.Context, passengerID string) (model.PredictionRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       itemKey(passengerID),
	})
	if err != nil {
		return model.PredictionRecord{}, fmt.Errorf("failed to get prediction %s: %w", passengerID, err)
	}
	if len(out.Item) == 0 {
		return model.PredictionRecord{}, ErrRecordNotFound
	}
	return unmarshalItem(out.Item)
}

// Scan follows LastEvaluatedKey until the whole table has been read.
func (s *DynamoDBStore) Scan(ctx context.Context) ([]model.PredictionRecord, error) {
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})

	records := make([]model.PredictionRecord, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan predictions: %w", err)
		}
		for _, item := range page.Items {
			record, err := unmarshalItem(item)
			if err != nil {
				return nil, err
			}
			records = append(records, record)
		}
	}
	return records, nil
}

func (s *DynamoDBStore) Delete(ctx context.Context, passengerID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       itemKey(passengerID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete prediction %s: %w", passengerID, err)
	}
	return nil
}

func (s *DynamoDBStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	return err
}

func (s *DynamoDBStore) Close() error {
	return nil
}

func itemKey(passengerID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		model.FieldPassengerID: &types.AttributeValueMemberS{Value: passengerID},
	}
}

func numberAttr(n int) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(n)}
}

func marshalItem(record model.PredictionRecord) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		model.FieldPassengerID:         &types.AttributeValueMemberS{Value: record.PassengerID},
		model.FieldSurvivalProbability: numberAttr(record.SurvivalPrediction),
		model.FieldAge:                 &types.AttributeValueMemberN{Value: record.Age.String()},
		model.FieldFare:                &types.AttributeValueMemberN{Value: record.Fare.String()},
		model.FieldPclass:              numberAttr(record.Pclass),
		model.FieldParch:               numberAttr(record.Parch),
		model.FieldSibSp:               numberAttr(record.SibSp),
		model.FieldSexMale:             numberAttr(record.SexMale),
		model.FieldEmbarkedQ:           numberAttr(record.EmbarkedQ),
		model.FieldEmbarkedS:           numberAttr(record.EmbarkedS),
	}
}

func unmarshalItem(item map[string]types.AttributeValue) (model.PredictionRecord, error) {
	var record model.PredictionRecord

	id, ok := item[model.FieldPassengerID].(*types.AttributeValueMemberS)
	if !ok {
		return record, fmt.Errorf("item has no string %s attribute", model.FieldPassengerID)
	}
	record.PassengerID = id.Value

	var err error
	if record.Age, err = decimalAttr(item, model.FieldAge); err != nil {
		return record, err
	}
	if record.Fare, err = decimalAttr(item, model.FieldFare); err != nil {
		return record, err
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{model.FieldSurvivalProbability, &record.SurvivalPrediction},
		{model.FieldPclass, &record.Pclass},
		{model.FieldParch, &record.Parch},
		{model.FieldSibSp, &record.SibSp},
		{model.FieldSexMale, &record.SexMale},
		{model.FieldEmbarkedQ, &record.EmbarkedQ},
		{model.FieldEmbarkedS, &record.EmbarkedS},
	}
	for _, field := range ints {
		d, err := decimalAttr(item, field.name)
		if err != nil {
			return record, err
		}
		value, err := validation.IntFromDecimal(d)
		if err != nil {
			return record, fmt.Errorf("invalid %s %s: %w", field.name, d, err)
		}
		*field.dst = value
	}

	return record, nil
}

func decimalAttr(item map[string]types.AttributeValue, name string) (decimal.Decimal, error) {
	attr, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return decimal.Zero, fmt.Errorf("item has no numeric %s attribute", name)
	}
	d, err := decimal.NewFromString(attr.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, attr.Value, err)
	}
	return d, nil
}
