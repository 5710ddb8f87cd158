package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrTemplateNotFound = errors.New("template not found")

// DynamoAPI is the subset of the DynamoDB client the template store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// TemplateRepository stores design templates.
type TemplateRepository interface {
	FindAll(ctx context.Context, activeOnly bool) ([]models.Template, error)
	FindByID(ctx context.Context, id string) (*models.Template, error)
	Put(ctx context.Context, t *models.Template) error
	Delete(ctx context.Context, id string) error
}

// DynamoTemplateRepository keeps templates in a table keyed by template_id.
type DynamoTemplateRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoTemplateRepository(client DynamoAPI, table string) *DynamoTemplateRepository {
	return &DynamoTemplateRepository{client: client, table: table}
}

func (d *DynamoTemplateRepository) key(id string) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(map[string]string{"template_id": id})
}

func (d *DynamoTemplateRepository) FindByID(ctx context.Context, id string) (*models.Template, error) {
	key, err := d.key(id)
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: &d.table, Key: key})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrTemplateNotFound
	}
	var t models.Template
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &t, nil
}

// FindAll scans the table, newest first.
func (d *DynamoTemplateRepository) FindAll(ctx context.Context, activeOnly bool) ([]models.Template, error) {
	input := &dynamodb.ScanInput{TableName: &d.table}
	if activeOnly {
		filter := "is_active = :active"
		vals, err := attributevalue.MarshalMap(map[string]bool{":active": true})
		if err != nil {
			return nil, fmt.Errorf("marshal filter: %w", err)
		}
		input.FilterExpression = &filter
		input.ExpressionAttributeValues = vals
	}

	results := []models.Template{}
	paginator := dynamodb.NewScanPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan page failed: %w", err)
		}
		var batch []models.Template
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
		results = append(results, batch...)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

func (d *DynamoTemplateRepository) Put(ctx context.Context, t *models.Template) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}
	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &d.table, Item: item}); err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

func (d *DynamoTemplateRepository) Delete(ctx context.Context, id string) error {
	key, err := d.key(id)
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	out, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    &d.table,
		Key:          key,
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return fmt.Errorf("dynamodb DeleteItem failed: %w", err)
	}
	if len(out.Attributes) == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
