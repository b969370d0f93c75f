package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// DynamoRegistry implements PostRegistry using AWS DynamoDB. Each post is a
// single item keyed by id, so create and update are atomic per record.
type DynamoRegistry struct {
	client    *dynamodb.Client
	tableName string
}

// Compile-time interface check.
var _ PostRegistry = (*DynamoRegistry)(nil)

// NewDynamoRegistry creates a DynamoRegistry for the given table.
// The client should be initialized from the shared AWS config.
func NewDynamoRegistry(client *dynamodb.Client, tableName string) *DynamoRegistry {
	return &DynamoRegistry{
		client:    client,
		tableName: tableName,
	}
}

// postRecord is the DynamoDB shape of a Post. PostedAt is stored as an
// ISO-8601 UTC string rather than a native time so the layout matches the
// documents the public bot reads.
type postRecord struct {
	ID       string     `dynamodbav:"id"`
	Title    string     `dynamodbav:"title"`
	File     fileRecord `dynamodbav:"file"`
	PostedBy int64      `dynamodbav:"posted_by"`
	PostedAt string     `dynamodbav:"posted_at"`
	Views    int64      `dynamodbav:"views"`
}

type fileRecord struct {
	MediaType string         `dynamodbav:"media_type"`
	MediaID   string         `dynamodbav:"media_id"`
	FileInfo  fileInfoRecord `dynamodbav:"file_info"`
}

type fileInfoRecord struct {
	Size     int64  `dynamodbav:"size,omitempty"`
	Duration int    `dynamodbav:"duration,omitempty"`
	ThumbID  string `dynamodbav:"thumb_id,omitempty"`
}

func toRecord(post *Post) postRecord {
	return postRecord{
		ID:    post.ID,
		Title: post.Title,
		File: fileRecord{
			MediaType: string(post.File.MediaType),
			MediaID:   post.File.MediaID,
			FileInfo: fileInfoRecord{
				Size:     post.File.Info.Size,
				Duration: post.File.Info.Duration,
				ThumbID:  post.File.Info.ThumbID,
			},
		},
		PostedBy: post.PostedBy,
		PostedAt: post.PostedAt.UTC().Format(time.RFC3339),
		Views:    post.Views,
	}
}

func fromRecord(rec postRecord) (*Post, error) {
	postedAt, err := time.Parse(time.RFC3339, rec.PostedAt)
	if err != nil {
		return nil, fmt.Errorf("parse posted_at %q: %w", rec.PostedAt, err)
	}
	return &Post{
		ID:    rec.ID,
		Title: rec.Title,
		File: FileDescriptor{
			MediaType: MediaType(rec.File.MediaType),
			MediaID:   rec.File.MediaID,
			Info: FileInfo{
				Size:     rec.File.FileInfo.Size,
				Duration: rec.File.FileInfo.Duration,
				ThumbID:  rec.File.FileInfo.ThumbID,
			},
		},
		PostedBy: rec.PostedBy,
		PostedAt: postedAt,
		Views:    rec.Views,
	}, nil
}

func (r *DynamoRegistry) Create(ctx context.Context, post *Post) error {
	item, err := attributevalue.MarshalMap(toRecord(post))
	if err != nil {
		return fmt.Errorf("marshal post %s: %w", post.ID, err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &r.tableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("create post %s: %w", post.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("PutItem post %s: %w", post.ID, err)
	}

	log.Debug().Str("postId", post.ID).Str("mediaType", string(post.File.MediaType)).Msg("Post persisted to DynamoDB")
	return nil
}

func (r *DynamoRegistry) Get(ctx context.Context, id string) (*Post, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &r.tableName,
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem post %s: %w", id, err)
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}

	var rec postRecord
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal post %s: %w", id, err)
	}
	rec.ID = id
	return fromRecord(rec)
}

func (r *DynamoRegistry) SetTitle(ctx context.Context, id, title string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: &r.tableName,
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    aws.String("SET title = :t"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: title},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("set title for post %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("UpdateItem post %s: %w", id, err)
	}

	log.Debug().Str("postId", id).Msg("Post title updated in DynamoDB")
	return nil
}
