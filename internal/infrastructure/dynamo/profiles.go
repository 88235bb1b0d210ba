package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/commerce-customer-api/internal/domain"
)

// ProfileRepo provides typed DynamoDB operations for the customer profile
// projection table.
type ProfileRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewProfileRepo(client *dynamodb.Client, tableName string) *ProfileRepo {
	return &ProfileRepo{client: client, tableName: tableName}
}

// syncOnReadExpr is the projection upsert expression. federated_links and
// updated_at are unconditional writes; every other attribute is written with
// if_not_exists so an existing projection keeps its stored value.
const syncOnReadExpr = "SET #fl = :fl, #ua = :ts, " +
	"#em = if_not_exists(#em, :em), " +
	"#ev = if_not_exists(#ev, :ev), " +
	"#nm = if_not_exists(#nm, :nm), " +
	"#pn = if_not_exists(#pn, :pn), " +
	"#pv = if_not_exists(#pv, :pv), " +
	"#bd = if_not_exists(#bd, :bd), " +
	"#cs = if_not_exists(#cs, :cs), " +
	"#en = if_not_exists(#en, :en), " +
	"#oc = if_not_exists(#oc, :zero), " +
	"#ca = if_not_exists(#ca, :ts)"

func syncOnReadNames() map[string]string {
	return map[string]string{
		"#fl": "federated_links",
		"#ua": "updated_at",
		"#em": "email",
		"#ev": "email_verified",
		"#nm": "name",
		"#pn": "phone_number",
		"#pv": "phone_number_verified",
		"#bd": "birthday",
		"#cs": "consent",
		"#en": "enabled",
		"#oc": "order_count",
		"#ca": "created_at",
	}
}

// Create inserts a new projection and fails with ProfileAlreadyExists if one
// is already stored for the customer. Used only at account creation, where a
// duplicate indicates a genuine bug or a replayed request.
func (r *ProfileRepo) Create(ctx context.Context, p *domain.ProfileProjection) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(customer_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("customer %s: %w", p.CustomerID, domain.ErrProfileAlreadyExists)
		}
		return err
	}
	return nil
}

// SyncOnRead upserts the projection for the given identity record in a single
// atomic UpdateItem. federated_links and updated_at always reflect the
// identity provider's current state; every other field is written with
// if_not_exists so an existing projection keeps its locally-owned values.
// Doing this as one conditional write (instead of read-then-write) is what
// prevents duplicate inserts when two reads for a new customer race.
func (r *ProfileRepo) SyncOnRead(ctx context.Context, rec *domain.IdentityRecord) (*domain.ProfileProjection, error) {
	now := time.Now().UTC()

	links, err := attributevalue.Marshal(rec.FederatedLinks)
	if err != nil {
		return nil, fmt.Errorf("marshal federated links: %w", err)
	}
	consent, err := attributevalue.Marshal(rec.Consent)
	if err != nil {
		return nil, fmt.Errorf("marshal consent: %w", err)
	}
	birthday, err := attributevalue.Marshal(rec.Birthday)
	if err != nil {
		return nil, fmt.Errorf("marshal birthday: %w", err)
	}
	ts, err := attributevalue.Marshal(now)
	if err != nil {
		return nil, fmt.Errorf("marshal timestamp: %w", err)
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("customer_id", rec.CustomerID),
		UpdateExpression:         aws.String(syncOnReadExpr),
		ExpressionAttributeNames: syncOnReadNames(),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":fl":   links,
			":ts":   ts,
			":em":   &types.AttributeValueMemberS{Value: rec.Email},
			":ev":   &types.AttributeValueMemberBOOL{Value: rec.EmailVerified},
			":nm":   &types.AttributeValueMemberS{Value: rec.Name},
			":pn":   &types.AttributeValueMemberS{Value: rec.PhoneNumber},
			":pv":   &types.AttributeValueMemberBOOL{Value: rec.PhoneNumberVerified},
			":bd":   birthday,
			":cs":   consent,
			":en":   &types.AttributeValueMemberBOOL{Value: rec.Enabled},
			":zero": &types.AttributeValueMemberN{Value: "0"},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, fmt.Errorf("sync profile: %w", err)
	}

	var p domain.ProfileProjection
	if err := attributevalue.UnmarshalMap(out.Attributes, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns the projection for the customer, or (nil, nil) when absent.
func (r *ProfileRepo) Get(ctx context.Context, customerID string) (*domain.ProfileProjection, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("customer_id", customerID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, nil
	}
	var p domain.ProfileProjection
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByEmail returns the projection using that email, or (nil, nil) when no
// projection (enabled or disabled) uses it.
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.ProfileProjection, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("email-index"),
		KeyConditionExpression:    aws.String("email = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var p domain.ProfileProjection
	if err := attributevalue.UnmarshalMap(out.Items[0], &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update applies a partial field update to an existing projection.
func (r *ProfileRepo) Update(ctx context.Context, customerID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("customer_id", customerID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// ScanPage returns a page of enabled profiles.
// cursor is a base64-encoded customer_id used as ExclusiveStartKey.
// Returns the items, a next cursor (empty string when no more pages), and any error.
func (r *ProfileRepo) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.ProfileProjection, string, error) {
	input := &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		FilterExpression:         aws.String("#en = :t"),
		ExpressionAttributeNames: map[string]string{"#en": "enabled"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
		Limit: aws.Int32(limit),
	}
	if cursor != "" {
		customerID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey("customer_id", customerID)
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var profiles []domain.ProfileProjection
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &profiles); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["customer_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return profiles, nextCursor, nil
}
