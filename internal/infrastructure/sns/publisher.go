package sns

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/commerce-customer-api/internal/domain"
)

// EventPublisher notifies downstream systems of customer lifecycle events.
// Publishing is fire-and-forget: callers log failures but never propagate
// them, so a broken topic cannot fail a registration.
type EventPublisher interface {
	PublishCustomerRegistered(ctx context.Context, p *domain.ProfileProjection) error
}

type publisher struct {
	client   *sns.Client
	topicARN string
}

func NewPublisher(client *sns.Client, topicARN string) EventPublisher {
	return &publisher{client: client, topicARN: topicARN}
}

type customerRegisteredEvent struct {
	Event      string    `json:"event"`
	CustomerID string    `json:"customer_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

func (p *publisher) PublishCustomerRegistered(ctx context.Context, prof *domain.ProfileProjection) error {
	msg, err := json.Marshal(customerRegisteredEvent{
		Event:      "customer.registered",
		CustomerID: prof.CustomerID,
		Email:      prof.Email,
		Name:       prof.Name,
		CreatedAt:  prof.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal customer event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(msg)),
	})
	return err
}
