package mongostore

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/teamarena/quotakit/pkg/quota"
	"github.com/teamarena/quotakit/pkg/usage"
)

// Collection names.
const (
	CurrentCollection = "resource_usage_current"
	HistoryCollection = "resource_usage_history"
	PlansCollection   = "subscription_plans"
)

type currentDoc struct {
	OrganizationID string    `bson:"organization_id"`
	ResourceType   string    `bson:"resource_type"`
	CurrentUsage   int64     `bson:"current_usage"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

type sampleDoc struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	OrganizationID string        `bson:"organization_id"`
	ResourceType   string        `bson:"resource_type"`
	UsageValue     int64         `bson:"usage_value"`
	RecordedAt     time.Time     `bson:"recorded_at"`
}

type planDoc struct {
	OrganizationID string    `bson:"_id"`
	PlanTier       string    `bson:"plan_tier"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

// Store keeps usage in MongoDB. Timestamps are stored with millisecond precision.
// Standalone servers have no multi-document transactions, so Store is a plain
// usage.Store and the tracker writes current usage before the sample.
type Store struct {
	current *mongo.Collection
	history *mongo.Collection
	plans   *mongo.Collection
	now     func() time.Time
}

var (
	_ usage.Store      = (*Store)(nil)
	_ usage.PlanStore  = (*Store)(nil)
	_ usage.PlanWriter = (*Store)(nil)
)

// New uses the usage collections of db.
func New(db *mongo.Database) *Store {
	return &Store{
		current: db.Collection(CurrentCollection),
		history: db.Collection(HistoryCollection),
		plans:   db.Collection(PlansCollection),
		now:     time.Now,
	}
}

// EnsureIndexes creates the unique current-usage key and the history lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.current.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "resource_type", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	_, err := s.history.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "organization_id", Value: 1},
			{Key: "resource_type", Value: 1},
			{Key: "recorded_at", Value: -1},
		},
	})
	return err
}

func (s *Store) UpsertCurrentUsage(ctx context.Context, organizationID string, rt quota.ResourceType, value int64) error {
	filter := bson.D{{Key: "organization_id", Value: organizationID}, {Key: "resource_type", Value: rt.String()}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "current_usage", Value: value},
		{Key: "updated_at", Value: s.now().UTC()},
	}}}
	_, err := s.current.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	return err
}

func (s *Store) AppendUsageSample(ctx context.Context, sample quota.UsageSample) error {
	_, err := s.history.InsertOne(ctx, sampleDoc{
		OrganizationID: sample.OrganizationID,
		ResourceType:   sample.ResourceType.String(),
		UsageValue:     sample.UsageValue,
		RecordedAt:     sample.RecordedAt.UTC(),
	})
	return err
}

func (s *Store) QueryCurrentUsage(ctx context.Context, organizationID string, filter ...quota.ResourceType) ([]quota.CurrentUsage, error) {
	query := bson.D{{Key: "organization_id", Value: organizationID}}
	if len(filter) > 0 {
		names := make([]string, 0, len(filter))
		for _, rt := range filter {
			names = append(names, rt.String())
		}
		query = append(query, bson.E{Key: "resource_type", Value: bson.D{{Key: "$in", Value: names}}})
	}

	cursor, err := s.current.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	var docs []currentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]quota.CurrentUsage, 0, len(docs))
	for _, d := range docs {
		rt := quota.ParseResourceType(d.ResourceType)
		if !rt.IsKnown() {
			continue
		}
		out = append(out, quota.CurrentUsage{ResourceType: rt, CurrentUsage: d.CurrentUsage})
	}
	slices.SortFunc(out, func(a, b quota.CurrentUsage) int { return cmp.Compare(a.ResourceType, b.ResourceType) })
	return out, nil
}

func (s *Store) QueryUsageHistory(ctx context.Context, organizationID string, rt quota.ResourceType, q quota.HistoryQuery) ([]quota.HistoryPoint, error) {
	q = q.Normalize()

	query := bson.D{
		{Key: "organization_id", Value: organizationID},
		{Key: "resource_type", Value: rt.String()},
	}
	var bounds bson.D
	if !q.From.IsZero() {
		bounds = append(bounds, bson.E{Key: "$gte", Value: q.From.UTC()})
	}
	if !q.To.IsZero() {
		bounds = append(bounds, bson.E{Key: "$lte", Value: q.To.UTC()})
	}
	if len(bounds) > 0 {
		query = append(query, bson.E{Key: "recorded_at", Value: bounds})
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "recorded_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(q.Limit))
	cursor, err := s.history.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []sampleDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]quota.HistoryPoint, 0, len(docs))
	for _, d := range docs {
		out = append(out, quota.HistoryPoint{Timestamp: d.RecordedAt.UTC(), UsageValue: d.UsageValue})
	}
	return out, nil
}

// SubscriptionPlan implements usage.PlanStore.
func (s *Store) SubscriptionPlan(ctx context.Context, organizationID string) (quota.PlanTier, error) {
	var doc planDoc
	err := s.plans.FindOne(ctx, bson.D{{Key: "_id", Value: organizationID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", usage.ErrPlanNotFound
	}
	if err != nil {
		return "", err
	}
	return quota.PlanTier(doc.PlanTier), nil
}

// SetPlan assigns a subscription plan to an organization.
func (s *Store) SetPlan(ctx context.Context, organizationID string, tier quota.PlanTier) error {
	if organizationID == "" {
		return usage.ErrMissingOrganization
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "plan_tier", Value: string(tier)},
		{Key: "updated_at", Value: s.now().UTC()},
	}}}
	_, err := s.plans.UpdateOne(ctx, bson.D{{Key: "_id", Value: organizationID}}, update, options.UpdateOne().SetUpsert(true))
	return err
}
