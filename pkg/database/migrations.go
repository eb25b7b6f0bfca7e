package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"referralhub/pkg/logger"
)

type Migration struct {
	Version     int
	Description string
	Up          func(context.Context, *mongo.Database) error
	Down        func(context.Context, *mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
	logger     *logger.Logger
}

func NewMigrator(db *mongo.Database, log *logger.Logger) *Migrator {
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
		logger:     log,
	}
}

func (m *Migrator) Up(ctx context.Context) error {
	if err := m.createMigrationsCollection(ctx); err != nil {
		return err
	}

	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version <= currentVersion {
			continue
		}

		m.logger.WithField("version", migration.Version).Infof("Running migration: %s", migration.Description)

		if err := migration.Up(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if err := m.updateVersion(ctx, migration.Version); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) Down(ctx context.Context, targetVersion int) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version > currentVersion || migration.Version <= targetVersion {
			continue
		}

		m.logger.WithField("version", migration.Version).Infof("Reverting migration: %s", migration.Description)

		if err := migration.Down(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d rollback failed: %w", migration.Version, err)
		}

		previousVersion := targetVersion
		if i > 0 {
			previousVersion = m.migrations[i-1].Version
		}

		if err := m.updateVersion(ctx, previousVersion); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) createMigrationsCollection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	collections, err := m.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: CollectionMigrations}})
	if err != nil {
		return err
	}
	if len(collections) > 0 {
		return nil
	}

	return m.db.CreateCollection(ctx, CollectionMigrations)
}

func (m *Migrator) getCurrentVersion(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection(CollectionMigrations).FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(ctx context.Context, version int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := m.db.Collection(CollectionMigrations).ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now().UTC()}},
		options.Replace().SetUpsert(true),
	)

	return err
}

func dropIndexes(collection string) func(context.Context, *mongo.Database) error {
	return func(ctx context.Context, db *mongo.Database) error {
		_, err := db.Collection(collection).Indexes().DropAll(ctx)
		return err
	}
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create campaigns and participants indexes",
			Up:          createCampaignIndexes,
			Down: func(ctx context.Context, db *mongo.Database) error {
				if err := dropIndexes(CollectionCampaigns)(ctx, db); err != nil {
					return err
				}
				return dropIndexes(CollectionParticipants)(ctx, db)
			},
		},
		{
			Version:     2,
			Description: "Create referral_links indexes with unique code",
			Up:          createReferralLinkIndexes,
			Down:        dropIndexes(CollectionReferralLinks),
		},
		{
			Version:     3,
			Description: "Create referral_events indexes",
			Up:          createEventIndexes,
			Down:        dropIndexes(CollectionEvents),
		},
		{
			Version:     4,
			Description: "Create conversions indexes with customer dedup key",
			Up:          createConversionIndexes,
			Down:        dropIndexes(CollectionConversions),
		},
		{
			Version:     5,
			Description: "Create rewards indexes with one reward per conversion",
			Up:          createRewardIndexes,
			Down:        dropIndexes(CollectionRewards),
		},
		{
			Version:     6,
			Description: "Create fraud_signals and exports indexes",
			Up:          createFraudSignalIndexes,
			Down: func(ctx context.Context, db *mongo.Database) error {
				if err := dropIndexes(CollectionFraudSignals)(ctx, db); err != nil {
					return err
				}
				return dropIndexes(CollectionExports)(ctx, db)
			},
		},
	}
}

func createCampaignIndexes(ctx context.Context, db *mongo.Database) error {
	campaigns := []mongo.IndexModel{
		{Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := db.Collection(CollectionCampaigns).Indexes().CreateMany(ctx, campaigns); err != nil {
		return err
	}

	participants := []mongo.IndexModel{
		{Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "campaign_id", Value: 1}}},
		{Keys: bson.D{{Key: "campaign_id", Value: 1}, {Key: "email", Value: 1}}},
	}
	_, err := db.Collection(CollectionParticipants).Indexes().CreateMany(ctx, participants)
	return err
}

func createReferralLinkIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("code_unique"),
		},
		{Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "campaign_id", Value: 1}}},
		{Keys: bson.D{{Key: "participant_id", Value: 1}}},
	}

	_, err := db.Collection(CollectionReferralLinks).Indexes().CreateMany(ctx, indexes)
	return err
}

func createEventIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "referral_link_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "event_type", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "ip_address", Value: 1}}},
	}

	_, err := db.Collection(CollectionEvents).Indexes().CreateMany(ctx, indexes)
	return err
}

// Conversions without a customer email are never deduplicated, so the unique
// key only applies where the email is a non-empty string.
func createConversionIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "campaign_id", Value: 1},
				{Key: "customer_email", Value: 1},
				{Key: "conversion_type", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("customer_conversion_unique").
				SetPartialFilterExpression(bson.D{
					{Key: "customer_email", Value: bson.D{{Key: "$gt", Value: ""}}},
				}),
		},
		{Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "referral_link_id", Value: 1}}},
	}

	_, err := db.Collection(CollectionConversions).Indexes().CreateMany(ctx, indexes)
	return err
}

func createRewardIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "conversion_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("conversion_unique"),
		},
		{Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "participant_id", Value: 1}}},
	}

	_, err := db.Collection(CollectionRewards).Indexes().CreateMany(ctx, indexes)
	return err
}

func createFraudSignalIndexes(ctx context.Context, db *mongo.Database) error {
	signals := []mongo.IndexModel{
		{Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "referral_link_id", Value: 1}, {Key: "rule", Value: 1}}},
	}
	if _, err := db.Collection(CollectionFraudSignals).Indexes().CreateMany(ctx, signals); err != nil {
		return err
	}

	exports := []mongo.IndexModel{
		{Keys: bson.D{{Key: "org_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, err := db.Collection(CollectionExports).Indexes().CreateMany(ctx, exports)
	return err
}
