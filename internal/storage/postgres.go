package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/easeaico/feelings/internal/feelings"
)

// snapshotModel maps to the feeling_snapshots table.
type snapshotModel struct {
	ID      string `gorm:"type:uuid;primaryKey"`
	Key     string `gorm:"uniqueIndex;not null"`
	Version string
	TakenAt time.Time
	// Signature identifies the set of feeling names; moods are only comparable
	// between rows with the same signature.
	Signature string          `gorm:"index"`
	Document  json.RawMessage `gorm:"type:jsonb"`
	// Mood holds feeling values ordered by name, for similarity search.
	Mood      *pgvector.Vector `gorm:"type:vector"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (snapshotModel) TableName() string {
	return "feeling_snapshots"
}

// PostgresStore keeps one jsonb document per key plus a pgvector mood column.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore opens and pings the database.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// AutoMigrate enables pgvector and creates the snapshot table.
func (s *PostgresStore) AutoMigrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to enable pgvector: %w", err)
	}
	if err := db.AutoMigrate(&snapshotModel{}); err != nil {
		return fmt.Errorf("failed to migrate feeling_snapshots: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, key string, snap *feelings.Snapshot) error {
	record, err := modelFromSnapshot(key, snap)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "taken_at", "signature", "document", "mood", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, key string) (*feelings.Snapshot, error) {
	var record snapshotModel
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return snapshotFromModel(record)
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Where("key = ?", key).Delete(&snapshotModel{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete snapshot: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.WithContext(ctx).Model(&snapshotModel{}).Order("key ASC").Pluck("key", &keys).Error; err != nil {
		return nil, fmt.Errorf("failed to list snapshot keys: %w", err)
	}
	return keys, nil
}

// Similar ranks other graphs with the same feelings by cosine distance to key.
func (s *PostgresStore) Similar(ctx context.Context, key string, limit int) ([]Match, error) {
	var ref snapshotModel
	err := s.db.WithContext(ctx).Select("signature", "mood").Where("key = ?", key).First(&ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reference snapshot: %w", err)
	}
	if ref.Mood == nil {
		return nil, nil
	}

	query := `
		SELECT key, mood <=> ? AS distance
		FROM feeling_snapshots
		WHERE signature = ? AND key <> ? AND mood IS NOT NULL
		ORDER BY distance ASC
		LIMIT ?`

	var matches []Match
	if err := s.db.WithContext(ctx).
		Raw(query, *ref.Mood, ref.Signature, key, limit).
		Scan(&matches).Error; err != nil {
		return nil, fmt.Errorf("failed to search similar snapshots: %w", err)
	}
	return matches, nil
}

// Close closes the underlying pool.
func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func modelFromSnapshot(key string, snap *feelings.Snapshot) (snapshotModel, error) {
	if snap == nil {
		return snapshotModel{}, fmt.Errorf("snapshot cannot be nil")
	}
	doc, err := json.Marshal(documentFromSnapshot(snap))
	if err != nil {
		return snapshotModel{}, fmt.Errorf("failed to encode snapshot document: %w", err)
	}
	signature, values := moodVector(snap.Feelings)
	var mood *pgvector.Vector
	if len(values) > 0 {
		v := pgvector.NewVector(values)
		mood = &v
	}
	return snapshotModel{
		ID:        uuid.NewString(),
		Key:       key,
		Version:   snap.Version,
		TakenAt:   snap.Timestamp.UTC(),
		Signature: signature,
		Document:  doc,
		Mood:      mood,
	}, nil
}

func snapshotFromModel(record snapshotModel) (*feelings.Snapshot, error) {
	snap, err := decodeJSONDocument(record.Document)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", record.Key, err)
	}
	return snap, nil
}

// moodVector returns a signature of the feeling names and their values sorted by
// name.
func moodVector(values []feelings.FeelingValue) (string, []float32) {
	sorted := slices.Clone(values)
	slices.SortFunc(sorted, func(a, b feelings.FeelingValue) int {
		return strings.Compare(a.Name, b.Name)
	})

	names := make([]string, 0, len(sorted))
	vec := make([]float32, 0, len(sorted))
	for _, fv := range sorted {
		names = append(names, fv.Name)
		vec = append(vec, float32(fv.Value))
	}
	sum := sha256.Sum256([]byte(strings.Join(names, "\x00")))
	return hex.EncodeToString(sum[:]), vec
}
