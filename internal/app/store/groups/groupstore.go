// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"github.com/rollcallhq/rollcall/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateGroupName = errors.New("a group with this name already exists in the tenant")
	ErrNotFound           = errors.New("group not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

// NewGroupID mints the opaque id used by the structured editor flow.
func NewGroupID() string {
	return "grp_" + uuid.NewString()
}

func (s *Store) GetByID(ctx context.Context, tenantID, id string) (models.Group, error) {
	var g models.Group
	err := s.c.FindOne(ctx, bson.M{"_id": id, "tenant_id": tenantID}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return models.Group{}, ErrNotFound
	}
	if err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// FindByName looks a group up by its folded name, the identity used by
// the free-text upsert flow.
func (s *Store) FindByName(ctx context.Context, tenantID, name string) (models.Group, error) {
	var g models.Group
	err := s.c.FindOne(ctx, bson.M{"tenant_id": tenantID, "name_ci": text.Fold(strings.TrimSpace(name))}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return models.Group{}, ErrNotFound
	}
	if err != nil {
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) ListByTenant(ctx context.Context, tenantID string) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{"tenant_id": tenantID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	if g.ID == "" {
		g.ID = NewGroupID()
	}
	g.Name = strings.TrimSpace(g.Name)
	g.NameCI = text.Fold(g.Name)
	if g.MemberIDs == nil {
		g.MemberIDs = []string{}
	}
	if g.AdminIDs == nil {
		g.AdminIDs = []string{}
	}
	g.Version = 1
	g.CreatedAt = now
	g.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateGroupName
		}
		return models.Group{}, err
	}
	return g, nil
}

// Update replaces name, member set and admin set, bumping the version.
func (s *Store) Update(ctx context.Context, tenantID, id string, name string, memberIDs, adminIDs []string) error {
	name = strings.TrimSpace(name)
	set := bson.M{
		"updated_at": time.Now().UTC(),
		"member_ids": memberIDs,
		"admin_ids":  adminIDs,
	}
	if name != "" {
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "tenant_id": tenantID},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateGroupName
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a group. Returns the number of documents deleted.
func (s *Store) Delete(ctx context.Context, tenantID, id string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "tenant_id": tenantID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
