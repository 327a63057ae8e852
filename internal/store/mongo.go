package store

import (
	"context"
	"errors"
	"time"

	"github.com/dcode-ide/apiserver/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	usersCollection    = "users"
	projectsCollection = "projects"
)

// EnsureMongoIndexes creates the indexes the Mongo repositories rely on.
// Safe to call on every start.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	_, err := db.Collection(projectsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "date", Value: -1}},
	})
	return err
}

// MongoUserRepository handles persistence for users in MongoDB.
type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(usersCollection)}
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return types.User{}, ErrDuplicate
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (types.User, error) {
	var user types.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// MongoProjectRepository handles persistence for projects in MongoDB.
type MongoProjectRepository struct {
	coll *mongo.Collection
}

func NewMongoProjectRepository(db *mongo.Database) *MongoProjectRepository {
	return &MongoProjectRepository{coll: db.Collection(projectsCollection)}
}

func (r *MongoProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]types.Project, error) {
	cursor, err := r.coll.Find(
		ctx,
		bson.M{"createdBy": ownerID},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}

	projects := make([]types.Project, 0)
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *MongoProjectRepository) Get(ctx context.Context, id, ownerID string) (types.Project, error) {
	return r.findOne(ctx, bson.M{"_id": id, "createdBy": ownerID})
}

func (r *MongoProjectRepository) GetByID(ctx context.Context, id string) (types.Project, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoProjectRepository) Create(ctx context.Context, project types.Project) (types.Project, error) {
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, project); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return types.Project{}, ErrDuplicate
		}
		return types.Project{}, err
	}
	return project, nil
}

func (r *MongoProjectRepository) UpdateCode(ctx context.Context, id, ownerID, code string) error {
	return r.setFields(ctx, id, ownerID, bson.M{"code": code})
}

func (r *MongoProjectRepository) UpdateName(ctx context.Context, id, ownerID, name string) error {
	return r.setFields(ctx, id, ownerID, bson.M{"name": name})
}

func (r *MongoProjectRepository) Delete(ctx context.Context, id, ownerID string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "createdBy": ownerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProjectRepository) setFields(ctx context.Context, id, ownerID string, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	result, err := r.coll.UpdateOne(
		ctx,
		bson.M{"_id": id, "createdBy": ownerID},
		bson.M{"$set": fields},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProjectRepository) findOne(ctx context.Context, filter bson.M) (types.Project, error) {
	var project types.Project
	if err := r.coll.FindOne(ctx, filter).Decode(&project); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Project{}, ErrNotFound
		}
		return types.Project{}, err
	}
	return project, nil
}
