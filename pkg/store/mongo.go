package store

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tfcanvas/tfcanvas/pkg/errors"
	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

// Collection names.
const (
	projectsCollection  = "projects"
	snapshotsCollection = "snapshots"
)

// MongoStore is a MongoDB-backed store for the API server.
type MongoStore struct {
	client    *mongo.Client
	projects  *mongo.Collection
	snapshots *mongo.Collection
}

// snapshotDoc wraps a snapshot with its lookup keys.
type snapshotDoc struct {
	ProjectID string                   `bson:"project_id"`
	Branch    string                   `bson:"branch_label"`
	Snapshot  *snapshot.ParsedSnapshot `bson:"snapshot"`
	UpdatedAt time.Time                `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}

	db := client.Database(database)
	return &MongoStore{
		client:    client,
		projects:  db.Collection(projectsCollection),
		snapshots: db.Collection(snapshotsCollection),
	}, nil
}

func (s *MongoStore) CreateProject(ctx context.Context, p *Project) error {
	if _, err := s.projects.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.New(errors.ErrCodeInvalidProject, "project %s already exists", p.ID)
		}
		return errors.Wrap(errors.ErrCodeStorage, err, "insert project")
	}
	return nil
}

func (s *MongoStore) GetProject(ctx context.Context, id string) (*Project, error) {
	var p Project
	err := s.projects.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeProjectNotFound, "project %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "find project")
	}
	return &p, nil
}

func (s *MongoStore) ListProjects(ctx context.Context) ([]*Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.projects.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list projects")
	}
	defer cur.Close(ctx)

	var out []*Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode projects")
	}
	return out, nil
}

func (s *MongoStore) DeleteProject(ctx context.Context, id string) error {
	res, err := s.projects.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete project")
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeProjectNotFound, "project %s not found", id)
	}
	if _, err := s.snapshots.DeleteMany(ctx, bson.M{"project_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete project snapshots")
	}
	return nil
}

func (s *MongoStore) PutSnapshot(ctx context.Context, projectID string, snap *snapshot.ParsedSnapshot) error {
	if snap == nil || snap.BranchLabel == "" {
		return errors.New(errors.ErrCodeInvalidSnapshot, "snapshot must carry a branch label")
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return err
	}

	doc := snapshotDoc{
		ProjectID: projectID,
		Branch:    snap.BranchLabel,
		Snapshot:  snap,
		UpdatedAt: time.Now().UTC(),
	}
	filter := bson.M{"project_id": projectID, "branch_label": snap.BranchLabel}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.snapshots.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "store snapshot")
	}
	return nil
}

func (s *MongoStore) GetSnapshot(ctx context.Context, projectID, branch string) (*snapshot.ParsedSnapshot, error) {
	var doc snapshotDoc
	err := s.snapshots.FindOne(ctx, bson.M{"project_id": projectID, "branch_label": branch}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		if _, perr := s.GetProject(ctx, projectID); perr != nil {
			return nil, perr
		}
		return nil, errors.New(errors.ErrCodeSnapshotNotFound, "no snapshot for branch %q", branch)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "find snapshot")
	}
	return doc.Snapshot, nil
}

func (s *MongoStore) ListBranches(ctx context.Context, projectID string) ([]string, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	values, err := s.snapshots.Distinct(ctx, "branch_label", bson.M{"project_id": projectID})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list branches")
	}

	branches := make([]string, 0, len(values))
	for _, v := range values {
		if branch, ok := v.(string); ok {
			branches = append(branches, branch)
		}
	}
	sort.Strings(branches)
	return branches, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
