package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskmanager/task-api/internal/core/domain"
)

const collectionTasks = "tasks"

// taskSortKeys maps sortBy fields to document keys.
var taskSortKeys = map[string]string{
	domain.TaskSortCreatedAt:   "createdAt",
	domain.TaskSortUpdatedAt:   "updatedAt",
	domain.TaskSortDescription: "description",
	domain.TaskSortStatus:      "status",
}

type TaskRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks), now: time.Now}
}

type mongoTask struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Description string             `bson:"description"`
	Status      bool               `bson:"status"`
	Owner       primitive.ObjectID `bson:"owner"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (m *mongoTask) toDomain() *domain.Task {
	return &domain.Task{
		ID:          m.ID.Hex(),
		Description: m.Description,
		Status:      m.Status,
		Owner:       m.Owner.Hex(),
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

// ownerScope is the base filter of every task query: it restricts the match to
// documents owned by ownerID. Malformed IDs never match anything.
func ownerScope(ownerID string) (bson.M, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	return bson.M{"owner": owner}, nil
}

// taskScope narrows ownerScope to a single task.
func taskScope(ownerID, taskID string) (bson.M, error) {
	filter, err := ownerScope(ownerID)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	filter["_id"] = id
	return filter, nil
}

// listFilter adds the optional completion filter to ownerScope.
func listFilter(ownerID string, q domain.TaskQuery) (bson.M, error) {
	filter, err := ownerScope(ownerID)
	if err != nil {
		return nil, err
	}
	if q.Completed != nil {
		filter["status"] = *q.Completed
	}
	return filter, nil
}

// listOptions builds sort and pagination options. _id is always the last sort
// key so that pages are stable between requests.
func listOptions(q domain.TaskQuery) *options.FindOptions {
	dir := 1
	if q.SortDesc {
		dir = -1
	}

	sort := bson.D{}
	if key, ok := taskSortKeys[q.SortField]; ok {
		sort = append(sort, bson.E{Key: key, Value: dir})
	}
	sort = append(sort, bson.E{Key: "_id", Value: dir})

	opts := options.Find().SetSort(sort)
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}
	return opts
}

// Create inserts a new task document.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	owner, err := primitive.ObjectIDFromHex(task.Owner)
	if err != nil {
		return nil, fmt.Errorf("insert task: invalid owner %q", task.Owner)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := r.now().UTC().Truncate(time.Millisecond)
	doc := mongoTask{
		ID:          primitive.NewObjectID(),
		Description: task.Description,
		Status:      task.Status,
		Owner:       owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns the owner's tasks matching q.
func (r *TaskRepository) List(ctx context.Context, ownerID string, q domain.TaskQuery) ([]*domain.Task, error) {
	filter, err := listFilter(ownerID, q)
	if err != nil {
		return []*domain.Task{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, listOptions(q))
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer cur.Close(ctx)

	tasks := make([]*domain.Task, 0)
	for cur.Next(ctx) {
		var mt mongoTask
		if err := cur.Decode(&mt); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		tasks = append(tasks, mt.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindOne(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	filter, err := taskScope(ownerID, taskID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mt mongoTask
	if err := r.col.FindOne(ctx, filter).Decode(&mt); err != nil {
		return nil, taskError("find task", err)
	}
	return mt.toDomain(), nil
}

// Update sets the changed fields on an owned task and returns the result.
func (r *TaskRepository) Update(ctx context.Context, ownerID, taskID string, changes domain.TaskChanges) (*domain.Task, error) {
	filter, err := taskScope(ownerID, taskID)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": r.now().UTC().Truncate(time.Millisecond)}
	if changes.Description != nil {
		set["description"] = *changes.Description
	}
	if changes.Status != nil {
		set["status"] = *changes.Status
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mt mongoTask
	if err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&mt); err != nil {
		return nil, taskError("update task", err)
	}
	return mt.toDomain(), nil
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	filter, err := taskScope(ownerID, taskID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mt mongoTask
	if err := r.col.FindOneAndDelete(ctx, filter).Decode(&mt); err != nil {
		return nil, taskError("delete task", err)
	}
	return mt.toDomain(), nil
}

// DeleteByOwner removes all tasks of ownerID.
func (r *TaskRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	filter, err := ownerScope(ownerID)
	if err != nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete tasks: %w", err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the owner index used by every task query.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	return err
}

func taskError(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrTaskNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
