package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"photoshare/internal/models"
	"photoshare/internal/observability"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoPostRepository struct {
	coll    *mongo.Collection
	users   *mongo.Collection
	logger  *observability.RepoLogger
	metrics *observability.StoreMetrics
}

// NewMongoPostRepository creates a post repository on the posts collection.
// Comments and the liker set are embedded in each post document.
func NewMongoPostRepository(db *mongo.Database) PostRepository {
	return &mongoPostRepository{
		coll:    db.Collection(PostsCollection),
		users:   db.Collection(UsersCollection),
		logger:  observability.NewRepoLogger("mongo", PostsCollection),
		metrics: observability.NewStoreMetrics("mongo"),
	}
}

func lookupAuthorStage() bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: UsersCollection},
		{Key: "localField", Value: "author"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "authorInfo"},
	}}}
}

func lookupCommentAuthorsStage() bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: UsersCollection},
		{Key: "localField", Value: "comments.user"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "commentAuthors"},
	}}}
}

func searchPattern(search string) bson.Regex {
	return bson.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
}

// feedPipeline builds the aggregation behind List. A search matches the
// caption or any of searchAuthors, the users whose username matched, so posts
// are filtered before the author join and only the page is joined.
func feedPipeline(f PostFilter, author *bson.ObjectID, searchAuthors []bson.ObjectID) mongo.Pipeline {
	pipeline := mongo.Pipeline{}
	if author != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"author": *author}}})
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		authors := bson.A{}
		for _, id := range searchAuthors {
			authors = append(authors, id)
		}
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"caption": searchPattern(search)},
			bson.M{"author": bson.M{"$in": authors}},
		}}}})
	}

	page := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$skip", Value: int64(f.Offset)}},
		{{Key: "$limit", Value: int64(f.Limit)}},
		lookupAuthorStage(),
		lookupCommentAuthorsStage(),
	}

	return append(pipeline, bson.D{{Key: "$facet", Value: bson.D{
		{Key: "total", Value: bson.A{bson.D{{Key: "$count", Value: "n"}}}},
		{Key: "posts", Value: page},
	}}})
}

// matchingAuthors returns the ids of users whose username contains search.
func (r *mongoPostRepository) matchingAuthors(ctx context.Context, search string) ([]bson.ObjectID, error) {
	cursor, err := r.users.Find(ctx, bson.M{"username": searchPattern(search)},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("search authors: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID bson.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode authors: %w", err)
	}
	ids := make([]bson.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// toggleLikeUpdate removes uid from likes when present and appends it
// otherwise, evaluated server-side against the current document.
func toggleLikeUpdate(uid bson.ObjectID) mongo.Pipeline {
	likes := bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"likes": bson.M{"$cond": bson.A{
			bson.M{"$in": bson.A{uid, likes}},
			bson.M{"$filter": bson.M{"input": likes, "cond": bson.M{"$ne": bson.A{"$$this", uid}}}},
			bson.M{"$concatArrays": bson.A{likes, bson.A{uid}}},
		}}}}},
	}
}

func (r *mongoPostRepository) Create(ctx context.Context, post *models.Post) (err error) {
	author, err := parseObjectID(post.AuthorID)
	if err != nil {
		return err
	}
	ctx, span := observability.StartStoreSpan(ctx, "mongo", "create", PostsCollection)
	defer func() { observability.EndSpan(span, err) }()
	defer r.metrics.TrackQuery("create", PostsCollection)()

	now := time.Now().UTC()
	doc := postDocument{
		ID:        bson.NewObjectID(),
		Author:    author,
		Image:     post.Image,
		Caption:   post.Caption,
		Likes:     []bson.ObjectID{},
		Comments:  []commentDocument{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err = r.coll.InsertOne(ctx, doc); err != nil {
		r.logger.LogError(ctx, err, "create")
		return fmt.Errorf("create post: %w", err)
	}

	post.ID = doc.ID.Hex()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.Likes = []string{}
	post.Comments = []*models.Comment{}
	r.logger.LogCreate(ctx, map[string]any{"post_id": post.ID, "author_id": post.AuthorID})
	return nil
}

func (r *mongoPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	defer r.metrics.TrackQuery("get", PostsCollection)()

	cursor, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": oid}}},
		lookupAuthorStage(),
		lookupCommentAuthorsStage(),
	})
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("get post: %w", err)
		}
		return nil, fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	var doc postDocument
	if err := cursor.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoPostRepository) UpdateCaption(ctx context.Context, id, caption string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	defer r.metrics.TrackQuery("update", PostsCollection)()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"caption":   caption,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		r.logger.LogError(ctx, err, "update")
		return fmt.Errorf("update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	r.logger.LogUpdate(ctx, map[string]any{"post_id": id})
	return nil
}

func (r *mongoPostRepository) Delete(ctx context.Context, id string) (err error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	ctx, span := observability.StartStoreSpan(ctx, "mongo", "delete", PostsCollection)
	defer func() { observability.EndSpan(span, err) }()
	defer r.metrics.TrackQuery("delete", PostsCollection)()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.LogError(ctx, err, "delete")
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	r.logger.LogDelete(ctx, map[string]any{"post_id": id})
	return nil
}

func (r *mongoPostRepository) List(ctx context.Context, f PostFilter) (posts []*models.Post, total int64, err error) {
	var author *bson.ObjectID
	if f.AuthorID != "" {
		oid, err := parseObjectID(f.AuthorID)
		if err != nil {
			return nil, 0, err
		}
		author = &oid
	}
	ctx, span := observability.StartStoreSpan(ctx, "mongo", "list", PostsCollection)
	defer func() { observability.EndSpan(span, err) }()
	defer r.metrics.TrackQuery("list", PostsCollection)()

	var searchAuthors []bson.ObjectID
	if search := strings.TrimSpace(f.Search); search != "" {
		if searchAuthors, err = r.matchingAuthors(ctx, search); err != nil {
			return nil, 0, err
		}
	}

	cursor, err := r.coll.Aggregate(ctx, feedPipeline(f, author, searchAuthors))
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer cursor.Close(ctx)

	var facets []struct {
		Total []struct {
			N int64 `bson:"n"`
		} `bson:"total"`
		Posts []postDocument `bson:"posts"`
	}
	if err = cursor.All(ctx, &facets); err != nil {
		return nil, 0, fmt.Errorf("decode posts: %w", err)
	}

	posts = []*models.Post{}
	if len(facets) == 0 {
		return posts, 0, nil
	}
	if len(facets[0].Total) > 0 {
		total = facets[0].Total[0].N
	}
	for i := range facets[0].Posts {
		posts = append(posts, facets[0].Posts[i].toModel())
	}
	return posts, total, nil
}

func (r *mongoPostRepository) ToggleLike(ctx context.Context, postID, userID string) (liked bool, likeCount int, err error) {
	pid, err := parseObjectID(postID)
	if err != nil {
		return false, 0, err
	}
	uid, err := parseObjectID(userID)
	if err != nil {
		return false, 0, err
	}
	ctx, span := observability.StartStoreSpan(ctx, "mongo", "toggle_like", PostsCollection)
	defer func() { observability.EndSpan(span, err) }()
	defer r.metrics.TrackQuery("toggle_like", PostsCollection)()

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})

	var doc struct {
		Likes []bson.ObjectID `bson:"likes"`
	}
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": pid}, toggleLikeUpdate(uid), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, 0, fmt.Errorf("post %s: %w", postID, models.ErrNotFound)
		}
		r.logger.LogError(ctx, err, "toggle_like")
		return false, 0, fmt.Errorf("toggle like: %w", err)
	}

	for _, id := range doc.Likes {
		if id == uid {
			liked = true
			break
		}
	}
	return liked, len(doc.Likes), nil
}

func (r *mongoPostRepository) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	pid, err := parseObjectID(postID)
	if err != nil {
		return err
	}
	author, err := parseObjectID(comment.AuthorID)
	if err != nil {
		return err
	}
	defer r.metrics.TrackQuery("add_comment", PostsCollection)()

	now := time.Now().UTC()
	doc := commentDocument{
		ID:        bson.NewObjectID(),
		User:      author,
		Content:   comment.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": pid}, bson.M{
		"$push": bson.M{"comments": doc},
		"$set":  bson.M{"updatedAt": now},
	})
	if err != nil {
		r.logger.LogError(ctx, err, "add_comment")
		return fmt.Errorf("add comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post %s: %w", postID, models.ErrNotFound)
	}

	comment.ID = doc.ID.Hex()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	r.logger.LogCreate(ctx, map[string]any{"post_id": postID, "comment_id": comment.ID})
	return nil
}

func (r *mongoPostRepository) RemoveComment(ctx context.Context, postID, commentID string) error {
	pid, err := parseObjectID(postID)
	if err != nil {
		return err
	}
	cid, err := parseObjectID(commentID)
	if err != nil {
		return err
	}
	defer r.metrics.TrackQuery("remove_comment", PostsCollection)()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": pid, "comments._id": cid},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": cid}}},
	)
	if err != nil {
		r.logger.LogError(ctx, err, "remove_comment")
		return fmt.Errorf("remove comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("comment %s: %w", commentID, models.ErrNotFound)
	}
	r.logger.LogDelete(ctx, map[string]any{"post_id": postID, "comment_id": commentID})
	return nil
}

// EnsureIndexes creates the indexes the queries above rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}

	_, err = db.Collection(PostsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "author", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("post indexes: %w", err)
	}
	return nil
}
