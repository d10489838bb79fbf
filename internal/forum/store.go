// Package forum reads and writes discussion topics and their posts.
package forum

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"elevate-workers/internal/common/database"
	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/models"
)

// forum_topics_with_post_count is a view over forum_topics that adds the
// number of posts per topic.
const listTopics = `
	SELECT t.id, t.title, t.slug, COALESCE(t.category, ''), t.user_id,
		COALESCE(u.raw_user_meta_data->>'full_name', ''), t.post_count,
		t.created_at, t.last_activity_at
	FROM forum_topics_with_post_count t
	LEFT JOIN auth.users u ON u.id = t.user_id
	WHERE ($1 = '' OR t.category = $1)
	ORDER BY t.last_activity_at DESC
	LIMIT $2`

const topicBySlug = `
	SELECT t.id, t.title, t.slug, COALESCE(t.category, ''), t.user_id,
		COALESCE(u.raw_user_meta_data->>'full_name', ''), t.post_count,
		t.created_at, t.last_activity_at
	FROM forum_topics_with_post_count t
	LEFT JOIN auth.users u ON u.id = t.user_id
	WHERE t.slug = $1`

const insertTopic = `
	INSERT INTO forum_topics (user_id, title, slug, category, last_activity_at)
	VALUES ($1, $2, $3, NULLIF($4, ''), $5)
	RETURNING id, created_at`

const postsByTopic = `
	SELECT p.id, p.topic_id, p.user_id, COALESCE(u.raw_user_meta_data->>'full_name', ''),
		p.content, p.created_at, p.updated_at
	FROM forum_posts p
	LEFT JOIN auth.users u ON u.id = p.user_id
	WHERE p.topic_id = $1
	ORDER BY p.created_at ASC`

const insertPost = `
	INSERT INTO forum_posts (user_id, topic_id, content, updated_at)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at, updated_at`

const touchTopic = `UPDATE forum_topics SET last_activity_at = $2 WHERE id = $1`

// Only the author may edit or delete a post.
const updatePost = `
	UPDATE forum_posts SET content = $3, updated_at = $4
	WHERE id = $1 AND user_id = $2
	RETURNING topic_id, created_at, updated_at`

const deletePost = `DELETE FROM forum_posts WHERE id = $1 AND user_id = $2`

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListTopics returns up to limit topics, most recently active first. An
// empty category lists every category.
func (s *Store) ListTopics(ctx context.Context, category string, limit int) ([]models.Topic, error) {
	rows, err := s.db.QueryContext(ctx, listTopics, category, limit)
	if err != nil {
		return nil, errors.NewForumQueryFailedError(fmt.Errorf("list topics: %w", err))
	}
	defer rows.Close()

	topics := []models.Topic{}
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, errors.NewForumQueryFailedError(err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewForumQueryFailedError(fmt.Errorf("iterate topics: %w", err))
	}
	return topics, nil
}

// CreateTopic stores a topic under the slug of its title. A slug that is
// already taken fails with TOPIC_SLUG_CONFLICT.
func (s *Store) CreateTopic(ctx context.Context, userID, title, category string) (*models.Topic, error) {
	now := time.Now().UTC()
	topic := &models.Topic{
		Title:          title,
		Slug:           models.Slugify(title),
		Category:       category,
		UserID:         userID,
		LastActivityAt: now,
	}
	if topic.Slug == "" {
		return nil, errors.NewValidationError("title must contain letters or digits")
	}

	err := s.db.QueryRowContext(ctx, insertTopic, userID, title, topic.Slug, category, now).
		Scan(&topic.ID, &topic.CreatedAt)
	if database.IsUniqueViolation(err) {
		return nil, errors.NewTopicSlugConflictError(topic.Slug)
	}
	if err != nil {
		return nil, errors.NewForumQueryFailedError(fmt.Errorf("insert topic: %w", err))
	}
	return topic, nil
}

// TopicWithPosts loads a topic by slug together with its posts, oldest first.
func (s *Store) TopicWithPosts(ctx context.Context, slug string) (*models.Topic, []models.Post, error) {
	topic, err := scanTopic(s.db.QueryRowContext(ctx, topicBySlug, slug))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil, errors.NewTopicNotFoundError(slug)
	}
	if err != nil {
		return nil, nil, errors.NewForumQueryFailedError(err)
	}

	rows, err := s.db.QueryContext(ctx, postsByTopic, topic.ID)
	if err != nil {
		return nil, nil, errors.NewForumQueryFailedError(fmt.Errorf("list posts: %w", err))
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.TopicID, &p.UserID, &p.AuthorName, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, nil, errors.NewForumQueryFailedError(fmt.Errorf("scan post: %w", err))
		}
		p.AuthorName = models.AuthorOrUnknown(p.AuthorName)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errors.NewForumQueryFailedError(fmt.Errorf("iterate posts: %w", err))
	}
	return &topic, posts, nil
}

// CreatePost adds a post and bumps the topic's last activity in the same
// transaction. A missing topic fails with TOPIC_NOT_FOUND.
func (s *Store) CreatePost(ctx context.Context, userID, topicID, content string) (*models.Post, error) {
	now := time.Now().UTC()
	post := &models.Post{TopicID: topicID, UserID: userID, Content: content}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, insertPost, userID, topicID, content, now).
			Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
		if database.IsPGCode(err, database.PGForeignKeyViolation) {
			return errors.NewTopicNotFoundError(topicID)
		}
		if err != nil {
			return errors.NewForumQueryFailedError(fmt.Errorf("insert post: %w", err))
		}
		if _, err := tx.ExecContext(ctx, touchTopic, topicID, now); err != nil {
			return errors.NewForumQueryFailedError(fmt.Errorf("touch topic: %w", err))
		}
		return nil
	})
	if err != nil {
		var stdErr *errors.StandardError
		if stderrors.As(err, &stdErr) {
			return nil, stdErr
		}
		return nil, errors.NewForumQueryFailedError(err)
	}
	return post, nil
}

// UpdatePost replaces the content of a post owned by userID.
func (s *Store) UpdatePost(ctx context.Context, userID, postID, content string) (*models.Post, error) {
	post := &models.Post{ID: postID, UserID: userID, Content: content}
	err := s.db.QueryRowContext(ctx, updatePost, postID, userID, content, time.Now().UTC()).
		Scan(&post.TopicID, &post.CreatedAt, &post.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewPostNotFoundError(postID, userID)
	}
	if err != nil {
		return nil, errors.NewForumQueryFailedError(fmt.Errorf("update post: %w", err))
	}
	return post, nil
}

// DeletePost removes a post owned by userID.
func (s *Store) DeletePost(ctx context.Context, userID, postID string) error {
	res, err := s.db.ExecContext(ctx, deletePost, postID, userID)
	if err != nil {
		return errors.NewForumQueryFailedError(fmt.Errorf("delete post: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewForumQueryFailedError(err)
	}
	if n == 0 {
		return errors.NewPostNotFoundError(postID, userID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTopic(row rowScanner) (models.Topic, error) {
	var t models.Topic
	err := row.Scan(&t.ID, &t.Title, &t.Slug, &t.Category, &t.UserID, &t.AuthorName,
		&t.PostCount, &t.CreatedAt, &t.LastActivityAt)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("scan topic: %w", err)
	}
	t.AuthorName = models.AuthorOrUnknown(t.AuthorName)
	return t, nil
}
