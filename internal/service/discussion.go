package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"blog_admin/internal/domain"
	"blog_admin/internal/listing"
	"blog_admin/internal/remote"
)

type DiscussionConfig struct {
	AdminEmail string
	PageSize   int
}

// DiscussionService loads a post together with its author and comments.
type DiscussionService struct {
	posts     PostStore
	users     UserStore
	comments  CommentStore
	sessions  SessionStore
	publisher Publisher
	logger    *slog.Logger
	config    DiscussionConfig
}

func NewDiscussionService(
	posts PostStore,
	users UserStore,
	comments CommentStore,
	sessions SessionStore,
	publisher Publisher,
	logger *slog.Logger,
	cfg DiscussionConfig,
) *DiscussionService {
	return &DiscussionService{
		posts:     posts,
		users:     users,
		comments:  comments,
		sessions:  sessions,
		publisher: publisher,
		logger:    logger.With("service", "discussion"),
		config:    cfg,
	}
}

// Thread is a post detail view.
type Thread struct {
	Post     domain.Post
	Owner    *domain.User
	Comments *listing.Controller[domain.Comment]

	sessions   listing.SessionProvider
	adminEmail string
}

// Detail fetches the post, then its author and comments concurrently. A
// failed author lookup leaves Owner nil; a failed comment load fails the call.
func (s *DiscussionService) Detail(ctx context.Context, postID domain.ID) (*Thread, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}

	comments := listing.NewController[domain.Comment](s.comments, s.sessions, listing.CommentKind(), listing.Options{
		PageSize:   s.config.PageSize,
		AdminEmail: s.config.AdminEmail,
		Query: remote.Query{
			Where: map[string]string{"postId": post.ID.String()},
			Sort:  "createdAt",
		},
		Publisher: s.publisher,
		Logger:    s.logger,
	})

	thread := &Thread{
		Post:       post,
		Comments:   comments,
		sessions:   s.sessions,
		adminEmail: s.config.AdminEmail,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		owner, err := s.lookupOwner(gctx, post)
		if err != nil {
			s.logger.Warn("lookup post owner", "post_id", post.ID, "error", err)
			return nil
		}
		thread.Owner = owner
		return nil
	})
	g.Go(func() error {
		return comments.Load(gctx)
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}

	return thread, nil
}

// lookupOwner finds the author by id, falling back to email.
func (s *DiscussionService) lookupOwner(ctx context.Context, post domain.Post) (*domain.User, error) {
	var q remote.Query
	switch {
	case post.AuthorID != "":
		q = remote.Eq("id", post.AuthorID.String())
	case post.AuthorEmail != "":
		q = remote.Eq("email", post.AuthorEmail)
	default:
		return nil, nil
	}

	users, err := s.users.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	owner := users[0]
	owner.Password = ""
	return &owner, nil
}

// AddComment posts text as the signed-in user.
func (t *Thread) AddComment(ctx context.Context, text string) (domain.Comment, error) {
	return t.Comments.Create(ctx, domain.Comment{PostID: t.Post.ID, Text: text})
}

func (t *Thread) DeleteComment(ctx context.Context, id domain.ID) error {
	return t.Comments.Remove(ctx, id)
}

// CanDelete reports whether the current user may delete c.
func (t *Thread) CanDelete(c domain.Comment) bool {
	return listing.OwnerOrAdmin(t.sessions.Current(), c.OwnerRef(), t.adminEmail)
}

// Close releases the comment list.
func (t *Thread) Close() {
	t.Comments.Close()
}
