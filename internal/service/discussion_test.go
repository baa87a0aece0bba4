package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"blog_admin/internal/domain"
	"blog_admin/internal/remote"
	"blog_admin/internal/service/mocks"
)

type DiscussionServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	posts     *mocks.MockPostStore
	users     *mocks.MockUserStore
	comments  *mocks.MockCommentStore
	sessions  *mocks.MockSessionStore
	publisher *mocks.MockPublisher

	service *DiscussionService
	post    domain.Post
	current *domain.Session
}

func (s *DiscussionServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.posts = mocks.NewMockPostStore(s.ctrl)
	s.users = mocks.NewMockUserStore(s.ctrl)
	s.comments = mocks.NewMockCommentStore(s.ctrl)
	s.sessions = mocks.NewMockSessionStore(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.service = NewDiscussionService(s.posts, s.users, s.comments, s.sessions, s.publisher, logger, DiscussionConfig{
		AdminEmail: "admin@site.com",
		PageSize:   2,
	})

	s.current = nil
	s.sessions.EXPECT().Current().DoAndReturn(func() *domain.Session { return s.current }).AnyTimes()

	s.post = domain.Post{ID: "7", Title: "Phở", Content: "...", AuthorID: "u1", AuthorEmail: "lan@example.com"}
}

func (s *DiscussionServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestDiscussionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DiscussionServiceTestSuite))
}

func at(minute int) *time.Time {
	t := time.Date(2024, 5, 1, 10, minute, 0, 0, time.UTC)
	return &t
}

func (s *DiscussionServiceTestSuite) expectDetail(comments []domain.Comment) *Thread {
	ctx := context.Background()

	s.posts.EXPECT().Get(ctx, domain.ID("7")).Return(s.post, nil)
	s.users.EXPECT().List(gomock.Any(), remote.Eq("id", "u1")).Return([]domain.User{
		{ID: "u1", Email: "lan@example.com", FullName: "Lan", Password: "hash"},
	}, nil)
	s.comments.EXPECT().List(gomock.Any(), remote.Query{
		Where: map[string]string{"postId": "7"},
		Sort:  "createdAt",
	}).Return(comments, nil)

	thread, err := s.service.Detail(ctx, "7")
	s.Require().NoError(err)
	return thread
}

func (s *DiscussionServiceTestSuite) TestDetail_LoadsOwnerAndSortedComments() {
	thread := s.expectDetail([]domain.Comment{
		{ID: "c2", PostID: "7", Text: "second", CreatedAt: at(5)},
		{ID: "c1", PostID: "7", Text: "first", CreatedAt: at(1)},
	})

	s.Require().NotNil(thread.Owner)
	s.Equal("Lan", thread.Owner.FullName)
	s.Empty(thread.Owner.Password)

	all := thread.Comments.All()
	s.Require().Len(all, 2)
	s.Equal(domain.ID("c1"), all[0].ID)
	s.Equal(domain.ID("c2"), all[1].ID)
}

func (s *DiscussionServiceTestSuite) TestDetail_OwnerByEmailAndLookupFailureTolerated() {
	ctx := context.Background()
	s.post.AuthorID = ""

	s.posts.EXPECT().Get(ctx, domain.ID("7")).Return(s.post, nil)
	s.users.EXPECT().List(gomock.Any(), remote.Eq("email", "lan@example.com")).Return(nil, domain.ErrNetwork)
	s.comments.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)

	thread, err := s.service.Detail(ctx, "7")

	s.Require().NoError(err)
	s.Nil(thread.Owner)
	s.Empty(thread.Comments.All())
}

func (s *DiscussionServiceTestSuite) TestDetail_PostNotFound() {
	ctx := context.Background()

	s.posts.EXPECT().Get(ctx, domain.ID("404")).Return(domain.Post{}, &domain.RemoteError{Method: "GET", Status: 404})

	thread, err := s.service.Detail(ctx, "404")

	s.Nil(thread)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *DiscussionServiceTestSuite) TestDetail_CommentsFail() {
	ctx := context.Background()

	s.posts.EXPECT().Get(ctx, domain.ID("7")).Return(s.post, nil)
	s.users.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	s.comments.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, domain.ErrNetwork)

	_, err := s.service.Detail(ctx, "7")

	s.ErrorIs(err, domain.ErrNetwork)
}

func (s *DiscussionServiceTestSuite) TestAddComment_AppendsAsCurrentUser() {
	thread := s.expectDetail([]domain.Comment{
		{ID: "c1", PostID: "7", Text: "first", CreatedAt: at(1)},
	})

	s.current = &domain.Session{UserID: "u9", Email: "minh@example.com"}
	s.comments.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, c domain.Comment) (domain.Comment, error) {
			s.Equal(domain.ID("7"), c.PostID)
			s.Equal(domain.ID("u9"), c.UserID)
			s.Equal("minh@example.com", c.UserEmail)
			return c, nil
		},
	)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	created, err := thread.AddComment(context.Background(), "  ngon quá  ")

	s.Require().NoError(err)
	s.Equal("ngon quá", created.Text)

	all := thread.Comments.All()
	s.Require().Len(all, 2)
	s.Equal(created.ID, all[1].ID)
	s.Equal(1, thread.Comments.View().Page)
}

func (s *DiscussionServiceTestSuite) TestAddComment_RequiresSession() {
	thread := s.expectDetail(nil)

	s.current = nil

	_, err := thread.AddComment(context.Background(), "hello")

	s.ErrorIs(err, domain.ErrPermission)
	s.Empty(thread.Comments.All())
}

func (s *DiscussionServiceTestSuite) TestDeleteComment_OwnerOrAdmin() {
	thread := s.expectDetail([]domain.Comment{
		{ID: "c1", PostID: "7", UserID: "u9", UserEmail: "minh@example.com", Text: "mine", CreatedAt: at(1)},
		{ID: "c2", PostID: "7", UserID: "u3", Text: "theirs", CreatedAt: at(2)},
	})

	s.current = &domain.Session{UserID: "u9", Email: "MINH@example.com"}

	all := thread.Comments.All()
	s.True(thread.CanDelete(all[0]))
	s.False(thread.CanDelete(all[1]))

	err := thread.DeleteComment(context.Background(), "c2")
	s.ErrorIs(err, domain.ErrPermission)

	s.comments.EXPECT().Delete(gomock.Any(), domain.ID("c1")).Return(nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	s.NoError(thread.DeleteComment(context.Background(), "c1"))
	s.Len(thread.Comments.All(), 1)
}

func (s *DiscussionServiceTestSuite) TestDeleteComment_AdminMayDeleteAny() {
	thread := s.expectDetail([]domain.Comment{
		{ID: "c2", PostID: "7", UserID: "u3", Text: "theirs", CreatedAt: at(2)},
	})

	s.current = &domain.Session{UserID: "a1", Email: "admin@site.com"}

	s.True(thread.CanDelete(thread.Comments.All()[0]))
}
