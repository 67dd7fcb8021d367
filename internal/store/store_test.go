package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"threadvote/internal/models"
	"threadvote/internal/store"
	"threadvote/internal/testutil"

	"gorm.io/gorm"
)

type repos struct {
	users    *store.UserRepository
	posts    *store.PostRepository
	comments *store.CommentRepository
	votes    *store.VoteRepository
}

func setup(t *testing.T) (*gorm.DB, repos) {
	conn := testutil.OpenTestDB(t)
	return conn, repos{
		users:    store.NewUserRepository(conn),
		posts:    store.NewPostRepository(conn),
		comments: store.NewCommentRepository(conn),
		votes:    store.NewVoteRepository(conn),
	}
}

func mustUser(t *testing.T, r repos, name string) models.User {
	t.Helper()
	u := models.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	if err := r.users.Create(context.Background(), &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func mustPost(t *testing.T, r repos, userID uint, title string) models.Post {
	t.Helper()
	p := models.Post{UserID: userID, Title: title, Content: "body"}
	if err := r.posts.Create(context.Background(), &p); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func TestUserUniqueness(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()
	mustUser(t, r, "alice")

	dup := models.User{Username: "alice", Email: "new@example.com", PasswordHash: "x"}
	if err := r.users.Create(ctx, &dup); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("err = %v, want ErrDuplicate", err)
	}
	taken, err := r.users.ExistsByUsernameOrEmail(ctx, "other", "alice@example.com")
	if err != nil || !taken {
		t.Errorf("ExistsByUsernameOrEmail = %v, %v", taken, err)
	}
	if _, err := r.users.GetByEmail(ctx, "ALICE@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("email lookup should be exact, err = %v", err)
	}
}

func TestCastTransitions(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()
	alice := mustUser(t, r, "alice")
	bob := mustUser(t, r, "bob")
	p := mustPost(t, r, alice.ID, "T")
	target := models.PostTarget(p.ID)

	steps := []struct {
		userID    uint
		value     int
		wantScore int64
		wantVote  int
	}{
		{bob.ID, 1, 1, 1},
		{bob.ID, 1, 0, 0},
		{bob.ID, -1, -1, -1},
		{bob.ID, 1, 1, 1},
		{alice.ID, 1, 2, 1},
	}
	for i, s := range steps {
		res, err := r.votes.Cast(ctx, s.userID, target, s.value)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if res.VoteScore != s.wantScore || res.UserVote != s.wantVote {
			t.Errorf("step %d: got %+v, want score %d vote %d", i, res, s.wantScore, s.wantVote)
		}
	}

	view, err := r.posts.GetWithScore(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if view.VoteScore != 2 || view.Author != "alice" {
		t.Errorf("unexpected view: %+v", view)
	}
}

func TestCastUnknownTarget(t *testing.T) {
	_, r := setup(t)
	u := mustUser(t, r, "alice")
	if _, err := r.votes.Cast(context.Background(), u.ID, models.PostTarget(4242), 1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestConcurrentCastsSerialize(t *testing.T) {
	conn, r := setup(t)
	ctx := context.Background()
	u := mustUser(t, r, "alice")
	p := mustPost(t, r, u.ID, "T")
	target := models.PostTarget(p.ID)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.votes.Cast(ctx, u.ID, target, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("cast failed: %v", err)
		}
	}

	var count int64
	if err := conn.Model(&models.Vote{}).Where("user_id = ? AND post_id = ?", u.ID, p.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("rows = %d, want 0 after insert then toggle", count)
	}
	view, err := r.posts.GetWithScore(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if view.VoteScore != 0 {
		t.Errorf("score = %d, want 0", view.VoteScore)
	}
}

func TestSingleTargetConstraint(t *testing.T) {
	conn, r := setup(t)
	u := mustUser(t, r, "alice")
	p := mustPost(t, r, u.ID, "T")

	neither := models.Vote{UserID: u.ID, Value: 1}
	if err := conn.Omit("User", "Post", "Comment").Create(&neither).Error; err == nil {
		t.Error("vote without target accepted")
	}
	pid := p.ID
	badValue := models.Vote{UserID: u.ID, PostID: &pid, Value: 0}
	if err := conn.Omit("User", "Post", "Comment").Create(&badValue).Error; err == nil {
		t.Error("zero-valued vote accepted")
	}
}

func TestScoresDoNotMultiply(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()
	alice := mustUser(t, r, "alice")
	bob := mustUser(t, r, "bob")
	p := mustPost(t, r, alice.ID, "T")

	for i := 0; i < 3; i++ {
		if _, err := r.comments.Create(ctx, &models.Comment{PostID: p.ID, UserID: bob.ID, Content: "c"}); err != nil {
			t.Fatal(err)
		}
	}
	r.votes.Cast(ctx, alice.ID, models.PostTarget(p.ID), 1)
	r.votes.Cast(ctx, bob.ID, models.PostTarget(p.ID), 1)

	list, err := r.posts.ListWithScores(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].VoteScore != 2 || list[0].CommentCount != 3 {
		t.Errorf("unexpected aggregates: %+v", list)
	}
}

func TestUserVote(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()
	alice := mustUser(t, r, "alice")
	bob := mustUser(t, r, "bob")
	p := mustPost(t, r, alice.ID, "T")
	other := mustPost(t, r, alice.ID, "U")
	c, _ := r.comments.Create(ctx, &models.Comment{PostID: p.ID, UserID: bob.ID, Content: "c"})

	r.votes.Cast(ctx, alice.ID, models.PostTarget(p.ID), -1)
	r.votes.Cast(ctx, bob.ID, models.PostTarget(p.ID), 1)
	r.votes.Cast(ctx, alice.ID, models.PostTarget(other.ID), 1)
	r.votes.Cast(ctx, alice.ID, models.CommentTarget(c.ID), 1)

	cases := []struct {
		name   string
		userID uint
		target models.VoteTarget
		want   int
	}{
		{"own downvote", alice.ID, models.PostTarget(p.ID), -1},
		{"other user", bob.ID, models.PostTarget(p.ID), 1},
		{"other post", alice.ID, models.PostTarget(other.ID), 1},
		{"comment", alice.ID, models.CommentTarget(c.ID), 1},
		{"no vote", bob.ID, models.PostTarget(other.ID), 0},
		{"unknown post", alice.ID, models.PostTarget(999), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.votes.UserVote(ctx, tc.userID, tc.target)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("UserVote = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCommentVotesByUser(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()
	u := mustUser(t, r, "alice")
	p := mustPost(t, r, u.ID, "T")

	c1, _ := r.comments.Create(ctx, &models.Comment{PostID: p.ID, UserID: u.ID, Content: "one"})
	c2, _ := r.comments.Create(ctx, &models.Comment{PostID: p.ID, UserID: u.ID, Content: "two"})
	r.votes.Cast(ctx, u.ID, models.CommentTarget(c1.ID), -1)

	votes, err := r.votes.CommentVotesByUser(ctx, u.ID, []uint{c1.ID, c2.ID})
	if err != nil {
		t.Fatal(err)
	}
	if votes[c1.ID] != -1 || votes[c2.ID] != 0 || len(votes) != 1 {
		t.Errorf("votes = %v", votes)
	}

	empty, err := r.votes.CommentVotesByUser(ctx, u.ID, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("empty ids = %v, %v", empty, err)
	}

	list, err := r.comments.ListByPost(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != c2.ID || list[1].VoteScore != -1 {
		t.Errorf("unexpected comments: %+v", list)
	}

	if _, err := r.comments.Create(ctx, &models.Comment{PostID: 999, UserID: u.ID, Content: "x"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("comment on missing post: err = %v, want ErrNotFound", err)
	}
}
