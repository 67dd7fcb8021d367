package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"threadvote/internal/models"
	"threadvote/internal/store"
)

// MemStore is an in-memory stand-in for the gorm repositories. It returns the same
// store errors and applies votes with the same transition rules.
type MemStore struct {
	mu       sync.Mutex
	nextID   uint
	clock    time.Time
	users    map[uint]models.User
	posts    map[uint]models.Post
	comments map[uint]models.Comment
	votes    map[voteKey]int
}

type voteKey struct {
	userID uint
	target models.VoteTarget
}

func NewMemStore() *MemStore {
	return &MemStore{
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:    make(map[uint]models.User),
		posts:    make(map[uint]models.Post),
		comments: make(map[uint]models.Comment),
		votes:    make(map[voteKey]int),
	}
}

// Users, Posts, Comments and Votes expose the store through each repository interface.
func (m *MemStore) Users() *MemUsers       { return &MemUsers{m} }
func (m *MemStore) Posts() *MemPosts       { return &MemPosts{m} }
func (m *MemStore) Comments() *MemComments { return &MemComments{m} }
func (m *MemStore) Votes() *MemVotes       { return &MemVotes{m} }

// next hands out ids and strictly increasing timestamps. Callers hold mu.
func (m *MemStore) next() (uint, time.Time) {
	m.nextID++
	m.clock = m.clock.Add(time.Second)
	return m.nextID, m.clock
}

func (m *MemStore) score(target models.VoteTarget) int64 {
	var sum int64
	for k, v := range m.votes {
		if k.target == target {
			sum += int64(v)
		}
	}
	return sum
}

type MemUsers struct{ m *MemStore }

func (r *MemUsers) Create(_ context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	user.ID, user.CreatedAt = r.m.next()
	user.UpdatedAt = user.CreatedAt
	r.m.users[user.ID] = *user
	return nil
}

func (r *MemUsers) GetByID(_ context.Context, id uint) (models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *MemUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (r *MemUsers) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type MemPosts struct{ m *MemStore }

func (r *MemPosts) Create(_ context.Context, post *models.Post) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[post.UserID]; !ok {
		return store.ErrNotFound
	}
	post.ID, post.CreatedAt = r.m.next()
	r.m.posts[post.ID] = *post
	return nil
}

func (r *MemPosts) view(p models.Post) models.PostView {
	var comments int64
	for _, c := range r.m.comments {
		if c.PostID == p.ID {
			comments++
		}
	}
	return models.PostView{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		UserID:       p.UserID,
		Author:       r.m.users[p.UserID].Username,
		CreatedAt:    p.CreatedAt,
		CommentCount: comments,
		VoteScore:    r.m.score(models.PostTarget(p.ID)),
	}
}

func (r *MemPosts) ListWithScores(_ context.Context) ([]models.PostView, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	views := make([]models.PostView, 0, len(r.m.posts))
	for _, p := range r.m.posts {
		views = append(views, r.view(p))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID > views[j].ID })
	return views, nil
}

func (r *MemPosts) GetWithScore(_ context.Context, id uint) (models.PostView, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.posts[id]
	if !ok {
		return models.PostView{}, store.ErrNotFound
	}
	return r.view(p), nil
}

func (r *MemPosts) Exists(_ context.Context, id uint) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	_, ok := r.m.posts[id]
	return ok, nil
}

type MemComments struct{ m *MemStore }

func (r *MemComments) Create(_ context.Context, comment *models.Comment) (models.CommentView, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.posts[comment.PostID]; !ok {
		return models.CommentView{}, store.ErrNotFound
	}
	if _, ok := r.m.users[comment.UserID]; !ok {
		return models.CommentView{}, store.ErrNotFound
	}
	comment.ID, comment.CreatedAt = r.m.next()
	r.m.comments[comment.ID] = *comment
	return models.CommentView{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Content:   comment.Content,
		UserID:    comment.UserID,
		Author:    r.m.users[comment.UserID].Username,
		CreatedAt: comment.CreatedAt,
	}, nil
}

func (r *MemComments) ListByPost(_ context.Context, postID uint) ([]models.CommentView, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	views := make([]models.CommentView, 0)
	for _, c := range r.m.comments {
		if c.PostID != postID {
			continue
		}
		views = append(views, models.CommentView{
			ID:        c.ID,
			PostID:    c.PostID,
			Content:   c.Content,
			UserID:    c.UserID,
			Author:    r.m.users[c.UserID].Username,
			CreatedAt: c.CreatedAt,
			VoteScore: r.m.score(models.CommentTarget(c.ID)),
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID > views[j].ID })
	return views, nil
}

type MemVotes struct{ m *MemStore }

func (r *MemVotes) Cast(_ context.Context, userID uint, target models.VoteTarget, value int) (models.VoteResult, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	switch target.Kind {
	case models.TargetPost:
		if _, ok := r.m.posts[target.ID]; !ok {
			return models.VoteResult{}, store.ErrNotFound
		}
	case models.TargetComment:
		if _, ok := r.m.comments[target.ID]; !ok {
			return models.VoteResult{}, store.ErrNotFound
		}
	}

	key := voteKey{userID: userID, target: target}
	var existing *models.Vote
	if v, ok := r.m.votes[key]; ok {
		existing = &models.Vote{Value: v}
	}

	action, userVote := models.ResolveVote(existing, value)
	switch action {
	case models.VoteInsert, models.VoteUpdate:
		r.m.votes[key] = value
	case models.VoteDelete:
		delete(r.m.votes, key)
	}
	return models.VoteResult{VoteScore: r.m.score(target), UserVote: userVote}, nil
}

func (r *MemVotes) UserVote(_ context.Context, userID uint, target models.VoteTarget) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.votes[voteKey{userID: userID, target: target}], nil
}

func (r *MemVotes) PostVotesByUser(_ context.Context, userID uint) (map[uint]int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make(map[uint]int)
	for k, v := range r.m.votes {
		if k.userID == userID && k.target.Kind == models.TargetPost {
			out[k.target.ID] = v
		}
	}
	return out, nil
}

func (r *MemVotes) CommentVotesByUser(_ context.Context, userID uint, commentIDs []uint) (map[uint]int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make(map[uint]int)
	for _, id := range commentIDs {
		if v, ok := r.m.votes[voteKey{userID: userID, target: models.CommentTarget(id)}]; ok {
			out[id] = v
		}
	}
	return out, nil
}

// VoteRows returns how many vote rows userID holds on target.
func (r *MemVotes) VoteRows(userID uint, target models.VoteTarget) int {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.votes[voteKey{userID: userID, target: target}]; ok {
		return 1
	}
	return 0
}
