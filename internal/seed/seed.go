package seed

import (
	"context"
	"fmt"
	"log/slog"

	"photogram/internal/middleware"
	"photogram/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var onConflictDoNothing = clause.OnConflict{DoNothing: true}

// Options configures the seeder.
type Options struct {
	NumUsers         int
	NumFacebookUsers int
	FacebookAppID    string
	PostsPerUser     int
	CommentsPerPost  int
	// FollowRatio is the chance that any ordered pair of users is a follow edge.
	FollowRatio float64
	ShouldClean bool
	SkipBcrypt  bool
	DryRun      bool
	BatchSize   int
	MaxDays     int
	RandSeed    int64
}

// Summary counts what a run created.
type Summary struct {
	Users     int
	Relations int
	Posts     int
	Comments  int
}

// Seeder fills a database with a coherent fake social graph.
type Seeder struct {
	db   *gorm.DB
	opts Options
	f    *Factory
}

// NewSeeder creates a Seeder. Zero options fall back to small defaults.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 20
	}
	if opts.PostsPerUser <= 0 {
		opts.PostsPerUser = 3
	}
	if opts.CommentsPerPost < 0 {
		opts.CommentsPerPost = 0
	}
	if opts.FollowRatio <= 0 || opts.FollowRatio > 1 {
		opts.FollowRatio = 0.3
	}
	return &Seeder{db: db, opts: opts, f: NewFactory(db, opts)}
}

// Run seeds users, follows, posts and comments in that order.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	log := middleware.Logger
	log.InfoContext(ctx, "seeding started",
		slog.Int("users", s.opts.NumUsers),
		slog.Int("facebook_users", s.opts.NumFacebookUsers),
		slog.Bool("dry_run", s.opts.DryRun),
	)

	if s.opts.ShouldClean && !s.opts.DryRun {
		if err := ClearData(s.db); err != nil {
			log.WarnContext(ctx, "could not clear existing data", slog.String("error", err.Error()))
		}
	}

	sum := &Summary{}
	users, err := s.SeedUsers()
	if err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	sum.Users = len(users)

	edges, err := s.SeedSocialMesh(users)
	if err != nil {
		return nil, fmt.Errorf("seed follows: %w", err)
	}
	sum.Relations = len(edges)

	posts, err := s.SeedPosts(users)
	if err != nil {
		return nil, fmt.Errorf("seed posts: %w", err)
	}
	sum.Posts = len(posts)

	comments, err := s.SeedComments(users, posts)
	if err != nil {
		return nil, fmt.Errorf("seed comments: %w", err)
	}
	sum.Comments = comments

	log.InfoContext(ctx, "seeding completed",
		slog.Int("users", sum.Users),
		slog.Int("relations", sum.Relations),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
	)
	return sum, nil
}

// SeedUsers creates the local accounts followed by the Facebook ones.
func (s *Seeder) SeedUsers() ([]*models.User, error) {
	users := make([]*models.User, 0, s.opts.NumUsers+s.opts.NumFacebookUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		u, err := s.f.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if s.opts.NumFacebookUsers > 0 && s.opts.FacebookAppID == "" {
		return nil, fmt.Errorf("facebook app id required to seed facebook users")
	}
	for i := 0; i < s.opts.NumFacebookUsers; i++ {
		u, err := s.f.CreateFacebookUser(s.opts.FacebookAppID)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// SeedSocialMesh draws a directed follow edge for each ordered pair of
// distinct users with probability FollowRatio. Every user follows at least
// one other user when there is more than one.
func (s *Seeder) SeedSocialMesh(users []*models.User) ([]models.Relation, error) {
	if len(users) < 2 {
		return nil, nil
	}
	var edges []models.Relation
	for i, from := range users {
		followed := false
		for j, to := range users {
			if i == j || s.f.rng.Float64() >= s.opts.FollowRatio {
				continue
			}
			edges = append(edges, models.Relation{FromUserID: from.ID, ToUserID: to.ID})
			followed = true
		}
		if !followed {
			to := users[(i+1)%len(users)]
			edges = append(edges, models.Relation{FromUserID: from.ID, ToUserID: to.ID})
		}
	}
	return edges, s.f.CreateRelations(edges)
}

// SeedPosts gives every user PostsPerUser posts.
func (s *Seeder) SeedPosts(users []*models.User) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, len(users)*s.opts.PostsPerUser)
	for _, u := range users {
		for i := 0; i < s.opts.PostsPerUser; i++ {
			posts = append(posts, s.f.BuildPost(u))
		}
	}
	return posts, s.f.CreatePostsBatch(posts)
}

// SeedComments adds up to CommentsPerPost comments to each post from random users.
func (s *Seeder) SeedComments(users []*models.User, posts []*models.Post) (int, error) {
	if s.opts.CommentsPerPost == 0 || len(users) == 0 {
		return 0, nil
	}
	var comments []*models.Comment
	for _, p := range posts {
		n := s.f.rng.Intn(s.opts.CommentsPerPost + 1)
		for i := 0; i < n; i++ {
			author := users[s.f.rng.Intn(len(users))]
			comments = append(comments, s.f.BuildComment(author, p))
		}
	}
	return len(comments), s.f.CreateCommentsBatch(comments)
}

// ClearData removes every seeded row.
func ClearData(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE comments, posts, user_relations, users RESTART IDENTITY CASCADE`).Error
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Comment{}, &models.Post{}, &models.Relation{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
