// Package seed provides helpers to create demo data for development
// databases and tests.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"photogram/internal/models"
	"photogram/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the login password of every seeded local account.
const DefaultPassword = "Photogram-Seed-1"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db     *gorm.DB
	opts   Options
	rng    *rand.Rand
	hashed string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a Factory bound to db. db may be nil in DryRun mode.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(seed)), nextID: 1000}
}

func (f *Factory) password() string {
	if f.opts.SkipBcrypt {
		return DefaultPassword
	}
	if f.hashed == "" {
		h, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		f.hashed = string(h)
	}
	return f.hashed
}

// BuildUser returns an unsaved local account with a fake identity. Roughly a
// third of the accounts get a nickname.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	username := strings.ToLower(fmt.Sprintf("%s_%s%d", first, last, gofakeit.Number(100, 999)))
	user := &models.User{
		Username:   username,
		FirstName:  first,
		LastName:   last,
		Email:      username + "@example.com",
		Password:   f.password(),
		UserType:   models.UserTypeLocal,
		ImgProfile: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	if f.rng.Intn(3) == 0 {
		nick := gofakeit.Adjective() + gofakeit.Animal()
		if len(nick) > 24 {
			nick = nick[:24]
		}
		user.Nickname = &nick
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser builds and persists a local account.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	return user, f.persist(user)
}

// CreateFacebookUser persists an account shaped like one provisioned from a
// Facebook login under appID.
func (f *Factory) CreateFacebookUser(appID string) (*models.User, error) {
	return f.CreateUser(func(u *models.User) {
		u.Username = service.FacebookUsername(appID, fmt.Sprintf("%d", gofakeit.Number(10000000, 99999999)))
		u.UserType = models.UserTypeFacebook
		u.Password = "!" + gofakeit.LetterN(40)
		u.Nickname = nil
	})
}

// BuildPost returns an unsaved post by user with a created_at spread over
// the last MaxDays days.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		AuthorID:  user.ID,
		Photo:     fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
		Content:   gofakeit.Sentence(gofakeit.Number(3, 15)),
		CreatedAt: f.pastTime(),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists posts in one statement.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			p.ID = f.synthID()
		}
		return nil
	}
	return f.db.CreateInBatches(&posts, f.batchSize()).Error
}

// BuildComment returns an unsaved comment by user on post, dated after the post.
func (f *Factory) BuildComment(user *models.User, post *models.Post) *models.Comment {
	created := post.CreatedAt.Add(time.Duration(f.rng.Intn(72*60)) * time.Minute)
	if created.After(time.Now()) {
		created = time.Now()
	}
	return &models.Comment{
		Content:   gofakeit.Sentence(gofakeit.Number(2, 12)),
		AuthorID:  user.ID,
		PostID:    post.ID,
		CreatedAt: created,
	}
}

// CreateCommentsBatch persists comments in one statement.
func (f *Factory) CreateCommentsBatch(comments []*models.Comment) error {
	if len(comments) == 0 || f.opts.DryRun {
		return nil
	}
	return f.db.CreateInBatches(&comments, f.batchSize()).Error
}

// CreateRelations persists follow edges, skipping ones that already exist.
func (f *Factory) CreateRelations(edges []models.Relation) error {
	if len(edges) == 0 || f.opts.DryRun {
		return nil
	}
	return f.db.Clauses(onConflictDoNothing).CreateInBatches(&edges, f.batchSize()).Error
}

func (f *Factory) persist(user *models.User) error {
	if f.opts.DryRun {
		user.ID = f.synthID()
		return nil
	}
	return f.db.Create(user).Error
}

func (f *Factory) synthID() uint {
	f.nextID++
	return f.nextID
}

func (f *Factory) batchSize() int {
	if f.opts.BatchSize > 0 {
		return f.opts.BatchSize
	}
	return 200
}

func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().Add(-back)
}
