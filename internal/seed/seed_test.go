package seed

import (
	"context"
	"strings"
	"testing"

	"photogram/internal/models"
	"photogram/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewTestDB(t)

	s := NewSeeder(db, Options{
		NumUsers:         6,
		NumFacebookUsers: 2,
		FacebookAppID:    "4242",
		PostsPerUser:     2,
		CommentsPerPost:  3,
		FollowRatio:      0.5,
		SkipBcrypt:       true,
		RandSeed:         7,
	})
	sum, err := s.Run(context.Background())
	require.NoError(t, err)

	var users, posts, relations, comments int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Relation{}).Count(&relations).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)

	assert.EqualValues(t, 8, users)
	assert.EqualValues(t, sum.Posts, posts)
	assert.EqualValues(t, 16, posts)
	assert.EqualValues(t, sum.Relations, relations)
	assert.EqualValues(t, sum.Comments, comments)

	var fb []models.User
	require.NoError(t, db.Where("user_type = ?", models.UserTypeFacebook).Find(&fb).Error)
	require.Len(t, fb, 2)
	for _, u := range fb {
		assert.True(t, strings.HasPrefix(u.Username, "f_4242_"), u.Username)
	}

	// Nobody follows themselves and everybody follows somebody.
	var self int64
	require.NoError(t, db.Model(&models.Relation{}).Where("from_user_id = to_user_id").Count(&self).Error)
	assert.Zero(t, self)
	var followers int64
	require.NoError(t, db.Model(&models.Relation{}).Distinct("from_user_id").Count(&followers).Error)
	assert.EqualValues(t, 8, followers)
}

func TestSeeder_FacebookUsersNeedAppID(t *testing.T) {
	s := NewSeeder(nil, Options{NumUsers: 1, NumFacebookUsers: 1, DryRun: true, SkipBcrypt: true})
	_, err := s.SeedUsers()
	assert.Error(t, err)
}

func TestFactory_DryRun(t *testing.T) {
	f := NewFactory(nil, Options{DryRun: true, SkipBcrypt: true, MaxDays: 10, RandSeed: 1})

	u, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, models.UserTypeLocal, u.UserType)
	if u.Nickname != nil {
		assert.LessOrEqual(t, len(*u.Nickname), 24)
	}

	p := f.BuildPost(u)
	assert.Equal(t, u.ID, p.AuthorID)
	assert.NotEmpty(t, p.Photo)
	require.NoError(t, f.CreatePostsBatch([]*models.Post{p}))
	assert.NotZero(t, p.ID)

	cm := f.BuildComment(u, p)
	assert.False(t, cm.CreatedAt.Before(p.CreatedAt))
}

func TestClearData(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, err := NewSeeder(db, Options{NumUsers: 3, SkipBcrypt: true, CommentsPerPost: 1}).Run(context.Background())
	require.NoError(t, err)

	require.NoError(t, ClearData(db))
	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n)
}
