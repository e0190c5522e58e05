// Command seed fills the database with fake users, follows, posts and comments.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"photogram/internal/config"
	"photogram/internal/database"
	"photogram/internal/middleware"
	"photogram/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of local users to create")
	numFacebook := flag.Int("facebook-users", 5, "Number of Facebook-provisioned users to create")
	postsPerUser := flag.Int("posts", 4, "Posts per user")
	commentsPerPost := flag.Int("comments", 5, "Maximum comments per post")
	followRatio := flag.Float64("follow-ratio", 0.2, "Probability of each follow edge")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Build data without writing it")
	fast := flag.Bool("fast", false, "Store plain passwords instead of bcrypt hashes")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	middleware.Logger = middleware.NewLogger(cfg.Env, os.Getenv("LOG_LEVEL"))

	db, err := database.Connect(cfg)
	if err != nil {
		middleware.Logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.FacebookAppID == "" && *numFacebook > 0 {
		middleware.Logger.Warn("FACEBOOK_APP_ID unset, skipping facebook users")
		*numFacebook = 0
	}

	s := seed.NewSeeder(db, seed.Options{
		NumUsers:         *numUsers,
		NumFacebookUsers: *numFacebook,
		FacebookAppID:    cfg.FacebookAppID,
		PostsPerUser:     *postsPerUser,
		CommentsPerPost:  *commentsPerPost,
		FollowRatio:      *followRatio,
		ShouldClean:      *shouldClean,
		SkipBcrypt:       *fast,
		DryRun:           *dryRun,
	})

	if _, err := s.Run(context.Background()); err != nil {
		middleware.Logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	middleware.Logger.Info("seeded users share one password", slog.String("password", seed.DefaultPassword))
}
