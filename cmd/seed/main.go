package main

import (
	"context"
	"log"
	"os"
	"time"

	"vibenotes-be/internal/dto"
	"vibenotes-be/internal/pkg/apperr"
	"vibenotes-be/internal/pkg/logger"
	"vibenotes-be/internal/repository/unitofwork"
	"vibenotes-be/internal/service"
	"vibenotes-be/pkg/database"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	seedPassword = "password123"
	seedTopic    = "seed.emotion"
)

var seedUsers = []dto.RegisterRequest{
	{Username: "alice", DisplayName: "Alice", Email: "alice@vibenotes.local", Password: seedPassword},
	{Username: "bob", DisplayName: "Bob", Email: "bob@vibenotes.local", Password: seedPassword},
	{Username: "carol", DisplayName: "Carol", Email: "carol@vibenotes.local", Password: seedPassword},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(db)
	nop := logger.NewNopLogger()

	// Nothing consumes the topic: seeded notes keep an empty emotion reading.
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	profiles := service.NewProfileService(uowFactory, time.Minute, nop)
	notifier := service.NewNotificationService(uowFactory, time.Hour, nop)
	authService := service.NewAuthService(uowFactory, "seed", time.Hour, bcrypt.DefaultCost)
	noteService := service.NewNoteService(uowFactory, service.NewPublisherService(pubSub, seedTopic), profiles, notifier, nop)
	responseService := service.NewResponseService(uowFactory, profiles, notifier, nop)

	log.Println("Seeding users...")
	ids := make(map[string]uuid.UUID, len(seedUsers))
	for _, u := range seedUsers {
		id, err := ensureUser(ctx, authService, u)
		if err != nil {
			log.Fatalf("Error seeding user %s: %v", u.Username, err)
		}
		ids[u.Username] = id
	}

	log.Println("Seeding a public note with a thread...")
	note, err := noteService.Create(ctx, ids["alice"], &dto.CreateNoteRequest{
		Title:    "First week at the new job",
		Content:  "Nervous, but the team has been really kind so far.",
		IsPublic: true,
	})
	if err != nil {
		log.Fatalf("Error creating note: %v", err)
	}
	noteID := uuid.MustParse(note.Id)

	added, err := responseService.AddResponse(ctx, ids["bob"], noteID, &dto.AddResponseRequest{Text: "Congrats! It gets easier."})
	if err != nil {
		log.Fatalf("Error adding response: %v", err)
	}
	if _, err := responseService.AddResponse(ctx, ids["carol"], noteID, &dto.AddResponseRequest{Text: "Kind teams are the best."}); err != nil {
		log.Fatalf("Error adding response: %v", err)
	}

	responseID := uuid.MustParse(added.Response.Id)
	if _, err := responseService.PatchResponse(ctx, ids["alice"], noteID, &dto.PatchResponseRequest{
		Action:     dto.ActionAddReply,
		ResponseId: &responseID,
		ReplyText:  "Thank you, Bob!",
	}); err != nil {
		log.Fatalf("Error adding reply: %v", err)
	}
	if _, err := responseService.PatchResponse(ctx, ids["carol"], noteID, &dto.PatchResponseRequest{
		Action:     dto.ActionLikeResponse,
		ResponseId: &responseID,
	}); err != nil {
		log.Fatalf("Error liking response: %v", err)
	}

	log.Printf("Success: seeded note %s (users share the password %q)", note.Id, seedPassword)
}

// ensureUser registers u, or logs in when the username is already taken.
func ensureUser(ctx context.Context, auth service.IAuthService, u dto.RegisterRequest) (uuid.UUID, error) {
	res, err := auth.Register(ctx, &u)
	if apperr.KindOf(err) == apperr.KindConflict {
		res, err = auth.Login(ctx, &dto.LoginRequest{Username: u.Username, Password: u.Password})
	}
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(res.User.Id)
}
