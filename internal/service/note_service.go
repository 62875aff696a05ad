package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"vibenotes-be/internal/constant"
	"vibenotes-be/internal/dto"
	"vibenotes-be/internal/entity"
	"vibenotes-be/internal/mapper"
	"vibenotes-be/internal/pkg/apperr"
	"vibenotes-be/internal/pkg/logger"
	"vibenotes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type INoteService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	// Show hides private notes from everyone but their owner; viewerId is nil for anonymous readers.
	Show(ctx context.Context, viewerId *uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	ToggleLike(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteLikeResponse, error)
}

type NoteOption func(*noteService)

func WithNoteClock(now func() time.Time) NoteOption {
	return func(s *noteService) { s.now = now }
}

type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	profiles         IProfileService
	notifier         Notifier
	dtoMapper        *mapper.NoteDtoMapper
	now              func() time.Time
	logger           logger.ILogger
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	profiles IProfileService,
	notifier Notifier,
	log logger.ILogger,
	opts ...NoteOption,
) INoteService {
	s := &noteService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		profiles:         profiles,
		notifier:         notifier,
		dtoMapper:        mapper.NewNoteDtoMapper(),
		now:              func() time.Time { return time.Now().UTC() },
		logger:           log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (c *noteService) serialize(ctx context.Context, note *entity.Note) *dto.NoteResponse {
	return c.dtoMapper.ToNoteResponse(note, c.profiles.Resolve(ctx, note.AuthorIds()))
}

// queueEmotionAnalysis is best effort: a note without an emotion reading is still a note.
func (c *noteService) queueEmotionAnalysis(ctx context.Context, noteId uuid.UUID) {
	if c.publisherService == nil {
		return
	}
	msgJson, err := json.Marshal(dto.AnalyzeNoteEmotionMessage{NoteId: noteId})
	if err == nil {
		err = c.publisherService.Publish(ctx, msgJson)
	}
	if err != nil {
		c.logger.Warn("NoteService", "Failed to queue emotion analysis", map[string]interface{}{"error": err, "note_id": noteId})
	}
}

func (c *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	actor, err := loadActor(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.Validation("title must not be empty")
	}

	note := entity.Note{
		Id:        uuid.New(),
		Title:     title,
		Content:   req.Content,
		UserId:    actor.Id,
		IsPublic:  req.IsPublic,
		Reactions: entity.Reactions{LikedBy: []uuid.UUID{}},
		Responses: []entity.Response{},
		Version:   1,
		CreatedAt: c.now(),
	}
	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, apperr.Internal("failed to create note", err)
	}

	c.queueEmotionAnalysis(ctx, note.Id)
	return c.serialize(ctx, &note), nil
}

func (c *noteService) Show(ctx context.Context, viewerId *uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := loadNote(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	if !note.CanView(viewerId) {
		// Existence of other people's private notes is not revealed.
		return nil, apperr.NotFound("note not found")
	}
	return c.serialize(ctx, note), nil
}

func (c *noteService) Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	actor, err := loadActor(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	note, err := loadNote(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	if !note.CanView(&actor.Id) {
		return nil, apperr.NotFound("note not found")
	}

	if err := note.Edit(actor, req.Title, req.Content, c.now()); err != nil {
		return nil, err
	}
	if err := saveNote(ctx, uow, note); err != nil {
		return nil, err
	}

	c.queueEmotionAnalysis(ctx, note.Id)
	return c.serialize(ctx, note), nil
}

func (c *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) (err error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	actor, err := loadActor(ctx, uow, userId)
	if err != nil {
		return err
	}
	note, err := loadNote(ctx, uow, id)
	if err != nil {
		return err
	}
	if !note.CanView(&actor.Id) {
		return apperr.NotFound("note not found")
	}
	if err := note.CheckDeletable(actor, c.now()); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return apperr.Internal("failed to begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = uow.Rollback()
		}
	}()

	// The response tree lives inside the note, so deleting the note removes it.
	if err := uow.NoteRepository().Delete(ctx, note.Id); err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return err
		}
		return apperr.Internal("failed to delete note", err)
	}
	if err := uow.NotificationRepository().DeleteByNoteID(ctx, note.Id); err != nil {
		return apperr.Internal("failed to delete note notifications", err)
	}
	if err := uow.Commit(); err != nil {
		return apperr.Internal("failed to commit note deletion", err)
	}
	return nil
}

func (c *noteService) ToggleLike(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteLikeResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	actor, err := loadActor(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	note, err := loadNote(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	if !note.CanView(&actor.Id) {
		return nil, apperr.NotFound("note not found")
	}

	liked, err := note.ToggleLike(actor)
	if err != nil {
		return nil, err
	}
	if err := saveNote(ctx, uow, note); err != nil {
		return nil, err
	}

	if liked && c.notifier != nil && !note.IsOwner(actor.Id) {
		err := c.notifier.CreateNotification(ctx, dto.CreateNotificationRequest{
			ActorId:       actor.Id,
			RecipientId:   note.UserId,
			Type:          constant.NotificationNoteLiked,
			NoteId:        note.Id,
			ResponseIndex: -1,
			TargetUrl:     fmt.Sprintf("/notes/%s", note.Id),
			Message:       fmt.Sprintf("%s liked your note \"%s\"", actor.DisplayName, note.Title),
			Dedupe:        true,
		})
		if err != nil {
			c.logger.Warn("NoteService", "Notification dispatch failed", map[string]interface{}{"error": err, "note_id": note.Id})
		}
	}

	return &dto.NoteLikeResponse{
		LikeResult: *c.dtoMapper.ToLikeResult(liked, note.Reactions),
		Note:       c.serialize(ctx, note),
	}, nil
}
