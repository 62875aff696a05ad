package service

import (
	"context"
	"fmt"
	"time"

	"vibenotes-be/internal/constant"
	"vibenotes-be/internal/dto"
	"vibenotes-be/internal/entity"
	"vibenotes-be/internal/mapper"
	"vibenotes-be/internal/pkg/apperr"
	"vibenotes-be/internal/pkg/logger"
	"vibenotes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("vibenotes/service")

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, string(apperr.KindOf(err)))
}

type IResponseService interface {
	AddResponse(ctx context.Context, userId, noteId uuid.UUID, req *dto.AddResponseRequest) (*dto.AddResponseResult, error)
	PatchResponse(ctx context.Context, userId, noteId uuid.UUID, req *dto.PatchResponseRequest) (*dto.PatchResponseResult, error)
}

type ResponseOption func(*responseService)

// WithClock replaces time.Now, mainly so tests can cross the edit window.
func WithClock(now func() time.Time) ResponseOption {
	return func(s *responseService) { s.now = now }
}

type responseService struct {
	uowFactory unitofwork.RepositoryFactory
	profiles   IProfileService
	notifier   Notifier
	dtoMapper  *mapper.NoteDtoMapper
	now        func() time.Time
	logger     logger.ILogger
}

func NewResponseService(
	uowFactory unitofwork.RepositoryFactory,
	profiles IProfileService,
	notifier Notifier,
	log logger.ILogger,
	opts ...ResponseOption,
) IResponseService {
	s := &responseService{
		uowFactory: uowFactory,
		profiles:   profiles,
		notifier:   notifier,
		dtoMapper:  mapper.NewNoteDtoMapper(),
		now:        func() time.Time { return time.Now().UTC() },
		logger:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *responseService) AddResponse(ctx context.Context, userId, noteId uuid.UUID, req *dto.AddResponseRequest) (res *dto.AddResponseResult, err error) {
	ctx, span := tracer.Start(ctx, "ResponseService.AddResponse")
	span.SetAttributes(attribute.String("note.id", noteId.String()))
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	actor, err := loadActor(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	note, err := loadNote(ctx, uow, noteId)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(note, req.Version); err != nil {
		return nil, err
	}

	index, err := note.AddResponse(actor, req.Text, s.now())
	if err != nil {
		return nil, err
	}
	if err := saveNote(ctx, uow, note); err != nil {
		return nil, err
	}

	added := note.Responses[index]
	if note.IsPublic && !note.IsOwner(actor.Id) {
		s.notify(ctx, dto.CreateNotificationRequest{
			ActorId:       actor.Id,
			RecipientId:   note.UserId,
			Type:          constant.NotificationResponseAdded,
			NoteId:        note.Id,
			ResponseIndex: index,
			TargetUrl:     targetUrl(note.Id, added.Id, uuid.Nil),
			Message:       fmt.Sprintf("%s responded to your note \"%s\"", actor.DisplayName, note.Title),
		})
	}

	profiles := s.profiles.Resolve(ctx, note.AuthorIds())
	item := s.dtoMapper.ToResponseItem(added, profiles)
	return &dto.AddResponseResult{
		Note:          s.dtoMapper.ToNoteResponse(note, profiles),
		ResponseIndex: index,
		Response:      &item,
	}, nil
}

func (s *responseService) PatchResponse(ctx context.Context, userId, noteId uuid.UUID, req *dto.PatchResponseRequest) (res *dto.PatchResponseResult, err error) {
	ctx, span := tracer.Start(ctx, "ResponseService.PatchResponse")
	span.SetAttributes(
		attribute.String("note.id", noteId.String()),
		attribute.String("response.action", req.Action),
	)
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	actor, err := loadActor(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	note, err := loadNote(ctx, uow, noteId)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(note, req.Version); err != nil {
		return nil, err
	}

	switch req.Action {
	case dto.ActionAddReply, dto.ActionLikeResponse, dto.ActionLikeReply:
		if !note.IsPublic {
			return nil, apperr.Forbidden("replies and likes are only allowed on public notes")
		}
	case dto.ActionDeleteResponse, dto.ActionDeleteReply:
	default:
		return nil, apperr.Validation(fmt.Sprintf("unknown action %q", req.Action))
	}

	ri, err := resolveResponse(note, req)
	if err != nil {
		return nil, err
	}

	result := &dto.PatchResponseResult{Action: req.Action, ResponseIndex: ri}
	var pending *dto.CreateNotificationRequest
	var touchedResponse *entity.Response
	var touchedReply *entity.Reply
	now := s.now()

	switch req.Action {
	case dto.ActionLikeResponse:
		liked, err := note.ToggleResponseLike(actor, ri)
		if err != nil {
			return nil, err
		}
		resp := note.Responses[ri]
		touchedResponse = &resp
		result.LikeResult = s.dtoMapper.ToLikeResult(liked, resp.Reactions)
		if liked && resp.AuthorId != actor.Id {
			pending = &dto.CreateNotificationRequest{
				ActorId:       actor.Id,
				RecipientId:   resp.AuthorId,
				Type:          constant.NotificationResponseLiked,
				NoteId:        note.Id,
				ResponseIndex: ri,
				TargetUrl:     targetUrl(note.Id, resp.Id, uuid.Nil),
				Message:       fmt.Sprintf("%s liked your response", actor.DisplayName),
				Dedupe:        true,
			}
		}

	case dto.ActionAddReply:
		rj, err := note.AddReply(actor, ri, req.ReplyText, now)
		if err != nil {
			return nil, err
		}
		resp := note.Responses[ri]
		reply := resp.Replies[rj]
		touchedReply = &reply
		result.ReplyIndex = &rj
		if resp.AuthorId != actor.Id {
			pending = &dto.CreateNotificationRequest{
				ActorId:       actor.Id,
				RecipientId:   resp.AuthorId,
				Type:          constant.NotificationReplyAdded,
				NoteId:        note.Id,
				ResponseIndex: ri,
				ReplyIndex:    &rj,
				TargetUrl:     targetUrl(note.Id, resp.Id, reply.Id),
				Message:       fmt.Sprintf("%s replied to your response", actor.DisplayName),
			}
		}

	case dto.ActionLikeReply:
		rj, err := resolveReply(note, ri, req)
		if err != nil {
			return nil, err
		}
		liked, err := note.ToggleReplyLike(actor, ri, rj)
		if err != nil {
			return nil, err
		}
		resp := note.Responses[ri]
		reply := resp.Replies[rj]
		touchedReply = &reply
		result.ReplyIndex = &rj
		result.LikeResult = s.dtoMapper.ToLikeResult(liked, reply.Reactions)
		if liked && reply.AuthorId != actor.Id {
			pending = &dto.CreateNotificationRequest{
				ActorId:       actor.Id,
				RecipientId:   reply.AuthorId,
				Type:          constant.NotificationReplyLiked,
				NoteId:        note.Id,
				ResponseIndex: ri,
				ReplyIndex:    &rj,
				TargetUrl:     targetUrl(note.Id, resp.Id, reply.Id),
				Message:       fmt.Sprintf("%s liked your reply", actor.DisplayName),
				Dedupe:        true,
			}
		}

	case dto.ActionDeleteResponse:
		removed, err := note.DeleteResponse(actor, ri, now)
		if err != nil {
			return nil, err
		}
		touchedResponse = &removed

	case dto.ActionDeleteReply:
		rj, err := resolveReply(note, ri, req)
		if err != nil {
			return nil, err
		}
		removed, err := note.DeleteReply(actor, ri, rj, now)
		if err != nil {
			return nil, err
		}
		touchedReply = &removed
		result.ReplyIndex = &rj
	}

	if err := saveNote(ctx, uow, note); err != nil {
		return nil, err
	}
	if pending != nil {
		s.notify(ctx, *pending)
	}

	ids := note.AuthorIds()
	if touchedResponse != nil {
		ids = append(ids, touchedResponse.AuthorId)
	}
	if touchedReply != nil {
		ids = append(ids, touchedReply.AuthorId)
	}
	profiles := s.profiles.Resolve(ctx, ids)

	result.Note = s.dtoMapper.ToNoteResponse(note, profiles)
	if touchedResponse != nil {
		item := s.dtoMapper.ToResponseItem(*touchedResponse, profiles)
		result.Response = &item
	}
	if touchedReply != nil {
		item := s.dtoMapper.ToReplyItem(*touchedReply, profiles)
		result.Reply = &item
	}
	return result, nil
}

// resolveResponse maps the request's response reference onto the current
// array. An id always wins over a position.
func resolveResponse(note *entity.Note, req *dto.PatchResponseRequest) (int, error) {
	if req.ResponseId != nil {
		i, ok := note.LocateResponse(*req.ResponseId)
		if !ok {
			return -1, apperr.InvalidAddress("response not found")
		}
		return i, nil
	}
	if req.ResponseIndex == nil {
		return -1, apperr.Validation("responseIndex or responseId is required")
	}
	if _, err := note.ResponseAt(*req.ResponseIndex); err != nil {
		return -1, err
	}
	return *req.ResponseIndex, nil
}

func resolveReply(note *entity.Note, ri int, req *dto.PatchResponseRequest) (int, error) {
	if req.ReplyId != nil {
		j, ok := note.LocateReply(ri, *req.ReplyId)
		if !ok {
			return -1, apperr.InvalidAddress("reply not found")
		}
		return j, nil
	}
	if req.ReplyIndex == nil {
		return -1, apperr.Validation("replyIndex or replyId is required")
	}
	if _, err := note.ReplyAt(ri, *req.ReplyIndex); err != nil {
		return -1, err
	}
	return *req.ReplyIndex, nil
}

func (s *responseService) notify(ctx context.Context, req dto.CreateNotificationRequest) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.CreateNotification(ctx, req); err != nil {
		s.logger.Warn("ResponseService", "Notification dispatch failed", map[string]interface{}{
			"error":   err,
			"type":    req.Type,
			"note_id": req.NoteId,
		})
	}
}

func targetUrl(noteId, responseId, replyId uuid.UUID) string {
	url := fmt.Sprintf("/notes/%s?response=%s", noteId, responseId)
	if replyId != uuid.Nil {
		url += "&reply=" + replyId.String()
	}
	return url
}
