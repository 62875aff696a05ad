package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"vibenotes-be/internal/dto"
	"vibenotes-be/internal/entity"
	"vibenotes-be/internal/pkg/apperr"
	"vibenotes-be/internal/pkg/logger"
	"vibenotes-be/internal/repository/unitofwork"
	"vibenotes-be/pkg/emotion"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const emotionSaveAttempts = 3

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// emotionConsumerService fills Note.Emotion for queued notes.
type emotionConsumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	classifier emotion.Classifier
	logger     logger.ILogger
}

func NewEmotionConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	classifier emotion.Classifier,
	log logger.ILogger,
) IConsumerService {
	return &emotionConsumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		classifier: classifier,
		logger:     log,
	}
}

func (cs *emotionConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: a failed analysis is logged and the note keeps
// its previous reading. Retrying in a tight loop would not help a down API.
func (cs *emotionConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.AnalyzeNoteEmotionMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("EmotionConsumer", "Failed to unmarshal message", map[string]interface{}{"error": err})
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindById(ctx, payload.NoteId)
	if err != nil {
		cs.logger.Error("EmotionConsumer", "Failed to load note", map[string]interface{}{"error": err, "note_id": payload.NoteId})
		return
	}
	if note == nil {
		return // deleted in the meantime
	}

	text := strings.TrimSpace(note.Title + "\n\n" + note.Content)
	scores, err := cs.classifier.Classify(ctx, text)
	if err != nil {
		cs.logger.Warn("EmotionConsumer", "Emotion analysis failed", map[string]interface{}{"error": err, "note_id": note.Id})
		return
	}
	if len(scores) == 0 {
		return
	}

	reading := make([]entity.EmotionScore, len(scores))
	for i, s := range scores {
		reading[i] = entity.EmotionScore{Label: s.Label, Score: s.Score}
	}

	for attempt := 1; ; attempt++ {
		note.Emotion = reading
		err = uow.NoteRepository().Update(ctx, note)
		if err == nil || !errors.Is(err, apperr.ErrConflict) || attempt == emotionSaveAttempts {
			break
		}
		// Someone responded meanwhile; reapply on top of the fresh note.
		note, err = uow.NoteRepository().FindById(ctx, payload.NoteId)
		if err != nil || note == nil {
			break
		}
	}
	if err != nil {
		cs.logger.Error("EmotionConsumer", "Failed to save emotion", map[string]interface{}{"error": err, "note_id": payload.NoteId})
		return
	}
	if note == nil {
		return
	}

	cs.logger.Info("EmotionConsumer", "Emotion analysis stored", map[string]interface{}{"note_id": payload.NoteId, "top": reading[0].Label})
}
