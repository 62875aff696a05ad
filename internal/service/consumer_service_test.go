package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"vibenotes-be/internal/dto"
	"vibenotes-be/pkg/emotion"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEmotionTopic = "test.emotion"

type stubClassifier struct {
	scores []emotion.Score
	err    error
	calls  atomic.Int32
	texts  chan string
}

func (c *stubClassifier) Classify(ctx context.Context, text string) ([]emotion.Score, error) {
	c.calls.Add(1)
	if c.texts != nil {
		c.texts <- text
	}
	return c.scores, c.err
}

func startConsumer(t *testing.T, f *fixture, classifier emotion.Classifier) *gochannel.GoChannel {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	consumer := NewEmotionConsumerService(pubSub, testEmotionTopic, f.factory, classifier, nopLogger())
	require.NoError(t, consumer.Consume(ctx))
	return pubSub
}

func queue(t *testing.T, pubSub *gochannel.GoChannel, noteId uuid.UUID) {
	t.Helper()
	payload, err := json.Marshal(dto.AnalyzeNoteEmotionMessage{NoteId: noteId})
	require.NoError(t, err)
	require.NoError(t, pubSub.Publish(testEmotionTopic, message.NewMessage(watermill.NewUUID(), payload)))
}

func TestEmotionConsumerStoresReading(t *testing.T) {
	f := newFixture(t)
	note := f.addNote(t, true)
	classifier := &stubClassifier{scores: []emotion.Score{{Label: "joy", Score: 0.9}, {Label: "neutral", Score: 0.1}}}
	pubSub := startConsumer(t, f, classifier)

	queue(t, pubSub, note.Id)

	require.Eventually(t, func() bool {
		return len(f.reload(t, note.Id).Emotion) == 2
	}, 2*time.Second, 10*time.Millisecond)
	stored := f.reload(t, note.Id)
	assert.Equal(t, "joy", stored.Emotion[0].Label)
	assert.Equal(t, note.Version+1, stored.Version)
}

func TestEmotionConsumerClassifiesTitleAndContent(t *testing.T) {
	f := newFixture(t)
	note := f.addNote(t, true)
	classifier := &stubClassifier{texts: make(chan string, 1)}
	pubSub := startConsumer(t, f, classifier)

	queue(t, pubSub, note.Id)

	select {
	case text := <-classifier.texts:
		assert.Equal(t, "A day\n\nit was fine", text)
	case <-time.After(2 * time.Second):
		t.Fatal("classifier was never called")
	}
}

func TestEmotionConsumerIgnoresFailuresAndMissingNotes(t *testing.T) {
	f := newFixture(t)
	note := f.addNote(t, true)
	classifier := &stubClassifier{err: errors.New("model loading")}
	pubSub := startConsumer(t, f, classifier)

	queue(t, pubSub, uuid.New())
	queue(t, pubSub, note.Id)
	require.NoError(t, pubSub.Publish(testEmotionTopic, message.NewMessage(watermill.NewUUID(), []byte("not json"))))

	require.Eventually(t, func() bool { return classifier.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	stored := f.reload(t, note.Id)
	assert.Empty(t, stored.Emotion)
	assert.Equal(t, note.Version, stored.Version)
}
