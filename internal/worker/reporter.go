// Package worker holds the background consumers of the event bus.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/vedalearn/session-backend/internal/events"
	"github.com/vedalearn/session-backend/internal/remote"
)

const reportTimeout = 15 * time.Second

// Reporter consumes finished-session events and forwards them to the learning
// API. Delivery is best effort: a failed report is logged and dropped, never
// retried, so a flaky upstream cannot back up the bus.
type Reporter struct {
	bus    *events.Bus
	remote *remote.Client
	log    zerolog.Logger
}

func NewReporter(bus *events.Bus, remoteClient *remote.Client, log zerolog.Logger) *Reporter {
	return &Reporter{
		bus:    bus,
		remote: remoteClient,
		log:    log.With().Str("component", "reporter").Logger(),
	}
}

// Start subscribes to both report topics and consumes until ctx is cancelled.
// Call in a goroutine.
func (r *Reporter) Start(ctx context.Context) error {
	quizMsgs, err := r.bus.Subscribe(ctx, events.TopicSessionFinished)
	if err != nil {
		return err
	}
	lessonMsgs, err := r.bus.Subscribe(ctx, events.TopicLessonCompleted)
	if err != nil {
		return err
	}

	r.log.Info().Msg("Reporter started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("Reporter stopped")
			return nil
		case msg, ok := <-quizMsgs:
			if !ok {
				return nil
			}
			r.handleQuizResult(msg)
		case msg, ok := <-lessonMsgs:
			if !ok {
				return nil
			}
			r.handleLessonCompleted(msg)
		}
	}
}

func (r *Reporter) handleQuizResult(msg *message.Message) {
	// Ack unconditionally; there is no redelivery policy for reports.
	defer msg.Ack()

	var ev events.QuizResultEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		r.log.Error().Err(err).Str("message_id", msg.UUID).Msg("Undecodable quiz result event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	if err := r.remote.ReportQuizResult(ctx, ev.AccessToken, ev.QuizID, ev.Report); err != nil {
		r.log.Error().Err(err).
			Str("session_id", ev.SessionID).
			Str("quiz_id", ev.QuizID).
			Msg("Failed to report quiz result")
		return
	}
	r.log.Info().
		Str("session_id", ev.SessionID).
		Str("quiz_id", ev.QuizID).
		Int("score_percent", ev.Report.ScorePercent).
		Msg("Quiz result reported")
}

func (r *Reporter) handleLessonCompleted(msg *message.Message) {
	defer msg.Ack()

	var ev events.LessonCompletedEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		r.log.Error().Err(err).Str("message_id", msg.UUID).Msg("Undecodable lesson completion event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	if err := r.remote.ReportLessonCompletion(ctx, ev.AccessToken, ev.Completion); err != nil {
		r.log.Error().Err(err).
			Str("tracker_id", ev.TrackerID).
			Str("lesson_id", ev.Completion.LessonID).
			Msg("Failed to report lesson completion")
		return
	}
	r.log.Info().
		Str("tracker_id", ev.TrackerID).
		Str("lesson_id", ev.Completion.LessonID).
		Float64("score_percent", ev.Completion.ScorePercent).
		Msg("Lesson completion reported")
}
