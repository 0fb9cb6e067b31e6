// Package catalog serves quiz and lesson content, reading through the redis
// cache for payloads shared by every learner and passing user-specific reads
// straight to the learning API.
package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vedalearn/session-backend/internal/cache"
	"github.com/vedalearn/session-backend/internal/config"
	"github.com/vedalearn/session-backend/internal/model"
	"github.com/vedalearn/session-backend/internal/remote"
)

type Service struct {
	remote *remote.Client
	cache  *cache.Cache
	log    zerolog.Logger
}

func NewService(remoteClient *remote.Client, c *cache.Cache, log zerolog.Logger) *Service {
	return &Service{remote: remoteClient, cache: c, log: log}
}

// QuizQuestions returns the quiz's question set, answer keys included.
// Cached: the set is the same for every learner.
func (s *Service) QuizQuestions(ctx context.Context, token, quizID string) ([]model.Question, error) {
	key := config.CacheKey.QuizQuestionsKey(quizID)
	var cached []model.Question
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	qs, err := s.remote.QuizQuestions(ctx, token, quizID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, qs)
	return qs, nil
}

// Quiz returns quiz metadata, cached.
func (s *Service) Quiz(ctx context.Context, token, quizID string) (model.QuizInfo, error) {
	key := config.CacheKey.QuizInfoKey(quizID)
	var cached model.QuizInfo
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	info, err := s.remote.Quiz(ctx, token, quizID)
	if err != nil {
		return model.QuizInfo{}, err
	}
	s.cache.Set(ctx, key, info)
	return info, nil
}

// LessonExercises returns a lesson's practice exercises, cached.
func (s *Service) LessonExercises(ctx context.Context, token, lessonID string) ([]model.Question, error) {
	key := config.CacheKey.LessonExercisesKey(lessonID)
	var cached []model.Question
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	exs, err := s.remote.LessonExercises(ctx, token, lessonID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, exs)
	return exs, nil
}

// RandomExercises returns a fresh random sample each call, so it is never
// cached.
func (s *Service) RandomExercises(ctx context.Context, token string, count int) ([]model.Question, error) {
	return s.remote.RandomExercises(ctx, token, count)
}

// Challenges returns the caller's challenge board. Progress is per user, so
// it is never cached.
func (s *Service) Challenges(ctx context.Context, token string) ([]model.Challenge, error) {
	return s.remote.Challenges(ctx, token)
}
