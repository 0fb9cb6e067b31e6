package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

// CacheKey groups the Redis key builders for cached remote payloads.
var CacheKey = &CacheKeyStruct{}

// QuizQuestionsKey returns the cache key for a quiz's question payload.
func (r *CacheKeyStruct) QuizQuestionsKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:questions", quizID)
}

// QuizInfoKey returns the cache key for a quiz's metadata (time limit, passing score).
func (r *CacheKeyStruct) QuizInfoKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:info", quizID)
}

// LessonExercisesKey returns the cache key for a lesson's exercise payload.
func (r *CacheKeyStruct) LessonExercisesKey(lessonID string) string {
	return fmt.Sprintf("lesson:%s:exercises", lessonID)
}
