package curation

import (
	"fmt"
	"sort"

	"qa-forum/internal/models"
)

// AnswerSource provides the answers posted to a question
type AnswerSource interface {
	AnswersForQuestion(questionID uint) ([]models.Answer, error)
}

// ReviewIndex provides the reviews attached to an answer
type ReviewIndex interface {
	ReviewsForAnswer(answerID uint) ([]models.Review, error)
}

// TrustSource provides a student's persisted trust weights
type TrustSource interface {
	GetWeights(studentID uint) (models.TrustMap, error)
}

// ScoredAnswer is an answer together with its trust score for one student
type ScoredAnswer struct {
	models.Answer
	Score float64 `json:"score"`
}

// Score sums the trust weight of every review written by a reviewer present in trust.
// A reviewer with several reviews on the same answer is counted once per review.
func Score(reviews []models.Review, trust models.TrustMap) float64 {
	var score float64
	for _, r := range reviews {
		if w, ok := trust[r.ReviewerID]; ok {
			score += w
		}
	}
	return score
}

// Rank drops answers with a non-positive score and orders the rest:
// accepted answers first, then by score, then newest first.
func Rank(scored []ScoredAnswer) []ScoredAnswer {
	ranked := make([]ScoredAnswer, 0, len(scored))
	for _, a := range scored {
		if a.Score > 0 {
			ranked = append(ranked, a)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.IsAccepted != b.IsAccepted {
			return a.IsAccepted
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	return ranked
}

// Engine computes curated answer lists from live answer and review data
type Engine struct {
	answers AnswerSource
	reviews ReviewIndex
}

// NewEngine creates a new curation engine
func NewEngine(answers AnswerSource, reviews ReviewIndex) *Engine {
	return &Engine{
		answers: answers,
		reviews: reviews,
	}
}

// Curate scores every answer of a question against trust and returns the ranked list.
// Any store failure aborts the whole computation.
func (e *Engine) Curate(questionID uint, trust models.TrustMap) ([]ScoredAnswer, error) {
	answers, err := e.answers.AnswersForQuestion(questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers for question %d: %w", questionID, err)
	}

	scored := make([]ScoredAnswer, 0, len(answers))
	for _, answer := range answers {
		reviews, err := e.reviews.ReviewsForAnswer(answer.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load reviews for answer %d: %w", answer.ID, err)
		}
		scored = append(scored, ScoredAnswer{
			Answer: answer,
			Score:  Score(reviews, trust),
		})
	}

	return Rank(scored), nil
}
