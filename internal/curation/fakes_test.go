package curation

import (
	"errors"
	"time"

	"qa-forum/internal/models"
)

var errStoreDown = errors.New("store down")

type fakeForum struct {
	answers    map[uint][]models.Answer
	reviews    map[uint][]models.Review
	answersErr error
	reviewsErr error
}

func newFakeForum() *fakeForum {
	return &fakeForum{
		answers: make(map[uint][]models.Answer),
		reviews: make(map[uint][]models.Review),
	}
}

func (f *fakeForum) AnswersForQuestion(questionID uint) ([]models.Answer, error) {
	if f.answersErr != nil {
		return nil, f.answersErr
	}
	return f.answers[questionID], nil
}

func (f *fakeForum) ReviewsForAnswer(answerID uint) ([]models.Review, error) {
	if f.reviewsErr != nil {
		return nil, f.reviewsErr
	}
	return f.reviews[answerID], nil
}

func (f *fakeForum) addAnswer(questionID, answerID uint, accepted bool, createdAt time.Time) {
	f.answers[questionID] = append(f.answers[questionID], models.Answer{
		ID:         answerID,
		QuestionID: questionID,
		IsAccepted: accepted,
		CreatedAt:  createdAt,
	})
}

func (f *fakeForum) addReview(answerID, reviewerID uint) {
	f.reviews[answerID] = append(f.reviews[answerID], models.Review{
		ID:         uint(len(f.reviews[answerID]) + 1),
		AnswerID:   answerID,
		ReviewerID: reviewerID,
	})
}

type fakeTrust struct {
	weights map[uint]models.TrustMap
	err     error
	calls   int
}

func (f *fakeTrust) GetWeights(studentID uint) (models.TrustMap, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.weights[studentID].Clone(), nil
}
