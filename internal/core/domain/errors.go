package domain

import "errors"

var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizArchived     = errors.New("quiz is archived")
	ErrQuizEmpty        = errors.New("quiz has no questions")
	ErrQuestionNotFound = errors.New("question not found")
	ErrBundleNotFound   = errors.New("media bundle not found")
	ErrPollNotFound     = errors.New("sent poll not found")
	ErrAlreadyAnswered  = errors.New("question already answered by this participant")
	ErrInvalidDuration  = errors.New("duration must be between 1 and 240 hours")
	ErrBadOptionCount   = errors.New("question needs between 2 and 10 options")
	ErrNoCorrectOption  = errors.New("no option is marked correct")
)
