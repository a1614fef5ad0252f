// Package repository persists the student, outcome and skill-demand feeds.
package repository

import (
	"context"

	"github.com/okian/empiria/internal/domain/model"
)

// Counts is the number of rows in each feed.
type Counts struct {
	Students int `json:"students"`
	Outcomes int `json:"outcomes"`
	Skills   int `json:"skills"`
}

// Store provides read and write access to the feeds. List methods return rows
// in insertion order.
type Store interface {
	ListStudents(ctx context.Context) ([]model.StudentRecord, error)
	// GetStudent returns the first student with id, or ErrNotFound.
	GetStudent(ctx context.Context, id string) (model.StudentRecord, error)
	// ReplaceStudents swaps the whole student feed atomically.
	ReplaceStudents(ctx context.Context, students []model.StudentRecord) error

	ListOutcomes(ctx context.Context) ([]model.OutcomeRecord, error)
	AppendOutcome(ctx context.Context, o model.OutcomeRecord) error
	AppendOutcomes(ctx context.Context, outcomes []model.OutcomeRecord) error

	ListSkills(ctx context.Context) ([]model.SkillDemand, error)
	ReplaceSkills(ctx context.Context, skills []model.SkillDemand) error

	Counts(ctx context.Context) (Counts, error)
}
