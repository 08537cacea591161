package usecases

import (
	"context"

	"research-fi.backend/internal/domain/entities"
	"research-fi.backend/internal/domain/repositories"
)

// StatsUsecase aggregates the platform counters for the stats endpoint.
type StatsUsecase struct {
	studyRepo       repositories.StudyRepository
	researcherRepo  repositories.ResearcherRepository
	participantRepo repositories.ParticipantRepository
	enrollmentRepo  repositories.EnrollmentRepository
}

// NewStatsUsecase creates a new stats usecase
func NewStatsUsecase(
	studyRepo repositories.StudyRepository,
	researcherRepo repositories.ResearcherRepository,
	participantRepo repositories.ParticipantRepository,
	enrollmentRepo repositories.EnrollmentRepository,
) *StatsUsecase {
	return &StatsUsecase{
		studyRepo:       studyRepo,
		researcherRepo:  researcherRepo,
		participantRepo: participantRepo,
		enrollmentRepo:  enrollmentRepo,
	}
}

// Totals returns the live platform counters.
func (u *StatsUsecase) Totals(ctx context.Context) (*entities.PlatformStats, error) {
	studies, err := u.studyRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	researchers, err := u.researcherRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	participants, err := u.participantRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	enrollments, err := u.enrollmentRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &entities.PlatformStats{
		Studies:      studies,
		Researchers:  researchers,
		Participants: participants,
		Enrollments:  enrollments,
	}, nil
}
