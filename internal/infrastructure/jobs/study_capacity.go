package jobs

import (
	"context"
	"log"
	"time"

	"research-fi.backend/internal/domain/entities"
	"research-fi.backend/internal/domain/repositories"
)

// StudyCapacityJob closes open studies whose enrollment count has reached
// their participant cap.
type StudyCapacityJob struct {
	studies     repositories.StudyRepository
	enrollments repositories.EnrollmentRepository
	interval    time.Duration
	stop        chan struct{}
}

func NewStudyCapacityJob(studies repositories.StudyRepository, enrollments repositories.EnrollmentRepository, interval time.Duration) *StudyCapacityJob {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &StudyCapacityJob{
		studies:     studies,
		enrollments: enrollments,
		interval:    interval,
		stop:        make(chan struct{}),
	}
}

func (j *StudyCapacityJob) Start(ctx context.Context) {
	log.Println("🕐 Starting study capacity job...")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Study capacity job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ Study capacity job stopped")
			return
		case <-ticker.C:
			j.CloseFullStudies(ctx)
		}
	}
}

func (j *StudyCapacityJob) Stop() {
	close(j.stop)
}

// CloseFullStudies runs one sweep. Exported so the caller can trigger an
// immediate pass at startup.
func (j *StudyCapacityJob) CloseFullStudies(ctx context.Context) {
	open, err := j.studies.ListByStatus(ctx, entities.StudyStatusOpen)
	if err != nil {
		log.Printf("❌ Error listing open studies: %v", err)
		return
	}
	if len(open) == 0 {
		return
	}

	counts, err := j.enrollments.CountByStudy(ctx)
	if err != nil {
		log.Printf("❌ Error counting enrollments: %v", err)
		return
	}

	closed := 0
	for _, study := range open {
		if study.MaxParticipants <= 0 || counts[study.ID] < study.MaxParticipants {
			continue
		}
		if err := j.studies.UpdateStatus(ctx, study.ID, entities.StudyStatusClosed); err != nil {
			log.Printf("❌ Error closing full study %s: %v", study.ID, err)
			continue
		}
		closed++
	}

	if closed > 0 {
		log.Printf("✅ Closed %d full studies", closed)
	}
}
