package main

import (
	"github.com/gin-gonic/gin"

	"research-fi.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	studyHandler      *handlers.StudyHandler
	enrollmentHandler *handlers.EnrollmentHandler
	profileHandler    *handlers.ProfileHandler
	fundingHandler    *handlers.FundingHandler
	contentHandler    *handlers.ContentHandler
	statsHandler      *handlers.StatsHandler
	walletAuth        gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Public browse routes
		v1.GET("/studies", d.studyHandler.List)
		v1.GET("/stats", d.statsHandler.Get)

		// Study routes (wallet required)
		studies := v1.Group("/studies")
		studies.Use(d.walletAuth)
		{
			studies.GET("/mine", d.studyHandler.Mine)
			studies.POST("", d.studyHandler.Create)
			studies.PUT("/:id", d.studyHandler.Update)
			studies.PATCH("/:id/status", d.studyHandler.UpdateStatus)
			studies.DELETE("/:id", d.studyHandler.Delete)

			studies.POST("/:id/join", d.enrollmentHandler.Join)
			studies.GET("/:id/roster", d.enrollmentHandler.Roster)

			studies.POST("/:id/fund", d.fundingHandler.Fund)
			studies.POST("/:id/credit", d.fundingHandler.Credit)
			studies.GET("/:id/session", d.fundingHandler.Session)
			studies.POST("/:id/settle", d.fundingHandler.Settle)
		}

		// Public study detail goes last so /studies/mine wins
		v1.GET("/studies/:id", d.studyHandler.Get)

		// Enrollment routes (wallet required)
		enrollments := v1.Group("/enrollments")
		enrollments.Use(d.walletAuth)
		{
			enrollments.GET("/mine", d.enrollmentHandler.Mine)
			enrollments.POST("/:id/complete", d.enrollmentHandler.Complete)
		}

		// Profile routes (wallet required)
		profiles := v1.Group("/profiles")
		profiles.Use(d.walletAuth)
		{
			profiles.GET("/me", d.profileHandler.GetMe)
			profiles.PUT("/me", d.profileHandler.SetMe)
		}

		// Content generation (wallet required)
		content := v1.Group("/content")
		content.Use(d.walletAuth)
		{
			content.POST("/generate", d.contentHandler.Generate)
		}
	}
}
