package controllers

import (
	"MediBook/handlers"
	"MediBook/middlewares"

	"github.com/gin-gonic/gin"
)

// SetupDoctorRoutes registers the authenticated doctor-facing routes.
// Everything under this group runs behind DoctorAuthMiddleware, which
// resolves the tenant once per request.
func SetupDoctorRoutes(router *gin.Engine, doctorHandler *handlers.DoctorHandler, consultationHandler *handlers.ConsultationHandler, patientHandler *handlers.PatientHandler) {
	doctor := router.Group("/")
	doctor.Use(middlewares.DoctorAuthMiddleware())

	doctor.GET("/profile", doctorHandler.GetProfile)
	doctor.PUT("/profile", doctorHandler.UpdateProfile)

	doctor.POST("/locations", doctorHandler.CreateLocation)
	doctor.GET("/locations", doctorHandler.ListLocations)
	doctor.PUT("/locations/:id", doctorHandler.UpdateLocation)
	doctor.DELETE("/locations/:id", doctorHandler.DeleteLocation)
	doctor.PATCH("/locations/:id/publish", doctorHandler.PublishLocation)

	doctor.GET("/consultations", consultationHandler.ListConsultations)
	doctor.GET("/consultations/notes", consultationHandler.GetNotes)
	doctor.GET("/consultations/:id", consultationHandler.GetConsultation)
	doctor.PATCH("/consultations/:id", consultationHandler.UpdateConsultation)
	doctor.PATCH("/consultations/:id/cancel", consultationHandler.CancelConsultation)
	doctor.POST("/consultations/link-patient", consultationHandler.LinkPatient)

	doctor.POST("/patients", patientHandler.CreatePatient)
	doctor.GET("/patients", patientHandler.ListPatients)
	doctor.GET("/patients/by-phone", patientHandler.GetPatientsByPhone)
	doctor.GET("/patients/:id", patientHandler.GetPatient)
	doctor.PATCH("/patients/:id", patientHandler.UpdatePatient)
}
