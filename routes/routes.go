package routes

import (
	"time"

	"vetclinic-backend/config"
	"vetclinic-backend/controllers"
	"vetclinic-backend/models"
	"vetclinic-backend/services"
	"vetclinic-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Deps are the collaborators the router wires into controllers.
type Deps struct {
	Config       *config.Config
	DB           *gorm.DB
	Log          zerolog.Logger
	Appointments *services.AppointmentService
	Grooming     *services.GroomingService
	Patients     *services.PatientService
	Auth         *services.AuthService
	Reminders    *services.ReminderService
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger(d.Log))

	appointments := controllers.NewAppointmentController(d.Appointments, d.Log)
	grooming := controllers.NewGroomingController(d.Grooming, d.Log)
	patients := controllers.NewPatientController(d.Patients, d.Log)
	auth := controllers.NewAuthController(d.Auth, d.Log,
		int(d.Config.JWTExpiry().Seconds()), d.Config.IsProduction())
	reminders := controllers.NewReminderController(d.Reminders, d.Log)
	health := controllers.NewHealthController(d.DB)

	requireAuth := utils.AuthMiddleware(d.DB, d.Config.JWTSecret)

	api := r.Group("/api")
	api.GET("/health", health.Health)

	vets := api.Group("/veterinarios")
	{
		vets.POST("", auth.Register)
		vets.GET("/confirmar/:token", auth.Confirm)
		vets.POST("/login", auth.Login)
		vets.POST("/reenviar-verificacion", auth.ResendVerification)
		vets.POST("/olvide-password", auth.ForgotPassword)
		vets.GET("/olvide-password/:token", auth.CheckResetToken)
		vets.POST("/olvide-password/:token", auth.ResetPassword)

		vets.GET("/perfil", requireAuth, auth.Profile)
	}

	private := api.Group("")
	private.Use(requireAuth)
	{
		citas := private.Group("/citas")
		{
			citas.POST("", appointments.Create)
			citas.GET("", appointments.List)
			citas.GET("/disponibilidad", appointments.Availability)
			citas.GET("/horarios-disponibles", appointments.Slots)
			citas.GET("/rango", appointments.Range)
			citas.GET("/proximas", appointments.Upcoming)
			citas.GET("/buscar", appointments.Search)
			citas.GET("/estadisticas", appointments.Stats)
			citas.GET("/paciente/:id", appointments.ByPatient)
			citas.GET("/:id", appointments.Get)
			citas.PUT("/:id", appointments.Update)
			citas.DELETE("/:id", appointments.Delete)
			citas.PATCH("/:id/estado", appointments.ChangeStatus)
			citas.PATCH("/:id/confirmar", appointments.Confirm)
			citas.PATCH("/:id/cancelar", appointments.Cancel)
			citas.PATCH("/:id/completar", appointments.Complete)
			citas.PATCH("/:id/iniciar", appointments.Start)
		}

		appts := private.Group("/appointments")
		{
			appts.POST("", appointments.Create)
			appts.GET("", appointments.List)
			appts.GET("/availability", appointments.Availability)
			appts.GET("/slots", appointments.Slots)
			appts.GET("/range", appointments.Range)
			appts.GET("/upcoming", appointments.Upcoming)
			appts.GET("/search", appointments.Search)
			appts.GET("/stats", appointments.Stats)
			appts.GET("/patient/:id", appointments.ByPatient)
			appts.GET("/:id", appointments.Get)
			appts.PUT("/:id", appointments.Update)
			appts.DELETE("/:id", appointments.Delete)
			appts.PATCH("/:id/status", appointments.ChangeStatus)
			appts.PATCH("/:id/confirm", appointments.Confirm)
			appts.PATCH("/:id/cancel", appointments.Cancel)
			appts.PATCH("/:id/complete", appointments.Complete)
			appts.PATCH("/:id/start", appointments.Start)
		}

		estetica := private.Group("/estetica")
		{
			estetica.POST("", grooming.Create)
			estetica.GET("", grooming.List)
			estetica.GET("/:id", grooming.Get)
			estetica.PUT("/:id", grooming.Update)
			estetica.DELETE("/:id", grooming.Delete)
			estetica.PATCH("/:id/estado", grooming.ChangeStatus)
		}

		pacientes := private.Group("/pacientes")
		{
			pacientes.POST("", patients.Register)
			pacientes.GET("", patients.List)
			pacientes.GET("/:id", patients.Get)
			pacientes.DELETE("/:id", patients.Delete)
			pacientes.POST("/:id/historial", patients.AddClinicalRecord)
			pacientes.GET("/:id/historial", patients.ClinicalRecords)
		}

		plantillas := private.Group("/recordatorios/plantillas")
		{
			plantillas.GET("", reminders.GetReminderTemplates)
			plantillas.PUT("", utils.RequireRole(models.RoleAdmin), reminders.SaveReminderTemplate)
		}
	}

	return r
}
