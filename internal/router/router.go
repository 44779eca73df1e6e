package router

import (
	"database/sql"
	"net/http"
	"os"

	mem "medtrack/internal/adapters/storage/memory"
	pg "medtrack/internal/adapters/storage/postgres"
	"medtrack/internal/domain/medications"
	"medtrack/internal/domain/users"
	"medtrack/internal/middleware"
	"medtrack/internal/ports/auth"

	_ "medtrack/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Options struct {
	// Issuer firma los tokens de /auth. Obligatorio para login/register.
	Issuer auth.TokenIssuer

	// Verifier valida el Bearer token. Puede ser nil (modo dev:
	// header X-Debug-User-ID, ver middleware.AuthContext).
	Verifier auth.AuthVerifier

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: request logging con zap.
	Logger *zap.Logger

	// Orígenes CORS permitidos. Vacío => "*" (dev).
	AllowedOrigins []string
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLog(opts.Logger))

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Use(middleware.AuthContext(opts.Verifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		medsRepo  medications.Repository
		logsRepo  medications.LogRepository
		usersRepo users.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		medsRepo = pg.NewMedicationsRepo(db)
		logsRepo = pg.NewDoseLogsRepo(db)
		usersRepo = pg.NewUsersRepo(db)
	} else {
		medsRepo = mem.NewMedicationsRepo()
		logsRepo = mem.NewDoseLogsRepo()
		usersRepo = mem.NewUsersRepo()
	}

	// Services por módulo
	medsSvc := medications.NewService(medsRepo, logsRepo)
	usersSvc := users.NewService(usersRepo)

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc, opts.Issuer)
	medications.RegisterRoutes(r, medsSvc)

	return r
}
